package repository

import (
	"sync"

	"github.com/larsvasseldonk/calmly-list/internal/domain"
)

// MemoryTodoRepository implements domain.TodoRepository with an in-process,
// mutex-guarded slice. The slice preserves insertion order, which is the
// documented list order (createdAt ascending). All mutations happen under
// the lock, so at most one writer touches the collection at a time.
type MemoryTodoRepository struct {
	mu    sync.RWMutex
	todos []*domain.Todo
}

// NewMemoryTodoRepository creates an empty in-memory todo store
func NewMemoryTodoRepository() *MemoryTodoRepository {
	return &MemoryTodoRepository{}
}

func (r *MemoryTodoRepository) matches(t *domain.Todo, id, ownerID string) bool {
	if t.ID != id {
		return false
	}
	return ownerID == "" || t.OwnerID == ownerID
}

// Insert appends a todo
func (r *MemoryTodoRepository) Insert(todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *todo
	r.todos = append(r.todos, &copied)
	return nil
}

// GetByID returns the todo matching id (and owner, when given)
func (r *MemoryTodoRepository) GetByID(id, ownerID string) (*domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.todos {
		if r.matches(t, id, ownerID) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, domain.ErrTodoNotFound
}

// List returns all todos for an owner in insertion order
func (r *MemoryTodoRepository) List(ownerID string) ([]*domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.Todo{}
	for _, t := range r.todos {
		if ownerID == "" || t.OwnerID == ownerID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

// Update replaces the stored record with the same id and owner
func (r *MemoryTodoRepository) Update(todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.todos {
		if r.matches(t, todo.ID, todo.OwnerID) {
			copied := *todo
			r.todos[i] = &copied
			return nil
		}
	}
	return domain.ErrTodoNotFound
}

// Delete removes the todo matching id (and owner, when given)
func (r *MemoryTodoRepository) Delete(id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.todos {
		if r.matches(t, id, ownerID) {
			r.todos = append(r.todos[:i], r.todos[i+1:]...)
			return nil
		}
	}
	return domain.ErrTodoNotFound
}

// DeleteCompleted removes every completed todo for the owner and returns
// how many were removed
func (r *MemoryTodoRepository) DeleteCompleted(ownerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.todos[:0]
	removed := 0
	for _, t := range r.todos {
		if t.Completed && (ownerID == "" || t.OwnerID == ownerID) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	r.todos = kept
	return removed, nil
}
