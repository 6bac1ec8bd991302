package service

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/larsvasseldonk/calmly-list/internal/domain"
)

var (
	// ErrTextRequired is returned when a create carries empty text
	ErrTextRequired = errors.New("text is required")
	// ErrInvalidPriority is returned when a priority is outside low/medium/high
	ErrInvalidPriority = errors.New("priority must be low, medium or high")
)

// CreateTodoInput is the caller-supplied part of a new todo
type CreateTodoInput struct {
	Text     string
	DueDate  *int64
	Priority *domain.Priority
	Category *string
}

// TodoService implements the todo operations on top of a TodoRepository.
// Every operation takes an ownerID; an empty one means the deployment runs
// single-tenant and no owner filter applies.
type TodoService struct {
	repo   domain.TodoRepository
	logger *slog.Logger
}

// NewTodoService creates a new todo service
func NewTodoService(repo domain.TodoRepository, logger *slog.Logger) *TodoService {
	if logger == nil {
		logger = slog.Default()
	}

	return &TodoService{
		repo:   repo,
		logger: logger,
	}
}

// List returns the owner's todos in creation order
func (s *TodoService) List(ownerID string) ([]*domain.Todo, error) {
	return s.repo.List(ownerID)
}

// Create validates the input, assigns identity and creation time, and
// persists the new todo with completed starting false
func (s *TodoService) Create(ownerID string, input CreateTodoInput) (*domain.Todo, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrTextRequired
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	todo := &domain.Todo{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Text:      input.Text,
		Completed: false,
		CreatedAt: time.Now().UnixMilli(),
		DueDate:   input.DueDate,
		Priority:  input.Priority,
		Category:  input.Category,
	}

	if err := s.repo.Insert(todo); err != nil {
		s.logger.Error("failed to insert todo", slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.Info("todo created",
		slog.String("todo_id", todo.ID),
		slog.String("owner_id", ownerID),
	)
	return todo, nil
}

// Update merges the supplied patch fields into the stored todo. Fields
// absent from the patch keep their prior values; id and createdAt never
// change. A miss, including an ownership mismatch, is ErrTodoNotFound.
func (s *TodoService) Update(id, ownerID string, patch domain.TodoPatch) (*domain.Todo, error) {
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return nil, ErrTextRequired
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	todo, err := s.repo.GetByID(id, ownerID)
	if err != nil {
		return nil, err
	}

	if patch.Text != nil {
		todo.Text = *patch.Text
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}
	if patch.DueDate != nil {
		todo.DueDate = patch.DueDate
	}
	if patch.Priority != nil {
		todo.Priority = patch.Priority
	}
	if patch.Category != nil {
		todo.Category = patch.Category
	}

	if err := s.repo.Update(todo); err != nil {
		return nil, err
	}

	return todo, nil
}

// Delete removes a single todo; a miss is ErrTodoNotFound
func (s *TodoService) Delete(id, ownerID string) error {
	if err := s.repo.Delete(id, ownerID); err != nil {
		return err
	}

	s.logger.Info("todo deleted",
		slog.String("todo_id", id),
		slog.String("owner_id", ownerID),
	)
	return nil
}

// DeleteCompleted removes every completed todo for the owner and returns
// the count; zero removed is a normal outcome
func (s *TodoService) DeleteCompleted(ownerID string) (int, error) {
	count, err := s.repo.DeleteCompleted(ownerID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("completed todos deleted",
		slog.Int("count", count),
		slog.String("owner_id", ownerID),
	)
	return count, nil
}
