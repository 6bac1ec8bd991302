package domain

import "errors"

// Priority is the urgency bucket a todo can be filed under
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the three accepted priority values
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Todo represents a single todo item
type Todo struct {
	ID        string    `json:"id"`                 // UUID, assigned by the service
	OwnerID   string    `json:"ownerId,omitempty"`  // Owning user UUID; empty in single-tenant mode
	Text      string    `json:"text"`               // Never empty
	Completed bool      `json:"completed"`          // Starts false
	CreatedAt int64     `json:"createdAt"`          // Milliseconds since epoch, set once
	DueDate   *int64    `json:"dueDate,omitempty"`  // Milliseconds since epoch
	Priority  *Priority `json:"priority,omitempty"` // low, medium or high
	Category  *string   `json:"category,omitempty"`
}

// TodoPatch carries a partial update. Nil fields were absent from the
// request and must leave the stored value untouched.
type TodoPatch struct {
	Text      *string   `json:"text"`
	Completed *bool     `json:"completed"`
	DueDate   *int64    `json:"dueDate"`
	Priority  *Priority `json:"priority"`
	Category  *string   `json:"category"`
}

// ErrTodoNotFound is returned when no todo matches an id/owner pair.
// An ownership mismatch surfaces as this same error so callers cannot
// distinguish another user's todo from a missing one.
var ErrTodoNotFound = errors.New("todo not found")

// TodoRepository defines data access for todos. An empty ownerID means the
// store runs single-tenant and no owner filter is applied.
type TodoRepository interface {
	Insert(todo *Todo) error
	GetByID(id, ownerID string) (*Todo, error)
	List(ownerID string) ([]*Todo, error)
	Update(todo *Todo) error
	Delete(id, ownerID string) error
	DeleteCompleted(ownerID string) (int, error)
}
