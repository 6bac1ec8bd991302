package domain

import (
	"errors"
	"time"
)

// User represents a registered account
type User struct {
	ID           string // UUID
	Email        string // Unique login name
	PasswordHash string // Bcrypt hash, never returned to clients
	CreatedAt    time.Time
}

var (
	// ErrUserNotFound is returned when no user matches the lookup
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when registering an email that already exists
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines data access for users
type UserRepository interface {
	Create(user *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
}
