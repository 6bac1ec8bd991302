package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/larsvasseldonk/calmly-list/internal/domain"
)

// PostgresTodoRepository implements domain.TodoRepository using PostgreSQL
type PostgresTodoRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresTodoRepository creates a new todo repository
func NewPostgresTodoRepository(db *sql.DB, logger *slog.Logger) *PostgresTodoRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTodoRepository{
		db:     db,
		logger: logger,
	}
}

const todoColumns = "id, owner_id, text, completed, created_at, due_date, priority, category"

func scanTodo(row interface{ Scan(...any) error }) (*domain.Todo, error) {
	todo := &domain.Todo{}
	var (
		ownerID  sql.NullString
		dueDate  sql.NullInt64
		priority sql.NullString
		category sql.NullString
	)

	err := row.Scan(
		&todo.ID,
		&ownerID,
		&todo.Text,
		&todo.Completed,
		&todo.CreatedAt,
		&dueDate,
		&priority,
		&category,
	)
	if err != nil {
		return nil, err
	}

	todo.OwnerID = ownerID.String
	if dueDate.Valid {
		todo.DueDate = &dueDate.Int64
	}
	if priority.Valid {
		p := domain.Priority(priority.String)
		todo.Priority = &p
	}
	if category.Valid {
		todo.Category = &category.String
	}
	return todo, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullPriority(p *domain.Priority) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*p), Valid: true}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Insert stores a new todo
func (r *PostgresTodoRepository) Insert(todo *domain.Todo) error {
	query := `
		INSERT INTO todos (id, owner_id, text, completed, created_at, due_date, priority, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		query,
		todo.ID,
		nullString(todo.OwnerID),
		todo.Text,
		todo.Completed,
		todo.CreatedAt,
		nullInt64(todo.DueDate),
		nullPriority(todo.Priority),
		nullStringPtr(todo.Category),
	)
	if err != nil {
		r.logger.Error("failed to insert todo",
			slog.String("todo_id", todo.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to insert todo: %w", err)
	}

	return nil
}

// GetByID retrieves a todo by id, scoped to the owner when one is given
func (r *PostgresTodoRepository) GetByID(id, ownerID string) (*domain.Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos WHERE id = $1"
	args := []any{id}
	if ownerID != "" {
		query += " AND owner_id = $2"
		args = append(args, ownerID)
	}

	todo, err := scanTodo(r.db.QueryRow(query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		r.logger.Error("failed to get todo by id",
			slog.String("todo_id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return todo, nil
}

// List returns all todos for an owner in creation order
func (r *PostgresTodoRepository) List(ownerID string) ([]*domain.Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos"
	args := []any{}
	if ownerID != "" {
		query += " WHERE owner_id = $1"
		args = append(args, ownerID)
	}
	query += " ORDER BY created_at, id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to list todos", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []*domain.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			r.logger.Error("failed to scan todo row", slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	return todos, rows.Err()
}

// Update rewrites the mutable columns of an existing todo
func (r *PostgresTodoRepository) Update(todo *domain.Todo) error {
	query := `
		UPDATE todos
		SET text = $1, completed = $2, due_date = $3, priority = $4, category = $5
		WHERE id = $6
	`
	args := []any{
		todo.Text,
		todo.Completed,
		nullInt64(todo.DueDate),
		nullPriority(todo.Priority),
		nullStringPtr(todo.Category),
		todo.ID,
	}
	if todo.OwnerID != "" {
		query += " AND owner_id = $7"
		args = append(args, todo.OwnerID)
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		r.logger.Error("failed to update todo",
			slog.String("todo_id", todo.ID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to update todo: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrTodoNotFound
	}

	return nil
}

// Delete removes a todo by id, scoped to the owner when one is given
func (r *PostgresTodoRepository) Delete(id, ownerID string) error {
	query := "DELETE FROM todos WHERE id = $1"
	args := []any{id}
	if ownerID != "" {
		query += " AND owner_id = $2"
		args = append(args, ownerID)
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		r.logger.Error("failed to delete todo",
			slog.String("todo_id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrTodoNotFound
	}

	return nil
}

// DeleteCompleted removes every completed todo for the owner in one
// statement and returns the number of rows removed
func (r *PostgresTodoRepository) DeleteCompleted(ownerID string) (int, error) {
	query := "DELETE FROM todos WHERE completed = true"
	args := []any{}
	if ownerID != "" {
		query += " AND owner_id = $1"
		args = append(args, ownerID)
	}

	result, err := r.db.Exec(query, args...)
	if err != nil {
		r.logger.Error("failed to delete completed todos", slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to delete completed todos: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return int(rows), nil
}
