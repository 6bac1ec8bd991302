package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/larsvasseldonk/calmly-list/internal/domain"
	"github.com/larsvasseldonk/calmly-list/internal/infrastructure/redis"
)

// RedisTodoRepository implements domain.TodoRepository using Redis. Each
// todo is stored as a JSON value under todo:{id}; owner scoping is applied
// after decode since the keyspace is flat.
type RedisTodoRepository struct {
	redis  *redis.Client
	logger *slog.Logger
}

// NewRedisTodoRepository creates a new todo repository
func NewRedisTodoRepository(redisClient *redis.Client, logger *slog.Logger) *RedisTodoRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisTodoRepository{
		redis:  redisClient,
		logger: logger,
	}
}

func todoKey(id string) string {
	return fmt.Sprintf("todo:%s", id)
}

func ownerMatches(t *domain.Todo, ownerID string) bool {
	return ownerID == "" || t.OwnerID == ownerID
}

// Insert stores a todo
func (r *RedisTodoRepository) Insert(todo *domain.Todo) error {
	data, err := json.Marshal(todo)
	if err != nil {
		return fmt.Errorf("failed to marshal todo: %w", err)
	}

	if err := r.redis.Set(context.Background(), todoKey(todo.ID), string(data)); err != nil {
		return fmt.Errorf("failed to store todo: %w", err)
	}

	r.logger.Debug("todo saved", slog.String("todo_id", todo.ID))
	return nil
}

// GetByID retrieves a todo by id, scoped to the owner when one is given
func (r *RedisTodoRepository) GetByID(id, ownerID string) (*domain.Todo, error) {
	data, err := r.redis.Get(context.Background(), todoKey(id))
	if err != nil {
		if redis.IsNotFound(err) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	var todo domain.Todo
	if err := json.Unmarshal([]byte(data), &todo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal todo: %w", err)
	}

	if !ownerMatches(&todo, ownerID) {
		return nil, domain.ErrTodoNotFound
	}

	return &todo, nil
}

// List returns all todos for an owner. Redis key scans carry no order, so
// results are sorted into creation order (createdAt, then id).
func (r *RedisTodoRepository) List(ownerID string) ([]*domain.Todo, error) {
	keys, err := r.redis.Keys(context.Background(), "todo:*")
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	todos := []*domain.Todo{}
	for _, key := range keys {
		data, err := r.redis.Get(context.Background(), key)
		if err != nil {
			if redis.IsNotFound(err) {
				continue
			}
			r.logger.Error("failed to get todo", slog.String("key", key), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to get todo: %w", err)
		}

		var t domain.Todo
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			r.logger.Error("failed to unmarshal todo", slog.String("key", key), slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to unmarshal todo: %w", err)
		}

		if ownerMatches(&t, ownerID) {
			todos = append(todos, &t)
		}
	}

	sort.Slice(todos, func(i, j int) bool {
		if todos[i].CreatedAt != todos[j].CreatedAt {
			return todos[i].CreatedAt < todos[j].CreatedAt
		}
		return todos[i].ID < todos[j].ID
	})

	return todos, nil
}

// Update rewrites an existing todo after confirming it exists for the owner
func (r *RedisTodoRepository) Update(todo *domain.Todo) error {
	if _, err := r.GetByID(todo.ID, todo.OwnerID); err != nil {
		return err
	}
	return r.Insert(todo)
}

// Delete removes a todo by id, scoped to the owner when one is given
func (r *RedisTodoRepository) Delete(id, ownerID string) error {
	if _, err := r.GetByID(id, ownerID); err != nil {
		return err
	}

	if _, err := r.redis.Delete(context.Background(), todoKey(id)); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	r.logger.Debug("todo deleted", slog.String("todo_id", id))
	return nil
}

// DeleteCompleted removes every completed todo for the owner and returns
// how many were removed
func (r *RedisTodoRepository) DeleteCompleted(ownerID string) (int, error) {
	todos, err := r.List(ownerID)
	if err != nil {
		return 0, err
	}

	keys := []string{}
	for _, t := range todos {
		if t.Completed {
			keys = append(keys, todoKey(t.ID))
		}
	}
	if len(keys) == 0 {
		return 0, nil
	}

	removed, err := r.redis.Delete(context.Background(), keys...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete completed todos: %w", err)
	}

	return int(removed), nil
}
