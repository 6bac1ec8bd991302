package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/larsvasseldonk/calmly-list/internal/domain"
	"github.com/larsvasseldonk/calmly-list/internal/infrastructure/redis"
)

// RedisUserRepository implements domain.UserRepository using Redis. The
// record lives under user:{id}; user:email:{email} is a SETNX-written index
// that doubles as the uniqueness guard.
type RedisUserRepository struct {
	redis  *redis.Client
	logger *slog.Logger
}

// NewRedisUserRepository creates a new user repository
func NewRedisUserRepository(redisClient *redis.Client, logger *slog.Logger) *RedisUserRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisUserRepository{
		redis:  redisClient,
		logger: logger,
	}
}

func userKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

func userEmailKey(email string) string {
	return fmt.Sprintf("user:email:%s", email)
}

// Create stores a new user, claiming the email index first so a duplicate
// registration loses the race and maps to domain.ErrDuplicateEmail
func (r *RedisUserRepository) Create(user *domain.User) error {
	ctx := context.Background()

	claimed, err := r.redis.SetNX(ctx, userEmailKey(user.Email), user.ID)
	if err != nil {
		return fmt.Errorf("failed to claim email: %w", err)
	}
	if !claimed {
		return domain.ErrDuplicateEmail
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := r.redis.Set(ctx, userKey(user.ID), string(data)); err != nil {
		// Roll the index back so the email is not orphaned
		if _, delErr := r.redis.Delete(ctx, userEmailKey(user.Email)); delErr != nil {
			r.logger.Error("failed to release email index",
				slog.String("email", user.Email),
				slog.String("error", delErr.Error()),
			)
		}
		return fmt.Errorf("failed to store user: %w", err)
	}

	r.logger.Debug("user saved", slog.String("user_id", user.ID))
	return nil
}

// GetByID retrieves a user by id
func (r *RedisUserRepository) GetByID(id string) (*domain.User, error) {
	data, err := r.redis.Get(context.Background(), userKey(id))
	if err != nil {
		if redis.IsNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &user, nil
}

// GetByEmail retrieves a user through the email index
func (r *RedisUserRepository) GetByEmail(email string) (*domain.User, error) {
	id, err := r.redis.Get(context.Background(), userEmailKey(email))
	if err != nil {
		if redis.IsNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve email: %w", err)
	}

	return r.GetByID(id)
}
