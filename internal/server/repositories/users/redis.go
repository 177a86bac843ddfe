package users

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "auth:user:"

// RedisRepository stores each account as a hash under auth:user:<email>
// with the fields id, email, password_hash, role and created_at.
type RedisRepository struct {
	client redis.UniversalClient
}

func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	return &RedisRepository{client: client}
}

func redisKey(email string) string {
	return redisKeyPrefix + models.NormalizeEmail(email)
}

func (r *RedisRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	fields, err := r.client.HGetAll(ctx, redisKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return nil, common.ErrorNotFound
	}

	user := &models.User{
		ID:           fields["id"],
		Email:        fields["email"],
		PasswordHash: fields["password_hash"],
		Role:         fields["role"],
	}
	if ts := fields["created_at"]; ts != "" {
		created, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("redis error: bad created_at for %s: %w", user.Email, err)
		}
		user.CreatedAt = created
	}

	return user, nil
}

// Upsert writes all fields of user. created_at is only set on first insert;
// user.CreatedAt is updated to the stored value.
func (r *RedisRepository) Upsert(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	key := redisKey(user.Email)

	created := user.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	var stored *redis.StringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"id", user.ID,
			"email", user.Email,
			"password_hash", user.PasswordHash,
			"role", user.Role,
		)
		pipe.HSetNX(ctx, key, "created_at", created.Format(time.RFC3339Nano))
		stored = pipe.HGet(ctx, key, "created_at")
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, stored.Val())
	if err != nil {
		return fmt.Errorf("redis error: bad created_at for %s: %w", user.Email, err)
	}
	user.CreatedAt = ts

	return nil
}
