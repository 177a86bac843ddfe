package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/models"
)

// MemoryRepository keeps users in a map keyed by normalised email.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]models.User)}
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	u, ok := r.users[models.NormalizeEmail(email)]
	r.mu.RUnlock()

	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

// Upsert stores a copy of user, replacing any record with the same email.
// The first insert keeps the supplied CreatedAt or stamps the current time.
func (r *MemoryRepository) Upsert(ctx context.Context, user *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u := *user
	u.Email = models.NormalizeEmail(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.users[u.Email]; ok {
		u.CreatedAt = prev.CreatedAt
	} else if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.Email] = u
	user.CreatedAt = u.CreatedAt

	return nil
}
