// Package users contains the credential stores: an in-memory map, a
// PostgreSQL table and a Redis hash per account. All of them normalise the
// email before use and report a missing account as common.ErrorNotFound.
package users

import (
	"context"

	"github.com/dmitrijs2005/entrelibros-auth/internal/server/models"
)

// Repository is the read-only view of the credential store used by the
// authentication pipeline. Implementations must be safe for concurrent use.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Store adds provisioning on top of Repository. Only the seeding tool
// writes; request handling never does.
type Store interface {
	Repository
	Upsert(ctx context.Context, user *models.User) error
}
