package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/entrelibros-auth/internal/dbx"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to a connection or a
// transaction and owns schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Store
}
