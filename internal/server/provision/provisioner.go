package provision

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
	"github.com/dmitrijs2005/entrelibros-auth/internal/dbx"
	"github.com/dmitrijs2005/entrelibros-auth/internal/logging"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/models"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// Hasher is satisfied by *auth.PasswordVerifier.
type Hasher interface {
	Hash(ctx context.Context, password []byte) (string, error)
	Cost() int
}

type Provisioner struct {
	hasher Hasher
	log    logging.Logger
}

func NewProvisioner(h Hasher, log logging.Logger) *Provisioner {
	return &Provisioner{hasher: h, log: log.With("module", "provision")}
}

// Prepare turns seed entries into user records, hashing plaintext passwords.
// Pre-hashed entries must use the hasher's cost.
func (p *Provisioner) Prepare(ctx context.Context, seed []SeedUser) ([]models.User, error) {
	out := make([]models.User, 0, len(seed))
	for _, s := range seed {
		hash := s.PasswordHash
		if hash != "" {
			cost, err := bcrypt.Cost([]byte(hash))
			if err != nil {
				return nil, fmt.Errorf("%w: %s has an unusable password_hash: %v", common.ErrInvalidSeed, s.Email, err)
			}
			if cost != p.hasher.Cost() {
				return nil, fmt.Errorf("%w: %s password_hash has cost %d, want %d", common.ErrInvalidSeed, s.Email, cost, p.hasher.Cost())
			}
		} else {
			pw := []byte(s.Password)
			h, err := p.hasher.Hash(ctx, pw)
			common.WipeByteArray(pw)
			if err != nil {
				return nil, fmt.Errorf("hash password for %s: %w", s.Email, err)
			}
			hash = h
		}
		out = append(out, models.User{
			ID:           s.ID,
			Email:        models.NormalizeEmail(s.Email),
			PasswordHash: hash,
			Role:         s.Role,
		})
	}
	return out, nil
}

// Apply hashes and upserts every seed entry into store.
func (p *Provisioner) Apply(ctx context.Context, store users.Store, seed []SeedUser) error {
	prepared, err := p.Prepare(ctx, seed)
	if err != nil {
		return err
	}
	return p.upsertAll(ctx, store, prepared)
}

// ApplyPostgres is Apply inside one transaction: either every account is
// written or none is. Hashing happens before the transaction opens.
func (p *Provisioner) ApplyPostgres(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager, seed []SeedUser) error {
	prepared, err := p.Prepare(ctx, seed)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return p.upsertAll(ctx, rm.Users(tx), prepared)
	})
}

func (p *Provisioner) upsertAll(ctx context.Context, store users.Store, prepared []models.User) error {
	for i := range prepared {
		if err := store.Upsert(ctx, &prepared[i]); err != nil {
			return fmt.Errorf("provision %s: %w", prepared[i].Email, err)
		}
	}
	p.log.Info(ctx, "users provisioned", "count", len(prepared))
	return nil
}
