package provision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
	"github.com/dmitrijs2005/entrelibros-auth/internal/logging"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/auth"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newProvisioner(t *testing.T) (*Provisioner, *auth.PasswordVerifier) {
	t.Helper()
	v, err := auth.NewPasswordVerifier(bcrypt.MinCost, 2)
	require.NoError(t, err)
	return NewProvisioner(v, logging.NewNopLogger()), v
}

func TestApply_MemoryStore(t *testing.T) {
	p, v := newProvisioner(t)
	store := users.NewMemoryRepository()
	ctx := context.Background()

	seed := append(DefaultSeed(), SeedUser{ID: "2", Email: "ops@entrelibros.com", Role: "admin", PasswordHash: validHash})
	require.NoError(t, p.Apply(ctx, store, seed))

	u, err := store.GetUserByEmail(ctx, "user@entrelibros.com")
	require.NoError(t, err)
	assert.NotEqual(t, "correcthorsebatterystaple", u.PasswordHash)
	ok, err := v.Verify(ctx, []byte("correcthorsebatterystaple"), u.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	ops, err := store.GetUserByEmail(ctx, "ops@entrelibros.com")
	require.NoError(t, err)
	assert.Equal(t, validHash, ops.PasswordHash, "pre-hashed passwords are stored as given")
	assert.Equal(t, "admin", ops.Role)
}

func TestApply_RejectsHashWithOtherCost(t *testing.T) {
	v, err := auth.NewPasswordVerifier(bcrypt.MinCost+1, 2)
	require.NoError(t, err)
	p := NewProvisioner(v, logging.NewNopLogger())
	store := users.NewMemoryRepository()

	seed := append(DefaultSeed(), SeedUser{ID: "2", Email: "ops@entrelibros.com", Role: "admin", PasswordHash: validHash})
	err = p.Apply(context.Background(), store, seed)
	require.ErrorIs(t, err, common.ErrInvalidSeed)
	assert.ErrorContains(t, err, "cost 4, want 5")

	_, err = store.GetUserByEmail(context.Background(), "user@entrelibros.com")
	assert.ErrorIs(t, err, common.ErrorNotFound, "nothing is written when the seed is rejected")
}

type failingHasher struct{}

func (failingHasher) Hash(context.Context, []byte) (string, error) { return "", errors.New("pool closed") }
func (failingHasher) Cost() int                                     { return bcrypt.MinCost }

func TestApply_HashError(t *testing.T) {
	p := NewProvisioner(failingHasher{}, logging.NewNopLogger())
	err := p.Apply(context.Background(), users.NewMemoryRepository(), DefaultSeed())
	assert.ErrorContains(t, err, "pool closed")
}

const upsertQ = `(?s)^INSERT\s+INTO\s+users.*ON\s+CONFLICT.*RETURNING\s+id,\s*created_at\s*$`

func TestApplyPostgres_CommitsAll(t *testing.T) {
	p, _ := newProvisioner(t)
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(upsertQ).
		WithArgs("1", "user@entrelibros.com", sqlmock.AnyArg(), "user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	mock.ExpectQuery(upsertQ).
		WithArgs("2", "ops@entrelibros.com", validHash, "admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("2", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	mock.ExpectCommit()

	seed := append(DefaultSeed(), SeedUser{ID: "2", Email: "ops@entrelibros.com", Role: "admin", PasswordHash: validHash})
	require.NoError(t, p.ApplyPostgres(context.Background(), db, repomanager.NewPostgresRepositoryManager(), seed))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPostgres_RollsBackOnFailure(t *testing.T) {
	p, _ := newProvisioner(t)
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(upsertQ).WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err = p.ApplyPostgres(context.Background(), db, repomanager.NewPostgresRepositoryManager(), DefaultSeed())
	assert.ErrorContains(t, err, "constraint violation")
	require.NoError(t, mock.ExpectationsWereMet())
}
