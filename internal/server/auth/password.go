package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// PasswordVerifier compares passwords with bcrypt hashes. At most `workers`
// hashing operations run at once; callers beyond that wait on their context.
type PasswordVerifier struct {
	cost  int
	sem   *semaphore.Weighted
	dummy []byte
}

// NewPasswordVerifier builds a verifier hashing at cost. A throwaway hash of
// the same cost is prepared for VerifyAbsent.
func NewPasswordVerifier(cost, workers int) (*PasswordVerifier, error) {
	if workers < 1 {
		workers = 1
	}

	dummy, err := bcrypt.GenerateFromPassword(common.GenerateRandByteArray(32), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &PasswordVerifier{
		cost:  cost,
		sem:   semaphore.NewWeighted(int64(workers)),
		dummy: dummy,
	}, nil
}

// Cost is the bcrypt cost used for new hashes and for the dummy hash.
func (v *PasswordVerifier) Cost() int {
	return v.cost
}

// Verify reports whether password matches hash. A mismatch is (false, nil);
// a hash bcrypt cannot parse is an error.
//
// A stored hash cheaper than the configured cost is topped up with a dummy
// compare, so a known account never answers faster than VerifyAbsent.
func (v *PasswordVerifier) Verify(ctx context.Context, password []byte, hash string) (bool, error) {
	if err := v.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer v.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), password)
	if cost, cerr := bcrypt.Cost([]byte(hash)); cerr == nil && cost < v.cost {
		_ = bcrypt.CompareHashAndPassword(v.dummy, password)
	}
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, fmt.Errorf("malformed password hash: %w", err)
	}
}

// VerifyAbsent spends the same work as Verify for an account that does not
// exist. The result is always a mismatch.
func (v *PasswordVerifier) VerifyAbsent(ctx context.Context, password []byte) error {
	if err := v.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer v.sem.Release(1)

	_ = bcrypt.CompareHashAndPassword(v.dummy, password)
	return nil
}

// Hash produces a bcrypt hash for provisioning.
func (v *PasswordVerifier) Hash(ctx context.Context, password []byte) (string, error) {
	if err := v.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer v.sem.Release(1)

	h, err := bcrypt.GenerateFromPassword(password, v.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
