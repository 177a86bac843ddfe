package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newVerifier(t *testing.T, workers int) *PasswordVerifier {
	t.Helper()
	v, err := NewPasswordVerifier(bcrypt.MinCost, workers)
	require.NoError(t, err)
	return v
}

func TestHashAndVerify(t *testing.T) {
	v := newVerifier(t, 2)
	ctx := context.Background()

	h, err := v.Hash(ctx, []byte("correcthorsebatterystaple"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$2a$"))

	ok, err := v.Verify(ctx, []byte("correcthorsebatterystaple"), h)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(ctx, []byte("Correcthorsebatterystaple"), h)
	require.NoError(t, err)
	assert.False(t, ok, "comparison is case sensitive")

	ok, err = v.Verify(ctx, []byte(""), h)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_MalformedHash(t *testing.T) {
	v := newVerifier(t, 1)

	ok, err := v.Verify(context.Background(), []byte("pw"), "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestVerify_OverlongPasswordIsMismatch(t *testing.T) {
	v := newVerifier(t, 1)
	h, err := v.Hash(context.Background(), []byte("short"))
	require.NoError(t, err)

	ok, err := v.Verify(context.Background(), []byte(strings.Repeat("x", 100)), h)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_CheaperStoredHashStillMatches(t *testing.T) {
	v, err := NewPasswordVerifier(bcrypt.MinCost+2, 1)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+2, v.Cost())

	cheap, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := v.Verify(context.Background(), []byte("pw"), string(cheap))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(context.Background(), []byte("nope"), string(cheap))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyAbsent(t *testing.T) {
	v := newVerifier(t, 1)
	assert.NoError(t, v.VerifyAbsent(context.Background(), []byte("anything")))
}

func TestHash_UsesConfiguredCost(t *testing.T) {
	v, err := NewPasswordVerifier(bcrypt.MinCost+1, 1)
	require.NoError(t, err)

	h, err := v.Hash(context.Background(), []byte("pw"))
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)

	dummyCost, err := bcrypt.Cost(v.dummy)
	require.NoError(t, err)
	assert.Equal(t, cost, dummyCost, "dummy hash must cost the same as real ones")
}

func TestNewPasswordVerifier_BadCost(t *testing.T) {
	_, err := NewPasswordVerifier(bcrypt.MaxCost+1, 1)
	assert.Error(t, err)
}

func TestVerify_SaturatedPoolHonoursContext(t *testing.T) {
	v := newVerifier(t, 1)
	require.NoError(t, v.sem.Acquire(context.Background(), 1))
	defer v.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := v.Verify(ctx, []byte("pw"), string(v.dummy))
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.True(t, errors.Is(v.VerifyAbsent(ctx, []byte("pw")), context.DeadlineExceeded))
	_, err = v.Hash(ctx, []byte("pw"))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestVerify_BoundedConcurrency(t *testing.T) {
	const workers = 2
	v := newVerifier(t, workers)
	h, err := v.Hash(context.Background(), []byte("pw"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := v.Verify(context.Background(), []byte("pw"), h)
			if err != nil || !ok {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, failures.Load())
	assert.True(t, v.sem.TryAcquire(workers), "all permits released after use")
}
