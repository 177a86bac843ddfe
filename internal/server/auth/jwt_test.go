package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

var alice = models.Identity{ID: "1", Email: "user@entrelibros.com", Role: "user"}

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("super-secret", time.Hour)
	before := time.Now().Truncate(time.Second)

	tok, exp, err := issuer.Issue(alice)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if exp.Before(before.Add(time.Hour)) || exp.After(time.Now().Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", exp)
	}

	claims, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "1" || claims.Role != "user" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.ID == "" || claims.IssuedAt == nil {
		t.Fatalf("jti and iat must be set: %+v", claims)
	}
	if got := claims.Identity(); got.ID != alice.ID || got.Role != alice.Role {
		t.Fatalf("identity mismatch: %+v", got)
	}
}

func TestIssue_TokensAreUnique(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("k", time.Hour)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return fixed }

	a, _, err := issuer.Issue(alice)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	b, _, err := issuer.Issue(alice)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if a == b {
		t.Fatalf("two issuances at the same instant produced the same token")
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", time.Minute)
	issued := time.Now().Add(-2 * time.Minute)
	issuer.now = func() time.Time { return issued }

	tok, _, err := issuer.Issue(alice)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Verify(tok); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewTokenIssuer("right", time.Hour).Issue(alice)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := NewTokenIssuer("wrong", time.Hour).Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", time.Hour)
	tok, _, err := issuer.Issue(alice)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(tok, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	forged := strings.Replace(string(payload), `"role":"user"`, `"role":"admin"`, 1)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	if _, err := issuer.Verify(strings.Join(parts, ".")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("secret", time.Hour)
	tok, _, err := issuer.Issue(alice)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	parts := strings.Split(tok, ".")
	// The last character carries padding bits, so it is left alone.
	for _, i := range []int{0, 10, len(parts[2]) - 2} {
		sig := []byte(parts[2])
		if sig[i] == 'A' {
			sig[i] = 'B'
		} else {
			sig[i] = 'A'
		}
		forged := parts[0] + "." + parts[1] + "." + string(sig)

		if _, err := issuer.Verify(forged); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("signature byte %d: expected common.ErrInvalidToken, got %v", i, err)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "admin",
	})
	tok, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	if _, err := NewTokenIssuer("secret", time.Hour).Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestVerify_RequiresExpiry(t *testing.T) {
	t.Parallel()

	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	})
	tok, err := raw.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := NewTokenIssuer("secret", time.Hour).Verify(tok); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenIssuer("secret", time.Hour).Verify("not-a-jwt"); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestMissingSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("", time.Hour)
	if _, _, err := issuer.Issue(alice); !errors.Is(err, common.ErrSigningKeyMissing) {
		t.Fatalf("Issue: expected common.ErrSigningKeyMissing, got %v", err)
	}
	if _, err := issuer.Verify("a.b.c"); !errors.Is(err, common.ErrSigningKeyMissing) {
		t.Fatalf("Verify: expected common.ErrSigningKeyMissing, got %v", err)
	}
}
