// Package services contains the server-side business logic. AuthService
// runs the login pipeline: credential lookup, password check and token
// issuance, reporting the result as an Outcome.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
	"github.com/dmitrijs2005/entrelibros-auth/internal/logging"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/auth"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/models"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/repositories/users"
)

// OutcomeKind tells the two expected login results apart. The zero value
// is OutcomeInvalidCredentials.
type OutcomeKind int

const (
	OutcomeInvalidCredentials OutcomeKind = iota
	OutcomeSuccess
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of Authenticate. Token, ExpiresAt and Identity are
// only set when Kind is OutcomeSuccess.
type Outcome struct {
	Kind      OutcomeKind
	Token     string
	ExpiresAt time.Time
	Identity  models.Identity
}

// Succeeded reports whether the credentials were accepted.
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess
}

// PasswordChecker is satisfied by *auth.PasswordVerifier.
type PasswordChecker interface {
	Verify(ctx context.Context, password []byte, hash string) (bool, error)
	VerifyAbsent(ctx context.Context, password []byte) error
}

// TokenService is satisfied by *auth.TokenIssuer.
type TokenService interface {
	Issue(identity models.Identity) (string, time.Time, error)
	Verify(token string) (*auth.Claims, error)
}

type AuthService struct {
	users    users.Repository
	verifier PasswordChecker
	tokens   TokenService
	log      logging.Logger
}

func NewAuthService(repo users.Repository, verifier PasswordChecker, tokens TokenService, log logging.Logger) *AuthService {
	return &AuthService{
		users:    repo,
		verifier: verifier,
		tokens:   tokens,
		log:      log.With("module", "auth_service"),
	}
}

var invalidCredentials = Outcome{Kind: OutcomeInvalidCredentials}

// Authenticate checks email and password. An unknown email and a wrong
// password both produce OutcomeInvalidCredentials with a nil error, after
// the same amount of hashing work. Store, hashing and signing faults are
// returned as errors wrapping common.ErrorInternal.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (Outcome, error) {
	pw := []byte(password)
	defer common.WipeByteArray(pw)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "credential lookup failed", "email", email, "error", err)
			return Outcome{}, fmt.Errorf("%w: lookup: %w", common.ErrorInternal, err)
		}
		if err := s.verifier.VerifyAbsent(ctx, pw); err != nil {
			s.log.Error(ctx, "password check failed", "email", email, "error", err)
			return Outcome{}, fmt.Errorf("%w: verify: %w", common.ErrorInternal, err)
		}
		s.log.Info(ctx, "login rejected", "email", email)
		return invalidCredentials, nil
	}

	ok, err := s.verifier.Verify(ctx, pw, user.PasswordHash)
	if err != nil {
		s.log.Error(ctx, "password check failed", "email", email, "error", err)
		return Outcome{}, fmt.Errorf("%w: verify: %w", common.ErrorInternal, err)
	}
	if !ok {
		s.log.Info(ctx, "login rejected", "email", email)
		return invalidCredentials, nil
	}

	identity := user.Identity()
	token, expiresAt, err := s.tokens.Issue(identity)
	if err != nil {
		s.log.Error(ctx, "token issuance failed", "email", email, "error", err)
		return Outcome{}, fmt.Errorf("%w: issue token: %w", common.ErrorInternal, err)
	}

	s.log.Info(ctx, "login succeeded", "user_id", identity.ID)
	return Outcome{
		Kind:      OutcomeSuccess,
		Token:     token,
		ExpiresAt: expiresAt,
		Identity:  identity,
	}, nil
}

// Identify verifies a session token and returns the identity it carries.
// Only claims are used; the store is not consulted.
func (s *AuthService) Identify(ctx context.Context, token string) (models.Identity, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.log.Debug(ctx, "session rejected", "error", err)
		return models.Identity{}, err
	}
	return claims.Identity(), nil
}
