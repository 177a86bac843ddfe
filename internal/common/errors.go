// Package common defines shared constants and sentinel errors used across
// the login service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Token errors (malformed, tampered or signed with another key).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrSigningKeyMissing is returned when no secret is configured for tokens.
	ErrSigningKeyMissing = errors.New("signing key is not configured")

	// Provisioning errors.
	ErrInvalidSeed = errors.New("invalid seed")
)
