// Package models holds the credential records and identity DTOs shared by
// the stores, the authentication service and the transports.
package models

import (
	"strings"
	"time"
)

// User is a stored credential record. Email is unique and kept normalised
// (see NormalizeEmail). PasswordHash is a bcrypt hash and is never serialised.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the public view of an authenticated user.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// Identity returns the public part of u.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
