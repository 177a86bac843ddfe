// Package provision loads user accounts from a JSON seed and writes them
// into a credential store. It is the only writer of the stores.
//
// Seed format:
//
//	[
//	  {"id": "1", "email": "user@entrelibros.com", "role": "user", "password": "..."},
//	  {"email": "ops@entrelibros.com", "role": "admin", "password_hash": "$2a$10$..."}
//	]
//
// Exactly one of password and password_hash must be present. A missing id
// gets a random UUID and a missing role defaults to "user".
package provision

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/entrelibros-auth/internal/common"
	"github.com/dmitrijs2005/entrelibros-auth/internal/server/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const defaultRole = "user"

// SeedUser is one account in the seed file.
type SeedUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
}

// DefaultSeed is the demo account installed when no seed source is set.
func DefaultSeed() []SeedUser {
	return []SeedUser{{
		ID:       "1",
		Email:    "user@entrelibros.com",
		Role:     "user",
		Password: "correcthorsebatterystaple",
	}}
}

// ParseSeed decodes and validates a seed document.
func ParseSeed(data []byte) ([]SeedUser, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var seed []SeedUser
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidSeed, err)
	}

	seen := make(map[string]int, len(seed))
	for i := range seed {
		u := &seed[i]
		u.Email = models.NormalizeEmail(u.Email)

		if u.Email == "" {
			return nil, fmt.Errorf("%w: entry %d has no email", common.ErrInvalidSeed, i)
		}
		if prev, dup := seen[u.Email]; dup {
			return nil, fmt.Errorf("%w: entries %d and %d share email %s", common.ErrInvalidSeed, prev, i, u.Email)
		}
		seen[u.Email] = i

		if (u.Password == "") == (u.PasswordHash == "") {
			return nil, fmt.Errorf("%w: %s needs exactly one of password and password_hash", common.ErrInvalidSeed, u.Email)
		}
		if u.PasswordHash != "" {
			if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
				return nil, fmt.Errorf("%w: %s has an unusable password_hash: %v", common.ErrInvalidSeed, u.Email, err)
			}
		}
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		if u.Role == "" {
			u.Role = defaultRole
		}
	}

	return seed, nil
}
