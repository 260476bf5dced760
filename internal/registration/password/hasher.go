// Package password provides the one-way credential transform used at
// registration. The plaintext never leaves this package boundary: it is
// hashed with a per-call random salt and discarded.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher converts a plaintext secret into a verifiable hash string.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher implements Hasher with bcrypt. The salt is embedded in the
// hash string, so two hashes of the same plaintext differ while each still
// verifies against its own plaintext.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher constructs a hasher at the library default cost.
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
