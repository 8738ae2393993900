package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher derives and verifies bcrypt password hashes. The cost factor comes
// from configuration; each hash embeds its own random salt and cost, so two
// hashes of the same plaintext never match byte-for-byte.
type Hasher struct {
	cost int
}

// NewHasher clamps the cost into bcrypt's valid range. Zero (unset config)
// falls back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext. Failure here is an internal
// fault (ErrHashing), not a user error.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches stored. A wrong password or a
// malformed stored hash is a normal false result, never an error — bcrypt's
// comparison is constant-time.
func (h *Hasher) Verify(plaintext, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext)) == nil
}
