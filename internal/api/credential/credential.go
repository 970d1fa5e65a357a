// Package credential hashes and verifies passwords. It holds no state besides the bcrypt cost.
package credential

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-simple-crud/internal/types"
)

// MinPasswordLength is counted in characters, before hashing.
const MinPasswordLength = 5

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, or bcrypt.DefaultCost when cost is out of range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of rawPassword. Passwords shorter than MinPasswordLength or longer
// than bcrypt accepts fail with a validation error on the password field.
func (h *Hasher) Hash(rawPassword string) (string, error) {
	if utf8.RuneCountInString(rawPassword) < MinPasswordLength {
		return "", types.NewValidationError(types.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		})
	}
	if len(rawPassword) > maxPasswordBytes {
		return "", types.NewValidationError(types.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes),
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(rawPassword), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether rawPassword matches hash. A malformed hash is a mismatch.
func (h *Hasher) Verify(rawPassword, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawPassword))
	return err == nil
}
