// Package otp issues and verifies short-lived numeric one-time codes.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// CodeLength is the number of decimal digits in a code
const CodeLength = 6

// Generator creates codes and their one-way hashes
type Generator struct {
	cost int
}

// NewGenerator returns a generator hashing with the given bcrypt cost.
// Out of range costs fall back to bcrypt.DefaultCost.
func NewGenerator(cost int) *Generator {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Generator{cost: cost}
}

// Generate returns a fresh plaintext code and its hash
func (g *Generator) Generate() (string, string, error) {
	code, err := randomDigits(CodeLength)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), g.cost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash code: %w", err)
	}

	return code, string(hash), nil
}

// Verify reports whether candidate matches storedHash
func (g *Generator) Verify(candidate, storedHash string) bool {
	if candidate == "" || storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate)) == nil
}

func randomDigits(n int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
