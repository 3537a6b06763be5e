// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package recovery generates and checks one-time password reset codes.
package recovery

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	// CodeLength is the number of digits of a reset code.
	CodeLength = 6
	// CodeExpiry is how long a reset code is valid.
	CodeExpiry = 15 * time.Minute
	// MaxAttempts is the number of wrong guesses after which a code is void.
	MaxAttempts = 5
	// bcryptCost is the cost factor for bcrypt hashing.
	bcryptCost = 10
)

const digits = "0123456789"

// Service handles reset code generation and validation.
type Service struct {
	cost int
}

// NewService creates a new recovery service.
func NewService() *Service {
	return &Service{cost: bcryptCost}
}

// GenerateCode returns a numeric code for the user and its hash for storage.
func (s *Service) GenerateCode() (string, string, error) {
	code, err := generateCode(CodeLength)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.cost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash code: %w", err)
	}

	return code, string(hash), nil
}

// Verify reports whether code matches the stored hash.
func (s *Service) Verify(hash, code string) bool {
	code = NormalizeCode(code)
	if len(code) != CodeLength {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}

// NormalizeCode removes spaces and dashes users tend to type.
func NormalizeCode(code string) string {
	code = strings.ReplaceAll(code, "-", "")
	return strings.ReplaceAll(strings.TrimSpace(code), " ", "")
}

// generateCode generates a uniformly random digit string.
func generateCode(length int) (string, error) {
	out := make([]byte, length)
	limit := big.NewInt(int64(len(digits)))

	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = digits[n.Int64()]
	}

	return string(out), nil
}
