package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/text/width"
)

var codeSpace = big.NewInt(1_000_000)

// GenerateVerificationCode returns a uniformly random 6-digit code, zero-padded.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// NormalizeCode narrows full-width digits and trims surrounding space from a typed code.
func NormalizeCode(code string) string {
	return strings.TrimSpace(width.Narrow.String(code))
}
