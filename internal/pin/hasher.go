// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package pin derives and verifies the short numeric PIN that gates the
// vault. Derivation is PBKDF2-HMAC-SHA256 with a fixed high iteration
// count; the PIN space is tiny, so the iterated derivation is what makes
// offline guessing against a leaked digest non-free.
package pin // import "github.com/toeirei/pinvault/internal/pin"

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltLength is the fixed salt size in bytes.
	SaltLength = 16
	// Iterations is the fixed PBKDF2 iteration count.
	Iterations = 100_000
	// DigestLength is the derived digest size in bytes.
	DigestLength = 32
)

// GenerateSalt returns a fresh cryptographically random salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Derive computes the PBKDF2 digest of the given PIN under the given salt.
// The hasher is agnostic to PIN format; callers validate shape beforehand.
func Derive(pin string, salt []byte) []byte {
	return pbkdf2.Key([]byte(pin), salt, Iterations, DigestLength, sha256.New)
}

// Verify recomputes the digest for the candidate PIN and compares it against
// the expected one in constant time.
func Verify(pin string, salt, expected []byte) bool {
	if len(salt) == 0 || len(expected) == 0 {
		return false
	}
	got := Derive(pin, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
