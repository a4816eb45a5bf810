package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the length of a generated salt in bytes.
	SaltSize = 16
	// KeySize is the length of a derived key in bytes.
	KeySize = 32
	// Iterations is the PBKDF2 work factor. Changing it invalidates every
	// stored hash.
	Iterations = 100_000
)

// Salt is random per-user input to the key derivation.
type Salt []byte

// DerivedKey is the PBKDF2 output stored in place of the password.
type DerivedKey []byte

// Hasher derives and verifies password keys with PBKDF2-HMAC-SHA256.
// Derive and Verify are CPU bound and take tens of milliseconds.
type Hasher struct {
	random io.Reader
}

// NewHasher returns a Hasher reading salts from crypto/rand.
func NewHasher() *Hasher {
	return &Hasher{random: rand.Reader}
}

// NewHasherWithReader returns a Hasher reading salts from r.
func NewHasherWithReader(r io.Reader) *Hasher {
	return &Hasher{random: r}
}

// GenerateSalt reads SaltSize bytes from the random source. A short read or
// a failing source is an error; there is no fallback.
func (h *Hasher) GenerateSalt() (Salt, error) {
	salt := make(Salt, SaltSize)
	if _, err := io.ReadFull(h.random, salt); err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	return salt, nil
}

// Derive computes the key for password and salt. The same inputs always
// produce the same key.
func (h *Hasher) Derive(password string, salt Salt) DerivedKey {
	return pbkdf2.Key([]byte(password), salt, Iterations, KeySize, sha256.New)
}

// Verify reports whether password derives to expected under salt. Missing
// salt or expected key yields false.
func (h *Hasher) Verify(password string, salt Salt, expected DerivedKey) bool {
	if len(salt) == 0 || len(expected) == 0 {
		return false
	}
	return constantTimeEqual(h.Derive(password, salt), expected)
}

// constantTimeEqual compares every byte position up to the longer length,
// so the running time depends only on the lengths. Unlike
// subtle.ConstantTimeCompare it does not return early on a length mismatch.
func constantTimeEqual(a, b []byte) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	var diff byte
	for i := 0; i < n; i++ {
		var x, y byte
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		diff |= x ^ y
	}

	sameLen := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	return subtle.ConstantTimeByteEq(diff, 0)&sameLen == 1
}

// EncodeSalt encodes a salt for storage.
func EncodeSalt(s Salt) string {
	return base64.StdEncoding.EncodeToString(s)
}

// DecodeSalt decodes a stored salt.
func DecodeSalt(s string) (Salt, error) {
	return base64.StdEncoding.DecodeString(s)
}

// EncodeKey encodes a derived key for storage.
func EncodeKey(k DerivedKey) string {
	return base64.StdEncoding.EncodeToString(k)
}

// DecodeKey decodes a stored derived key.
func DecodeKey(s string) (DerivedKey, error) {
	return base64.StdEncoding.DecodeString(s)
}
