package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Password schemes accepted by NewPasswordHasher.
const (
	SchemeSHA256 = "sha256"
	SchemeBcrypt = "bcrypt"
)

// PasswordHasher produces and checks password digests.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// NewPasswordHasher returns the hasher for scheme. An empty scheme selects
// SHA-256.
func NewPasswordHasher(scheme string) (PasswordHasher, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeSHA256:
		return SHA256Hasher{}, nil
	case SchemeBcrypt:
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// SHA256Hasher stores the hex SHA-256 of the UTF-8 password. It is unsalted:
// equal passwords give equal digests. Kept as the default so that existing
// users files stay valid.
type SHA256Hasher struct{}

// Hash returns the lowercase hex digest of password.
func (SHA256Hasher) Hash(password string) (string, error) {
	return sha256Hex(password), nil
}

// Verify compares in constant time; the stored digest may be upper case.
func (SHA256Hasher) Verify(password, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(sha256Hex(password)), []byte(strings.ToLower(digest))) == 1
}

// BcryptHasher stores salted bcrypt hashes. Verify also accepts legacy
// SHA-256 digests written before the scheme was switched.
type BcryptHasher struct {
	Cost int
}

// Hash returns a bcrypt hash at h.Cost. Passwords over 72 bytes fail with
// bcrypt.ErrPasswordTooLong.
func (h BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Verify checks password against a bcrypt hash or a legacy SHA-256 digest.
func (h BcryptHasher) Verify(password, digest string) bool {
	if isSHA256Digest(digest) {
		return SHA256Hasher{}.Verify(password, digest)
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func isSHA256Digest(s string) bool {
	if len(s) != hex.EncodedLen(sha256.Size) {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
