package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher("")
	require.NoError(t, err)
	assert.IsType(t, SHA256Hasher{}, h)

	h, err = NewPasswordHasher(" BCRYPT ")
	require.NoError(t, err)
	assert.IsType(t, BcryptHasher{}, h)

	_, err = NewPasswordHasher("md5")
	assert.Error(t, err)
}

func TestSHA256Hasher(t *testing.T) {
	h := SHA256Hasher{}

	digest, err := h.Hash("hunter2")
	require.NoError(t, err)
	assert.Equal(t, "f52fbd32b2b3b86ff88ef6c490628285f482af15ddcb29541f94bcf526a3f6c7", digest)

	again, _ := h.Hash("hunter2")
	assert.Equal(t, digest, again, "unsalted digests are deterministic")

	assert.True(t, h.Verify("hunter2", digest))
	assert.True(t, h.Verify("hunter2", strings.ToUpper(digest)))
	assert.False(t, h.Verify("hunter3", digest))
	assert.False(t, h.Verify("hunter2", ""))
}

func TestSHA256Hasher_NonASCII(t *testing.T) {
	h := SHA256Hasher{}
	digest, err := h.Hash("contraseña")
	require.NoError(t, err)
	assert.Len(t, digest, 64)
	assert.True(t, h.Verify("contraseña", digest))
	assert.False(t, h.Verify("contrasena", digest))
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: 4}

	a, err := h.Hash("pw")
	require.NoError(t, err)
	b, err := h.Hash("pw")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "bcrypt digests are salted")

	assert.True(t, h.Verify("pw", a))
	assert.True(t, h.Verify("pw", b))
	assert.False(t, h.Verify("PW", a))
	assert.False(t, h.Verify("pw", "not-a-hash"))
}

func TestBcryptHasher_AcceptsLegacyDigest(t *testing.T) {
	h := BcryptHasher{Cost: 4}
	legacy := sha256Hex("old password")

	assert.True(t, h.Verify("old password", legacy))
	assert.False(t, h.Verify("new password", legacy))
}
