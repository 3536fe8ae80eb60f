package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("samepassword")
	require.NoError(t, err)
	second, err := HashPassword("samepassword")
	require.NoError(t, err)

	assert.NotEqual(t, string(first), string(second))
}

func TestHashPasswordFormat(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(hash), "$argon2id$"))
	assert.Len(t, strings.Split(string(hash), "$"), 6)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$not-base64!$aGFzaA",
	}

	for _, bad := range cases {
		ok, err := VerifyPassword("anything", []byte(bad))
		assert.False(t, ok)
		assert.Error(t, err)
	}
}
