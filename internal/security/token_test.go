package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, "user-1", "alice", "admin", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParseAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, "user-1", "alice", "user", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(testSecret, "user-1", "alice", "user", time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "a different secret")
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestParseAccessTokenMalformed(t *testing.T) {
	_, err := ParseAccessToken("not.a.jwt", testSecret)
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = ParseAccessToken("", testSecret)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestGenerateOpaqueToken(t *testing.T) {
	token, hash, err := GenerateOpaqueToken(32)
	require.NoError(t, err)

	assert.Len(t, token, 64) // 32 bytes hex-encoded
	assert.Equal(t, HashToken(token), hash)

	other, _, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestHashTokenDeterministic(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 32)
}
