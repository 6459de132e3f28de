package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, err := m.GenerateTerminalToken("till-1", "Front counter")
	require.NoError(t, err)

	claims, err := m.ValidateTerminalToken(token)
	require.NoError(t, err)
	assert.Equal(t, "till-1", claims.TerminalID)
	assert.Equal(t, "Front counter", claims.Name)
	assert.Equal(t, "receipt-print-api", claims.Issuer)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTManager("other", time.Hour).GenerateTerminalToken("till-1", "")
		require.NoError(t, err)
		_, err = m.ValidateTerminalToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := NewJWTManager("secret", -time.Minute).GenerateTerminalToken("till-1", "")
		require.NoError(t, err)
		_, err = m.ValidateTerminalToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateTerminalToken("not-a-token")
		assert.Error(t, err)
	})
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("4821")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("4821", hash))
	assert.False(t, CheckPasswordHash("4822", hash))
	assert.False(t, CheckPasswordHash("4821", "not-a-hash"))
}
