package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRoundTrip(t *testing.T) {
	v := NewJWTValidator("test-secret", "teamsqa-backend")

	token, err := v.Issue("u-1", "admin@example.com", "admin", time.Minute)
	require.NoError(t, err)

	claims, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateRejections(t *testing.T) {
	v := NewJWTValidator("test-secret", "teamsqa-backend")

	t.Run("expired", func(t *testing.T) {
		token, err := v.Issue("u-1", "a@example.com", "admin", -time.Minute)
		require.NoError(t, err)
		_, err = v.Validate(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTValidator("other-secret", "teamsqa-backend")
		token, err := other.Issue("u-1", "a@example.com", "admin", time.Minute)
		require.NoError(t, err)
		_, err = v.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTValidator("test-secret", "someone-else")
		token, err := other.Issue("u-1", "a@example.com", "admin", time.Minute)
		require.NoError(t, err)
		_, err = v.Validate(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := v.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestSlidingWindowLimiter(t *testing.T) {
	l := NewSlidingWindowLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("ip:1.2.3.4"), "request %d within limit", i)
	}
	assert.False(t, l.Allow("ip:1.2.3.4"), "fourth request exceeds the limit")
	assert.True(t, l.Allow("ip:5.6.7.8"), "keys are independent")

	time.Sleep(60 * time.Millisecond)
	assert.True(t, l.Allow("ip:1.2.3.4"), "window expiry frees the key")

	l.Reset("ip:5.6.7.8")
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("ip:5.6.7.8"))
	}
}
