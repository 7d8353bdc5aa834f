package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	token, exp, err := iss.Generate(7, "buyer@example.com", "customer")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "buyer@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
}

func TestIssuer_Errors(t *testing.T) {
	t.Run("Missing secret", func(t *testing.T) {
		iss := NewIssuer("", time.Hour)
		_, _, err := iss.Generate(1, "a@b.c", "")
		assert.ErrorIs(t, err, ErrMissingSecret)

		_, err = iss.Parse("x")
		assert.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, _, err := NewIssuer("one", time.Hour).Generate(1, "a@b.c", "")
		require.NoError(t, err)

		_, err = NewIssuer("two", time.Hour).Parse(token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		claims := CustomClaims{
			UserID: 1,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = NewIssuer("secret", time.Hour).Parse(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := NewIssuer("secret", time.Hour).Parse("not-a-token")
		assert.Error(t, err)
	})
}
