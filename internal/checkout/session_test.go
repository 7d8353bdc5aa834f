package checkout

import (
	"errors"
	"testing"
	"time"

	"customkeeps/internal/payment"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	t.Run("Valid until closed", func(t *testing.T) {
		s := NewSession("tok", "a@example.com", time.Time{})
		assert.True(t, s.Valid())
		assert.Equal(t, "tok", s.Token())

		s.Close()
		assert.False(t, s.Valid())
		assert.Empty(t, s.Token())
		assert.Equal(t, "a@example.com", s.Email())
	})

	t.Run("Expired", func(t *testing.T) {
		s := NewSession("tok", "a@example.com", time.Now().Add(time.Hour))
		s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		assert.False(t, s.Valid())
		assert.Empty(t, s.Token())
	})

	t.Run("Nil session", func(t *testing.T) {
		var s *Session
		assert.False(t, s.Valid())
		assert.Empty(t, s.Token())
	})
}

func TestSessionFromToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := tok.SignedString([]byte("any"))
	require.NoError(t, err)

	s, err := SessionFromToken(signed, "a@example.com")
	require.NoError(t, err)
	assert.True(t, s.Valid())
	assert.True(t, exp.Equal(s.ExpiresAt()))

	_, err = SessionFromToken("not-a-jwt", "a@example.com")
	assert.Error(t, err)
}

func TestError(t *testing.T) {
	err := classify("open payment session", payment.ErrPriceChanged)
	assert.ErrorIs(t, err, ErrSessionStale)
	assert.ErrorIs(t, err, payment.ErrPriceChanged)
	assert.NotErrorIs(t, err, ErrNetwork)
	assert.Equal(t, "open payment session: "+payment.ErrPriceChanged.Error(), err.Error())

	err = classify("list orders", errors.New("connection reset"))
	assert.ErrorIs(t, err, ErrNetwork)

	commit := &Error{Kind: KindCommit, Op: "commit order", Err: errors.New("500"), Message: MsgCommitFailed}
	assert.ErrorIs(t, commit, ErrCommit)
	assert.Contains(t, commit.Error(), "contact support")

	var ce *Error
	assert.True(t, errors.As(error(commit), &ce))
	assert.Equal(t, KindCommit, ce.Kind)
}
