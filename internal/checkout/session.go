package checkout

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the signed-in user's bearer token. It is created at login and
// closed at logout; a closed or expired session yields no token.
type Session struct {
	mu        sync.RWMutex
	token     string
	email     string
	expiresAt time.Time
	closed    bool
	now       func() time.Time
}

// NewSession wraps token. A zero expiresAt never expires.
func NewSession(token, email string, expiresAt time.Time) *Session {
	return &Session{
		token:     token,
		email:     email,
		expiresAt: expiresAt,
		now:       time.Now,
	}
}

// SessionFromToken reads the expiry from the token's exp claim. The
// signature is not checked here; the server does that on every call.
func SessionFromToken(token, email string) (*Session, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}

	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	return NewSession(token, email, exp), nil
}

func (s *Session) Valid() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validLocked()
}

func (s *Session) validLocked() bool {
	if s.closed || s.token == "" {
		return false
	}
	return s.expiresAt.IsZero() || s.now().Before(s.expiresAt)
}

// Token returns the bearer token, or "" once the session is no longer valid.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.validLocked() {
		return ""
	}
	return s.token
}

func (s *Session) Email() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Close destroys the token.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.token = ""
	s.mu.Unlock()
}
