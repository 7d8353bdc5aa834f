package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"customkeeps/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, email, password string, role Role) (*User, error) {
	args := m.Called(ctx, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	issuer := auth.NewIssuer("testsecret", time.Hour)

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, issuer)

		repo.On("Create", ctx, "test@example.com", mock.AnythingOfType("string"), RoleCustomer).
			Return(&User{ID: 1, Email: "test@example.com", Role: RoleCustomer}, nil)

		res, err := svc.Register(ctx, " Test@Example.com ", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, uint(1), res.UserID)

		claims, err := issuer.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, uint(1), claims.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("Password is hashed", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, issuer)

		repo.On("Create", ctx, "a@b.co", mock.MatchedBy(func(h string) bool {
			return h != "password123" && CheckPasswordHash("password123", h)
		}), RoleCustomer).Return(&User{ID: 2, Email: "a@b.co"}, nil)

		_, err := svc.Register(ctx, "a@b.co", "password123")
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Invalid email", func(t *testing.T) {
		svc := NewService(new(MockRepository), issuer)
		_, err := svc.Register(ctx, "nope", "password123")
		assert.ErrorIs(t, err, ErrInvalidEmail)
	})

	t.Run("Weak password", func(t *testing.T) {
		svc := NewService(new(MockRepository), issuer)
		_, err := svc.Register(ctx, "a@b.co", "short")
		assert.ErrorIs(t, err, ErrPasswordTooWeak)
	})

	t.Run("Email exists", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, issuer)
		repo.On("Create", ctx, "a@b.co", mock.Anything, RoleCustomer).Return(nil, ErrEmailExists)

		_, err := svc.Register(ctx, "a@b.co", "password123")
		assert.ErrorIs(t, err, ErrEmailExists)
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	issuer := auth.NewIssuer("testsecret", time.Hour)
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", ctx, "a@b.co").Return(&User{ID: 5, Email: "a@b.co", Password: hash, Role: RoleAdmin}, nil)

		res, err := NewService(repo, issuer).Login(ctx, "A@b.co", "password123")
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, res.Role)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("Wrong password", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", ctx, "a@b.co").Return(&User{ID: 5, Password: hash}, nil)

		_, err := NewService(repo, issuer).Login(ctx, "a@b.co", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Unknown user", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", ctx, "x@b.co").Return(nil, nil)

		_, err := NewService(repo, issuer).Login(ctx, "x@b.co", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Repository error", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByEmail", ctx, "a@b.co").Return(nil, errors.New("db down"))

		_, err := NewService(repo, issuer).Login(ctx, "a@b.co", "password123")
		assert.EqualError(t, err, "db down")
	})
}
