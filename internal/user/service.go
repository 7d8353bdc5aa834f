package user

import (
	"context"
	"net/mail"
	"strings"

	"customkeeps/internal/auth"
	"customkeeps/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type service struct {
	repo   Repository
	issuer *auth.Issuer
}

func NewService(repo Repository, issuer *auth.Issuer) Service {
	return &service{repo: repo, issuer: issuer}
}

func (s *service) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooWeak
	}

	hashed, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u, err := s.repo.Create(ctx, email, hashed, RoleCustomer)
	if err != nil {
		return nil, err
	}

	log.Info("user registered", zap.Uint("user_id", u.ID))
	return s.issue(u)
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		log.Error("failed to load user", zap.Error(err))
		return nil, err
	}
	if u == nil || !CheckPasswordHash(password, u.Password) {
		log.Info("login rejected")
		return nil, ErrInvalidCredentials
	}

	return s.issue(u)
}

func (s *service) issue(u *User) (*AuthResult, error) {
	token, exp, err := s.issuer.Generate(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token:     token,
		ExpiresAt: exp,
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
	}, nil
}
