package product

import (
	"context"
	"strings"
)

type Service interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, name string) (*Product, error)
	Create(ctx context.Context, p Product) (Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]Product, error) {
	return s.repo.GetAll(ctx)
}

// Get returns ErrProductNotFound instead of a nil product.
func (s *service) Get(ctx context.Context, name string) (*Product, error) {
	p, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Product{}, ErrNameRequired
	}
	if p.Price.IsNegative() {
		return Product{}, ErrInvalidPrice
	}
	return s.repo.Create(ctx, p)
}
