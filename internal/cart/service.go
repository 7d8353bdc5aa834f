package cart

import (
	"context"
	"strings"

	"customkeeps/internal/logger"
	"customkeeps/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the server-side cart used for post-login sync.
type Service interface {
	GetCart(ctx context.Context, userID uint) ([]CartItem, error)
	AddToCart(ctx context.Context, params AddToCartParams) (*CartItem, error)
	RemoveFromCart(ctx context.Context, params DeleteFromCartParams) error
}

type service struct {
	repo        Repository
	productRepo product.Repository
}

func NewService(repo Repository, productRepo product.Repository) Service {
	return &service{repo: repo, productRepo: productRepo}
}

func (s *service) GetCart(ctx context.Context, userID uint) ([]CartItem, error) {
	if userID == 0 {
		return nil, ErrUserNotAuthenticated
	}
	return s.repo.GetCartItems(ctx, userID)
}

// AddToCart prices the line from the catalog; the client never sets the price.
func (s *service) AddToCart(ctx context.Context, params AddToCartParams) (*CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddToCart"),
		zap.Uint("user_id", params.UserID),
	)

	if params.UserID == 0 {
		return nil, ErrUserNotAuthenticated
	}

	p, err := s.productRepo.GetByName(ctx, strings.TrimSpace(params.ProductName))
	if err != nil {
		log.Error("failed to load product", zap.Error(err))
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}

	item := LineItem{
		ID:                uuid.NewString(),
		ProductName:       p.Name,
		UnitPrice:         p.Price,
		Quantity:          params.Quantity,
		Color:             params.Color,
		CustomizationText: strings.TrimSpace(params.CustomizationText),
		DesignImageRef:    params.DesignImageRef,
	}
	if item.Color == "" {
		item.Color = DefaultColor
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	return s.repo.CreateCartItem(ctx, params.UserID, item)
}

func (s *service) RemoveFromCart(ctx context.Context, params DeleteFromCartParams) error {
	if params.UserID == 0 {
		return ErrUserNotAuthenticated
	}
	if params.ItemID == "" {
		return ErrCartItemNotFound
	}

	ok, err := s.repo.RemoveFromCart(ctx, params)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCartItemNotFound
	}
	return nil
}
