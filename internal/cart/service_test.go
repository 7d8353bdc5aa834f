package cart

import (
	"context"
	"errors"
	"testing"

	"customkeeps/internal/product"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetCartItems(ctx context.Context, userID uint) ([]CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CartItem), args.Error(1)
}

func (m *MockRepository) CreateCartItem(ctx context.Context, userID uint, item LineItem) (*CartItem, error) {
	args := m.Called(ctx, userID, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CartItem), args.Error(1)
}

func (m *MockRepository) RemoveFromCart(ctx context.Context, params DeleteFromCartParams) (bool, error) {
	args := m.Called(ctx, params)
	return args.Bool(0), args.Error(1)
}

// MockProductRepository is a mock for the product repository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductRepository) GetByName(ctx context.Context, name string) (*product.Product, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepository) PricesByName(ctx context.Context, names []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, p product.Product) (product.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(product.Product), args.Error(1)
}

func TestService_GetCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Unauthenticated", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockProductRepository))
		_, err := svc.GetCart(ctx, 0)
		assert.ErrorIs(t, err, ErrUserNotAuthenticated)
	})

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCartItems", ctx, uint(7)).Return([]CartItem{{LineItem: LineItem{ID: "a"}}}, nil)

		svc := NewService(repo, new(MockProductRepository))
		items, err := svc.GetCart(ctx, 7)
		require.NoError(t, err)
		assert.Len(t, items, 1)
		repo.AssertExpectations(t)
	})
}

func TestService_AddToCart(t *testing.T) {
	ctx := context.Background()
	keychain := &product.Product{ID: 1, Name: "Keychain", Price: decimal.NewFromInt(500)}

	t.Run("Prices from catalog", func(t *testing.T) {
		repo := new(MockRepository)
		prodRepo := new(MockProductRepository)
		prodRepo.On("GetByName", ctx, "Keychain").Return(keychain, nil)
		repo.On("CreateCartItem", ctx, uint(1), mock.MatchedBy(func(l LineItem) bool {
			return l.UnitPrice.Equal(decimal.NewFromInt(500)) &&
				l.Color == DefaultColor &&
				l.Quantity == 2 &&
				l.ID != ""
		})).Return(&CartItem{LineItem: LineItem{ID: "x"}, UserID: 1}, nil)

		svc := NewService(repo, prodRepo)
		res, err := svc.AddToCart(ctx, AddToCartParams{
			UserID:         1,
			ProductName:    " Keychain ",
			Quantity:       2,
			DesignImageRef: "designs/a.png",
		})
		require.NoError(t, err)
		assert.Equal(t, "x", res.ID)
		repo.AssertExpectations(t)
		prodRepo.AssertExpectations(t)
	})

	t.Run("Unknown product", func(t *testing.T) {
		prodRepo := new(MockProductRepository)
		prodRepo.On("GetByName", ctx, "Ghost").Return(nil, nil)

		svc := NewService(new(MockRepository), prodRepo)
		_, err := svc.AddToCart(ctx, AddToCartParams{UserID: 1, ProductName: "Ghost", Quantity: 1, DesignImageRef: "d"})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Invalid quantity", func(t *testing.T) {
		prodRepo := new(MockProductRepository)
		prodRepo.On("GetByName", ctx, "Keychain").Return(keychain, nil)

		svc := NewService(new(MockRepository), prodRepo)
		_, err := svc.AddToCart(ctx, AddToCartParams{UserID: 1, ProductName: "Keychain", Quantity: 0, DesignImageRef: "d"})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("Catalog error", func(t *testing.T) {
		prodRepo := new(MockProductRepository)
		prodRepo.On("GetByName", ctx, "Keychain").Return(nil, errors.New("db down"))

		svc := NewService(new(MockRepository), prodRepo)
		_, err := svc.AddToCart(ctx, AddToCartParams{UserID: 1, ProductName: "Keychain", Quantity: 1, DesignImageRef: "d"})
		assert.EqualError(t, err, "db down")
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		svc := NewService(new(MockRepository), new(MockProductRepository))
		_, err := svc.AddToCart(ctx, AddToCartParams{ProductName: "Keychain"})
		assert.ErrorIs(t, err, ErrUserNotAuthenticated)
	})
}

func TestService_RemoveFromCart(t *testing.T) {
	ctx := context.Background()
	params := DeleteFromCartParams{UserID: 1, ItemID: "item-1"}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("RemoveFromCart", ctx, params).Return(true, nil)

		err := NewService(repo, new(MockProductRepository)).RemoveFromCart(ctx, params)
		assert.NoError(t, err)
	})

	t.Run("Not found", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("RemoveFromCart", ctx, params).Return(false, nil)

		err := NewService(repo, new(MockProductRepository)).RemoveFromCart(ctx, params)
		assert.ErrorIs(t, err, ErrCartItemNotFound)
	})

	t.Run("Missing id", func(t *testing.T) {
		err := NewService(new(MockRepository), new(MockProductRepository)).
			RemoveFromCart(ctx, DeleteFromCartParams{UserID: 1})
		assert.ErrorIs(t, err, ErrCartItemNotFound)
	})
}
