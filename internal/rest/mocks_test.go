package rest

import (
	"context"

	"customkeeps/internal/cart"
	"customkeeps/internal/order"
	"customkeeps/internal/payment"
	"customkeeps/internal/product"
	"customkeeps/internal/user"

	"github.com/stretchr/testify/mock"
)

type MockUserService struct{ mock.Mock }

func (m *MockUserService) Register(ctx context.Context, email, password string) (*user.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.AuthResult), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*user.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.AuthResult), args.Error(1)
}

type MockProductService struct{ mock.Mock }

func (m *MockProductService) List(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, name string) (*product.Product, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, p product.Product) (product.Product, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(product.Product), args.Error(1)
}

type MockCartService struct{ mock.Mock }

func (m *MockCartService) GetCart(ctx context.Context, userID uint) ([]cart.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.CartItem), args.Error(1)
}

func (m *MockCartService) AddToCart(ctx context.Context, params cart.AddToCartParams) (*cart.CartItem, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.CartItem), args.Error(1)
}

func (m *MockCartService) RemoveFromCart(ctx context.Context, params cart.DeleteFromCartParams) error {
	return m.Called(ctx, params).Error(0)
}

type MockPaymentService struct{ mock.Mock }

func (m *MockPaymentService) CreateIntent(ctx context.Context, userID uint, req payment.IntentRequest) (*payment.IntentResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.IntentResponse), args.Error(1)
}

func (m *MockPaymentService) GetQuote(ctx context.Context, id string) (*payment.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Quote), args.Error(1)
}

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) Commit(ctx context.Context, userID uint, req order.CommitRequest) (*order.Order, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) CommitPaid(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderService) List(ctx context.Context, userID uint, isAdmin bool) ([]order.Order, error) {
	args := m.Called(ctx, userID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, userID uint, isAdmin bool, id string) (*order.Order, error) {
	args := m.Called(ctx, userID, isAdmin, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}
