// Package storefront is the HTTP client for the storefront REST API used by
// the checkout CLI.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"customkeeps/internal/cart"
	"customkeeps/internal/coupon"
	"customkeeps/internal/logger"
	"customkeeps/internal/order"
	"customkeeps/internal/payment"
	"customkeeps/internal/product"
	"customkeeps/internal/user"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var (
	ErrNotSignedIn  = errors.New("not signed in")
	ErrUnavailable  = errors.New("storefront unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// TokenSource yields the bearer token for authenticated calls.
type TokenSource interface {
	Token() string
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithBreaker opens the circuit after maxFailures consecutive server-side
// failures and half-opens after openTimeout.
func WithBreaker(maxFailures uint32, openTimeout time.Duration) Option {
	return func(c *Client) {
		c.maxFailures = maxFailures
		c.openTimeout = openTimeout
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]byte]

	maxFailures uint32
	openTimeout time.Duration

	mu     sync.RWMutex
	tokens TokenSource
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		maxFailures: 5,
		openTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "storefront",
		Timeout: c.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.maxFailures
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.Status < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.L().Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

// SetTokenSource attaches the signed-in session.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, email, password string) (*user.AuthResult, error) {
	var res user.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, credentials{email, password}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*user.AuthResult, error) {
	var res user.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, credentials{email, password}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Products(ctx context.Context) ([]product.Product, error) {
	var list []product.Product
	if err := c.do(ctx, http.MethodGet, "/products", false, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CartItemRequest is the body of POST /cart/items. The server sets the price.
type CartItemRequest struct {
	ProductName       string `json:"product_name"`
	Quantity          int    `json:"quantity"`
	Color             string `json:"color,omitempty"`
	CustomizationText string `json:"customization_text,omitempty"`
	DesignImageRef    string `json:"design_image_ref"`
}

func (c *Client) GetCart(ctx context.Context) ([]cart.LineItem, error) {
	var items []cart.LineItem
	if err := c.do(ctx, http.MethodGet, "/cart", true, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) AddCartItem(ctx context.Context, req CartItemRequest) (*cart.LineItem, error) {
	var item cart.LineItem
	if err := c.do(ctx, http.MethodPost, "/cart/items", true, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/cart/items/"+id, true, nil, nil)
}

type previewRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// PreviewCoupon implements coupon.Previewer.
func (c *Client) PreviewCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (coupon.Preview, error) {
	var p coupon.Preview
	err := c.do(ctx, http.MethodPost, "/coupon/preview", true, previewRequest{code, subtotal}, &p)
	return p, err
}

// CreatePaymentIntent implements payment.IntentOpener.
func (c *Client) CreatePaymentIntent(ctx context.Context, req payment.IntentRequest) (*payment.IntentResponse, error) {
	var res payment.IntentResponse
	if err := c.do(ctx, http.MethodPost, "/payment/intent", true, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CommitOrder(ctx context.Context, paymentIntentID, couponCode string) (*order.Order, error) {
	var o order.Order
	req := order.CommitRequest{PaymentIntentID: paymentIntentID, CouponCode: couponCode}
	if err := c.do(ctx, http.MethodPost, "/orders/commit", true, req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	var list []order.Order
	if err := c.do(ctx, http.MethodGet, "/orders", true, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) do(ctx context.Context, method, path string, authed bool, in, out any) error {
	var token string
	if authed {
		if token = c.token(); token == "" {
			return ErrNotSignedIn
		}
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, token, in)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, in any) ([]byte, error) {
	requestID := uuid.NewString()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "storefront"),
		zap.String("method", method+" "+path),
		zap.String("request_id", requestID),
	)

	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(logger.RequestIDHeader, requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	log.Debug("response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}
