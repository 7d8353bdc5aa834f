package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"customkeeps/internal/checkout"
	"customkeeps/internal/order"
	"customkeeps/internal/payment"
	"customkeeps/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, opts...)
	c.SetTokenSource(staticToken("tok"))
	return c
}

func TestClient_Login(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@example.com", body.Email)

		utils.WriteJSON(w, http.StatusOK, map[string]any{"token": "jwt", "email": body.Email, "user_id": 3})
	})

	res, err := c.Login(context.Background(), "a@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, "jwt", res.Token)
	assert.Equal(t, uint(3), res.UserID)
}

func TestClient_PreviewCoupon(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body previewRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "SAVE10", body.Code)
		assert.True(t, decimal.NewFromInt(1000).Equal(body.Subtotal))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"valid":true,"discount_percent":"10","discount_amount":"100"}`))
	})

	p, err := c.PreviewCoupon(context.Background(), "SAVE10", decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, p.Valid)
	assert.True(t, decimal.NewFromInt(10).Equal(p.DiscountPercent))
}

func TestClient_CreatePaymentIntent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/payment/intent", r.URL.Path)
			utils.WriteJSON(w, http.StatusOK, payment.IntentResponse{ClientSecret: "pi_1_secret_x", PaymentIntentID: "pi_1"})
		})

		res, err := c.CreatePaymentIntent(context.Background(), payment.IntentRequest{Amount: decimal.NewFromInt(1000)})
		require.NoError(t, err)
		assert.Equal(t, "pi_1", res.PaymentIntentID)
	})

	t.Run("Price changed", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			utils.WriteJSONErrorCode(w, "price changed", utils.CodePriceChanged, http.StatusConflict)
		})

		_, err := c.CreatePaymentIntent(context.Background(), payment.IntentRequest{Amount: decimal.NewFromInt(1000)})
		assert.ErrorIs(t, err, payment.ErrPriceChanged)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusConflict, apiErr.Status)
		assert.Equal(t, "price changed", apiErr.Message)
	})

	t.Run("Signed out", func(t *testing.T) {
		var hits int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
		})
		c.SetTokenSource(staticToken(""))

		_, err := c.CreatePaymentIntent(context.Background(), payment.IntentRequest{})
		assert.ErrorIs(t, err, ErrNotSignedIn)
		assert.Zero(t, atomic.LoadInt32(&hits))
	})
}

func TestClient_Orders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders/commit":
			var req order.CommitRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "pi_1", req.PaymentIntentID)
			utils.WriteJSON(w, http.StatusCreated, order.Order{ID: "o1", PaymentIntentID: "pi_1", TotalAmount: decimal.NewFromInt(1000)})
		case "/orders":
			utils.WriteJSON(w, http.StatusOK, []order.Order{{ID: "o1"}})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	o, err := c.CommitOrder(ctx, "pi_1", "")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)

	list, err := c.ListOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	err = c.RemoveCartItem(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Breaker(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		utils.WriteJSONError(w, "boom", http.StatusInternalServerError)
	}, WithBreaker(2, time.Minute))
	ctx := context.Background()

	_, err := c.ListOrders(ctx)
	assert.Error(t, err)
	_, err = c.ListOrders(ctx)
	assert.Error(t, err)

	_, err = c.ListOrders(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestClient_BreakerIgnoresClientErrors(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		utils.WriteJSONErrorCode(w, "mismatch", utils.CodeAmountMismatch, http.StatusConflict)
	}, WithBreaker(1, time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.CreatePaymentIntent(ctx, payment.IntentRequest{})
		assert.ErrorIs(t, err, payment.ErrAmountMismatch)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestClient_WithSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, []order.Order{})
	})

	sess := checkout.NewSession("tok", "a@example.com", time.Time{})
	c.SetTokenSource(sess)
	_, err := c.ListOrders(context.Background())
	require.NoError(t, err)

	sess.Close()
	_, err = c.ListOrders(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
}
