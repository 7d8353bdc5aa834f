package payment

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestStripeGateway_CreatePaymentIntent(t *testing.T) {
	apiKey := "sk_test_123"
	gw := NewStripeGateway(apiKey).(*stripeGateway)

	t.Run("Success", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "https://api.stripe.com/v1/payment_intents", req.URL.String())

			user, _, ok := req.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, apiKey, user)

			require.NoError(t, req.ParseForm())
			assert.Equal(t, "100000", req.PostForm.Get("amount"))
			assert.Equal(t, "php", req.PostForm.Get("currency"))
			assert.Equal(t, "SAVE10", req.PostForm.Get("metadata[coupon_code]"))

			return jsonResponse(http.StatusOK, `{
				"id": "pi_123",
				"client_secret": "pi_123_secret_abc",
				"amount": 100000,
				"currency": "php",
				"status": "requires_payment_method"
			}`)
		})

		intent, err := gw.CreatePaymentIntent(context.Background(), 100000, "PHP", map[string]string{"coupon_code": "SAVE10"})
		require.NoError(t, err)
		assert.Equal(t, "pi_123", intent.ID)
		assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
		assert.Equal(t, IntentRequiresPaymentMethod, intent.Status)
	})

	t.Run("APIError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusBadRequest, `{"error": {"type": "invalid_request_error", "message": "Amount must be at least 50"}}`)
		})

		_, err := gw.CreatePaymentIntent(context.Background(), 1, "php", nil)
		assert.ErrorIs(t, err, ErrGateway)
		assert.Contains(t, err.Error(), "Amount must be at least 50")
	})

	t.Run("NetworkError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})

		_, err := gw.CreatePaymentIntent(context.Background(), 100, "php", nil)
		assert.Error(t, err)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{invalid-json`)
		})

		_, err := gw.CreatePaymentIntent(context.Background(), 100, "php", nil)
		assert.Error(t, err)
	})
}

func TestStripeGateway_RetrievePaymentIntent(t *testing.T) {
	gw := NewStripeGateway("sk_test_123").(*stripeGateway)

	t.Run("Success", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "https://api.stripe.com/v1/payment_intents/pi_123", req.URL.String())
			return jsonResponse(http.StatusOK, `{"id": "pi_123", "amount": 90000, "status": "succeeded"}`)
		})

		intent, err := gw.RetrievePaymentIntent(context.Background(), "pi_123")
		require.NoError(t, err)
		assert.Equal(t, IntentSucceeded, intent.Status)
		assert.Equal(t, int64(90000), intent.Amount)
	})

	t.Run("NotFound", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusNotFound, `{"error": {"message": "No such payment_intent"}}`)
		})

		_, err := gw.RetrievePaymentIntent(context.Background(), "pi_missing")
		assert.ErrorIs(t, err, ErrGateway)
	})
}
