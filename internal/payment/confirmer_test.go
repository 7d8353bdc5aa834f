package payment

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntentIDFromSecret(t *testing.T) {
	id, err := IntentIDFromSecret("pi_3Abc_secret_xyz")
	require.NoError(t, err)
	assert.Equal(t, "pi_3Abc", id)

	for _, bad := range []string{"", "secret", "pi_123", "seti_1_secret_2", "_secret_x"} {
		_, err := IntentIDFromSecret(bad)
		assert.ErrorIs(t, err, ErrMalformedSecret, bad)
	}
}

func TestStripeConfirmer_Confirm(t *testing.T) {
	c := NewStripeConfirmer("", "pk_test_abc", "")

	t.Run("Succeeded", func(t *testing.T) {
		c.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, "https://api.stripe.com/v1/payment_intents/pi_1/confirm", req.URL.String())
			user, _, _ := req.BasicAuth()
			assert.Equal(t, "pk_test_abc", user)

			require.NoError(t, req.ParseForm())
			assert.Equal(t, "pi_1_secret_s", req.PostForm.Get("client_secret"))
			assert.Equal(t, "pm_card_visa", req.PostForm.Get("payment_method"))
			return jsonResponse(http.StatusOK, `{"id": "pi_1", "status": "succeeded"}`)
		})

		res, err := c.Confirm(context.Background(), "pi_1_secret_s")
		require.NoError(t, err)
		assert.True(t, res.Succeeded())
		assert.Equal(t, "pi_1", res.ID)
	})

	t.Run("Declined is a result", func(t *testing.T) {
		c.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusPaymentRequired, `{"error": {"type": "card_error", "decline_code": "insufficient_funds", "message": "Your card has insufficient funds."}}`)
		})

		res, err := c.Confirm(context.Background(), "pi_1_secret_s")
		require.NoError(t, err)
		assert.False(t, res.Succeeded())
		assert.Equal(t, "Your card has insufficient funds.", res.Message)
	})

	t.Run("Requires action is not success", func(t *testing.T) {
		c.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{"id": "pi_1", "status": "requires_action"}`)
		})

		res, err := c.Confirm(context.Background(), "pi_1_secret_s")
		require.NoError(t, err)
		assert.False(t, res.Succeeded())
	})

	t.Run("Server error", func(t *testing.T) {
		c.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusInternalServerError, `{}`)
		})

		_, err := c.Confirm(context.Background(), "pi_1_secret_s")
		assert.ErrorIs(t, err, ErrGateway)
	})

	t.Run("Network error", func(t *testing.T) {
		c.httpClient.Transport = MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("dial tcp: timeout")
		})

		_, err := c.Confirm(context.Background(), "pi_1_secret_s")
		assert.Error(t, err)
	})

	t.Run("Malformed secret", func(t *testing.T) {
		_, err := c.Confirm(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrMalformedSecret)
	})
}
