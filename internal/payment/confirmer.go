package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"customkeeps/internal/logger"

	"go.uber.org/zap"
)

// Confirmer is the external primitive that authorizes a payment intent
// using its client secret.
type Confirmer interface {
	Confirm(ctx context.Context, clientSecret string) (ConfirmResult, error)
}

// StripeConfirmer confirms intents with the publishable key, the way a
// browser client would.
type StripeConfirmer struct {
	baseURL        string
	publishableKey string
	paymentMethod  string
	httpClient     *http.Client
}

func NewStripeConfirmer(baseURL, publishableKey, paymentMethod string) *StripeConfirmer {
	if baseURL == "" {
		baseURL = stripeBaseURL
	}
	if paymentMethod == "" {
		paymentMethod = "pm_card_visa"
	}
	return &StripeConfirmer{
		baseURL:        strings.TrimRight(baseURL, "/"),
		publishableKey: publishableKey,
		paymentMethod:  paymentMethod,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
	}
}

// IntentIDFromSecret extracts "pi_123" from "pi_123_secret_abc".
func IntentIDFromSecret(secret string) (string, error) {
	i := strings.Index(secret, "_secret_")
	if i <= 0 || !strings.HasPrefix(secret, "pi_") {
		return "", ErrMalformedSecret
	}
	return secret[:i], nil
}

// Confirm returns a non-succeeded result, not an error, when the card is
// declined. Errors are reserved for transport and processor faults.
func (c *StripeConfirmer) Confirm(ctx context.Context, clientSecret string) (ConfirmResult, error) {
	id, err := IntentIDFromSecret(clientSecret)
	if err != nil {
		return ConfirmResult{}, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "confirmer"),
		zap.String("payment_intent_id", id),
	)

	form := url.Values{}
	form.Set("client_secret", clientSecret)
	form.Set("payment_method", c.paymentMethod)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payment_intents/"+url.PathEscape(id)+"/confirm",
		strings.NewReader(form.Encode()))
	if err != nil {
		return ConfirmResult{}, err
	}
	req.SetBasicAuth(c.publishableKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("confirm request failed", zap.Error(err))
		return ConfirmResult{}, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("failed to read stripe response: %w", err)
	}

	if resp.StatusCode == http.StatusPaymentRequired {
		var se stripeError
		_ = json.Unmarshal(bodyBytes, &se)
		msg := se.Error.Message
		if msg == "" {
			msg = ErrDeclined.Error()
		}
		log.Info("payment declined", zap.String("decline_code", se.Error.DeclineCode))
		return ConfirmResult{ID: id, Status: IntentRequiresPaymentMethod, Message: msg}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var se stripeError
		_ = json.Unmarshal(bodyBytes, &se)
		log.Error("Stripe returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("error", se.Error.Message),
		)
		return ConfirmResult{}, fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
	}

	var intent Intent
	if err := json.Unmarshal(bodyBytes, &intent); err != nil {
		return ConfirmResult{}, fmt.Errorf("decode stripe response: %w", err)
	}

	log.Info("payment confirmed", zap.String("status", string(intent.Status)))
	return ConfirmResult{ID: intent.ID, Status: intent.Status}, nil
}
