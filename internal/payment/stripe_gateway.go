package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"customkeeps/internal/logger"

	"go.uber.org/zap"
)

const stripeBaseURL = "https://api.stripe.com"

// Gateway is the server-side view of the payment processor.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*Intent, error)
}

type stripeGateway struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

type stripeError struct {
	Error struct {
		Type        string `json:"type"`
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
		Message     string `json:"message"`
	} `json:"error"`
}

// ----------------- Constructor -----------------

func NewStripeGateway(secretKey string) Gateway {
	if secretKey == "" {
		logger.L().Warn("Stripe secret key is empty")
	}

	return &stripeGateway{
		secretKey: secretKey,
		baseURL:   stripeBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ----------------- CreatePaymentIntent -----------------

func (s *stripeGateway) CreatePaymentIntent(
	ctx context.Context,
	amount int64,
	currency string,
	metadata map[string]string,
) (*Intent, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "CreatePaymentIntent"),
		zap.Int64("amount", amount),
		zap.String("currency", currency),
	)

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("automatic_payment_methods[allow_redirects]", "never")
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	log.Info("Sending payment intent request to Stripe")

	var intent Intent
	if err := s.do(ctx, http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		log.Error("Stripe create payment intent failed", zap.Error(err))
		return nil, err
	}

	log.Info("Stripe payment intent created",
		zap.String("payment_intent_id", intent.ID),
		zap.String("status", string(intent.Status)),
	)
	return &intent, nil
}

// ----------------- RetrievePaymentIntent -----------------

func (s *stripeGateway) RetrievePaymentIntent(ctx context.Context, id string) (*Intent, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "gateway"),
		zap.String("method", "RetrievePaymentIntent"),
		zap.String("payment_intent_id", id),
	)

	var intent Intent
	if err := s.do(ctx, http.MethodGet, "/v1/payment_intents/"+url.PathEscape(id), nil, &intent); err != nil {
		log.Error("Stripe retrieve payment intent failed", zap.Error(err))
		return nil, err
	}
	return &intent, nil
}

func (s *stripeGateway) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.secretKey, "")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var se stripeError
		_ = json.Unmarshal(bodyBytes, &se)
		if se.Error.Message != "" {
			return fmt.Errorf("%w: %s (%d)", ErrGateway, se.Error.Message, resp.StatusCode)
		}
		return fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("decode stripe response: %w", err)
	}
	return nil
}
