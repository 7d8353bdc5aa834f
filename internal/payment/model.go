package payment

import (
	"encoding/json"
	"time"

	"customkeeps/internal/cart"

	"github.com/shopspring/decimal"
)

type IntentStatus string

const (
	IntentRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentRequiresAction        IntentStatus = "requires_action"
	IntentProcessing            IntentStatus = "processing"
	IntentSucceeded             IntentStatus = "succeeded"
	IntentCanceled              IntentStatus = "canceled"
)

// Intent is a payment intent as the processor reports it.
// Amount is in minor units.
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Status       IntentStatus      `json:"status"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// IntentRequest is the body of POST /payment/intent. Items lets the
// server re-price the cart the client is about to pay for.
type IntentRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	CouponCode string          `json:"coupon_code"`
	Items      []cart.LineItem `json:"items"`
}

type IntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// Quote is what the server agreed to charge for a payment intent.
type Quote struct {
	PaymentIntentID string
	UserID          uint
	Items           []cart.LineItem
	CouponCode      string
	Subtotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	FinalAmount     decimal.Decimal
	Currency        string
	CreatedAt       time.Time
}

// ConfirmResult is the external primitive's answer to a confirmation.
type ConfirmResult struct {
	ID      string       `json:"id"`
	Status  IntentStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

func (r ConfirmResult) Succeeded() bool { return r.Status == IntentSucceeded }

// WebhookEvent is a processor notification as stored for dedupe and audit.
type WebhookEvent struct {
	Provider        string
	EventID         string
	EventType       string
	PaymentIntentID string
	Payload         json.RawMessage
	SignatureValid  bool
}
