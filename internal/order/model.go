package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPreparing        Status = "Preparing"
	StatusReadyForDelivery Status = "ReadyForDelivery"
	StatusInTransit        Status = "InTransit"
	StatusDelivered        Status = "Delivered"
	StatusCompleted        Status = "Completed"
)

var lifecycle = []Status{
	StatusPreparing,
	StatusReadyForDelivery,
	StatusInTransit,
	StatusDelivered,
	StatusCompleted,
}

func (s Status) Valid() bool {
	for _, st := range lifecycle {
		if st == s {
			return true
		}
	}
	return false
}

// Next returns the status that follows s, if any.
func (s Status) Next() (Status, bool) {
	for i, st := range lifecycle[:len(lifecycle)-1] {
		if st == s {
			return lifecycle[i+1], true
		}
	}
	return "", false
}

// Order is an immutable snapshot of a paid cart.
type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	UserID          uint            `json:"-"`
	Status          Status          `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	PaymentIntentID string          `json:"payment_intent_id"`
	Currency        string          `json:"currency"`
	Items           []Item          `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type Item struct {
	ID                uint            `json:"id"`
	OrderID           string          `json:"-"`
	ProductName       string          `json:"product_name"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Quantity          int             `json:"quantity"`
	Color             string          `json:"color"`
	CustomizationText string          `json:"customization_text,omitempty"`
	DesignImageRef    string          `json:"design_image_ref"`
	Subtotal          decimal.Decimal `json:"subtotal"`
}

// CommitRequest is the body of POST /orders/commit.
type CommitRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
	CouponCode      string `json:"coupon_code"`
}

type StatusUpdate struct {
	Status Status `json:"status"`
}
