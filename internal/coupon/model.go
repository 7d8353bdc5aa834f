package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MsgEnterCode = "enter a code"
	MsgInvalid   = "invalid coupon"
)

// Coupon is a row of the coupons table.
type Coupon struct {
	Code            string
	DiscountPercent decimal.Decimal
	ValidFrom       *time.Time
	ValidTo         *time.Time
	Active          bool
}

// UsableAt reports whether the coupon may be redeemed at t.
func (c Coupon) UsableAt(t time.Time) bool {
	if !c.Active {
		return false
	}
	if c.ValidFrom != nil && t.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidTo != nil && t.After(*c.ValidTo) {
		return false
	}
	return true
}

// Result is the outcome of evaluating a code against a subtotal.
// DiscountAmount is zero whenever Accepted is false.
type Result struct {
	Code            string          `json:"code,omitempty"`
	Accepted        bool            `json:"accepted"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Message         string          `json:"message"`
}

// Preview is the wire shape of POST /coupon/preview.
type Preview struct {
	Valid           bool            `json:"valid"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Error           string          `json:"error,omitempty"`
}

func Rejected(code, msg string) Result {
	return Result{
		Code:            code,
		DiscountAmount:  decimal.Zero,
		DiscountPercent: decimal.Zero,
		Message:         msg,
	}
}

func (r Result) Preview() Preview {
	if !r.Accepted {
		return Preview{
			DiscountPercent: decimal.Zero,
			DiscountAmount:  decimal.Zero,
			Error:           r.Message,
		}
	}
	return Preview{
		Valid:           true,
		DiscountPercent: r.DiscountPercent,
		DiscountAmount:  r.DiscountAmount,
	}
}
