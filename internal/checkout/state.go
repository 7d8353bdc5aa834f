package checkout

import (
	"customkeeps/internal/cart"
	"customkeeps/internal/order"
	"customkeeps/internal/payment"
	"customkeeps/internal/pricing"

	"github.com/shopspring/decimal"
)

type Phase int

const (
	PhaseBrowsing Phase = iota
	PhaseCheckout
	PhasePaying
	PhaseCommitting
	PhaseDone
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseBrowsing:
		return "Browsing"
	case PhaseCheckout:
		return "Checkout"
	case PhasePaying:
		return "Paying"
	case PhaseCommitting:
		return "Committing"
	case PhaseDone:
		return "Done"
	case PhaseError:
		return "Error"
	}
	return "Unknown"
}

// CouponState tracks the code the user typed and the one that is applied.
// DiscountAmount is zero whenever AppliedCode is empty.
type CouponState struct {
	Code            string
	AppliedCode     string
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Message         string
	Pending         bool
}

// State is an immutable snapshot handed to Dispatch callers and subscribers.
type State struct {
	Phase        Phase
	Items        []cart.LineItem
	Totals       pricing.Totals
	Coupon       CouponState
	Payment      payment.Session
	HoldProgress float64
	Orders       []order.Order
	Message      string
	LastError    error
}
