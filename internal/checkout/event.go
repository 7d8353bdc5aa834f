package checkout

import (
	"customkeeps/internal/cart"
	"customkeeps/internal/coupon"
	"customkeeps/internal/order"
	"customkeeps/internal/payment"
)

// Event is anything Dispatch accepts.
type Event interface {
	event()
}

type (
	AddItem struct{ Item cart.LineItem }
	// RemoveItem is a no-op for an unknown id.
	RemoveItem  struct{ ID string }
	ReplaceCart struct{ Items []cart.LineItem }

	OpenCheckout  struct{}
	LeaveCheckout struct{}

	ApplyCoupon  struct{ Code string }
	RemoveCoupon struct{}

	// HoldStart and HoldRelease are the press and release of the pay button.
	HoldStart   struct{}
	HoldRelease struct{}

	// RetryCommit re-sends the order commit for the payment that already
	// succeeded. Only valid in PhaseError.
	RetryCommit struct{}

	RefreshOrders struct{}

	// Reset empties the cart and drops coupon and orders, e.g. at logout.
	Reset struct{}
)

func (AddItem) event()       {}
func (RemoveItem) event()    {}
func (ReplaceCart) event()   {}
func (OpenCheckout) event()  {}
func (LeaveCheckout) event() {}
func (ApplyCoupon) event()   {}
func (RemoveCoupon) event()  {}
func (HoldStart) event()     {}
func (HoldRelease) event()   {}
func (RetryCommit) event()   {}
func (RefreshOrders) event() {}
func (Reset) event()         {}

// Results of effects, fed back through Dispatch.
type (
	couponEvaluated struct {
		seq uint64
		res coupon.Result
		err error
	}
	sessionOpened    struct{ res payment.OpenResult }
	holdCompleted    struct{ gen uint64 }
	paymentConfirmed struct{ out payment.ConfirmOutcome }
	orderCommitted   struct {
		seq   uint64
		order *order.Order
		err   error
	}
	ordersLoaded struct {
		orders []order.Order
		err    error
	}
)

func (couponEvaluated) event()  {}
func (sessionOpened) event()    {}
func (holdCompleted) event()    {}
func (paymentConfirmed) event() {}
func (orderCommitted) event()   {}
func (ordersLoaded) event()     {}

func isResult(ev Event) bool {
	switch ev.(type) {
	case couponEvaluated, sessionOpened, holdCompleted, paymentConfirmed, orderCommitted, ordersLoaded:
		return true
	}
	return false
}
