package checkout

import (
	"context"
	"errors"

	"customkeeps/internal/cart"
	"customkeeps/internal/payment"
)

// MsgCommitFailed is shown when money moved but no order was recorded.
const MsgCommitFailed = "payment succeeded but order recording failed; retry or contact support"

type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindSessionStale
	KindNetwork
	KindPaymentDeclined
	KindCommit
)

var (
	ErrValidation      = errors.New("validation error")
	ErrSessionStale    = errors.New("payment session is stale")
	ErrNetwork         = errors.New("network error")
	ErrPaymentDeclined = errors.New("payment declined")
	ErrCommit          = errors.New("order commit failed")
)

var (
	// -- Authentication --
	ErrNotSignedIn = errors.New("sign in to check out")

	// -- Validation & Input --
	ErrEmptyCart     = errors.New("cart is empty")
	ErrNothingToPay  = errors.New("nothing to pay")
	ErrCouponPending = errors.New("coupon is still being checked")

	// -- State --
	ErrPaymentInProgress = errors.New("payment in progress")
	ErrWrongPhase        = errors.New("not allowed at this step")
	ErrClosed            = errors.New("checkout closed")
)

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindSessionStale:
		return ErrSessionStale
	case KindNetwork:
		return ErrNetwork
	case KindPaymentDeclined:
		return ErrPaymentDeclined
	case KindCommit:
		return ErrCommit
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return "unknown error"
}

// Error is every failure the orchestrator reports. Match the kind with
// errors.Is(err, ErrNetwork) and the cause with errors.Is on the wrapped error.
type Error struct {
	Kind    Kind
	Op      string
	Err     error
	Message string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func validation(op string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

// classify maps a collaborator error onto the taxonomy. Anything unknown is
// treated as a transport failure.
func classify(op string, err error) *Error {
	switch {
	case errors.Is(err, payment.ErrSessionStale),
		errors.Is(err, payment.ErrPriceChanged),
		errors.Is(err, payment.ErrAmountMismatch):
		return &Error{Kind: KindSessionStale, Op: op, Err: err}

	case errors.Is(err, payment.ErrDeclined):
		return &Error{Kind: KindPaymentDeclined, Op: op, Err: err}

	case errors.Is(err, payment.ErrSessionNotReady),
		errors.Is(err, payment.ErrAlreadyPaid),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrEmptyCart),
		errors.Is(err, payment.ErrInvalidCoupon),
		errors.Is(err, payment.ErrUnknownProduct),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidPrice),
		errors.Is(err, cart.ErrProductRequired),
		errors.Is(err, cart.ErrDesignRequired),
		errors.Is(err, cart.ErrDuplicateItemID):
		return &Error{Kind: KindValidation, Op: op, Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindNetwork, Op: op, Err: err, Message: "request timed out"}
	}
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}
