package order

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUnauthorized = errors.New("unauthorized")

	// -- Validation & Input --
	ErrMissingPaymentIntent = errors.New("payment_intent_id is required")
	ErrCouponMismatch       = errors.New("coupon does not match the paid session")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidTransition    = errors.New("order status can only advance one step")

	// -- Payment --
	ErrPaymentNotSucceeded = errors.New("payment has not succeeded")
	ErrAmountMismatch      = errors.New("paid amount does not match quote")

	// -- Resource State --
	ErrOrderNotFound    = errors.New("order not found")
	ErrDuplicateOrder   = errors.New("order already exists for payment")
	ErrCommitInProgress = errors.New("order commit already in progress")
)

const pgUniqueViolation = "23505"
