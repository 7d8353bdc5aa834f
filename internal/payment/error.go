package payment

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidAmount  = errors.New("Invalid payment amount.")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidCoupon  = errors.New("invalid coupon")
	ErrPriceChanged   = errors.New("product price changed")
	ErrUnknownProduct = errors.New("product no longer available")
	ErrAmountMismatch = errors.New("amount does not match cart total")

	// -- Resource State --
	ErrQuoteNotFound = errors.New("checkout quote not found")

	// -- Processor --
	ErrGateway          = errors.New("payment processor error")
	ErrMalformedSecret  = errors.New("malformed client secret")
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// -- Session --
	ErrSessionStale    = errors.New("payment session is stale")
	ErrSessionNotReady = errors.New("payment session not ready")
	ErrConfirmInFlight = errors.New("confirmation already in progress")
	ErrAlreadyPaid     = errors.New("payment already succeeded")
	ErrDeclined        = errors.New("payment declined")
	ErrHoldActive      = errors.New("hold already in progress")
)
