package coupon

import "errors"

var (
	// -- Validation & Input --
	ErrNegativeSubtotal = errors.New("subtotal must not be negative")
	ErrInvalidPercent   = errors.New("discount percent must be between 0 and 100")

	// -- Transport --
	ErrPreviewUnavailable = errors.New("coupon preview unavailable")
)
