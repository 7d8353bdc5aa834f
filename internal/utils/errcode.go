package utils

// Machine readable error codes shared by the REST handlers and the
// storefront client.
const (
	CodeUnauthorized        = "unauthorized"
	CodeForbidden           = "forbidden"
	CodeInvalidRequest      = "invalid_request"
	CodeNotFound            = "not_found"
	CodeInternal            = "internal"
	CodeRateLimited         = "rate_limited"
	CodeInvalidAmount       = "invalid_amount"
	CodeEmptyCart           = "empty_cart"
	CodeInvalidCoupon       = "invalid_coupon"
	CodeUnknownProduct      = "unknown_product"
	CodePriceChanged        = "price_changed"
	CodeAmountMismatch      = "amount_mismatch"
	CodeGateway             = "payment_gateway"
	CodePaymentNotSucceeded = "payment_not_succeeded"
	CodeCommitInProgress    = "commit_in_progress"
	CodeCouponMismatch      = "coupon_mismatch"
	CodeInvalidTransition   = "invalid_transition"
	CodeEmailExists         = "email_exists"
	CodeInvalidCredentials  = "invalid_credentials"
)
