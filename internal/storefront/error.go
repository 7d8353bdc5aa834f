package storefront

import (
	"encoding/json"
	"fmt"
	"net/http"

	"customkeeps/internal/order"
	"customkeeps/internal/payment"
	"customkeeps/internal/user"
	"customkeeps/internal/utils"
)

// APIError is a non-2xx answer from the storefront. It unwraps to the
// domain sentinel its code stands for, so callers can errors.Is against
// payment.ErrPriceChanged and friends.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Code: payload.Code, Message: msg}
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

var codeErrors = map[string]error{
	utils.CodeInvalidAmount:       payment.ErrInvalidAmount,
	utils.CodeEmptyCart:           payment.ErrEmptyCart,
	utils.CodeInvalidCoupon:       payment.ErrInvalidCoupon,
	utils.CodeUnknownProduct:      payment.ErrUnknownProduct,
	utils.CodePriceChanged:        payment.ErrPriceChanged,
	utils.CodeAmountMismatch:      payment.ErrAmountMismatch,
	utils.CodeGateway:             payment.ErrGateway,
	utils.CodePaymentNotSucceeded: order.ErrPaymentNotSucceeded,
	utils.CodeCommitInProgress:    order.ErrCommitInProgress,
	utils.CodeCouponMismatch:      order.ErrCouponMismatch,
	utils.CodeEmailExists:         user.ErrEmailExists,
	utils.CodeInvalidCredentials:  user.ErrInvalidCredentials,
}

func (e *APIError) Unwrap() error {
	if err, ok := codeErrors[e.Code]; ok {
		return err
	}
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}
