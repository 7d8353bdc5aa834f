package rest

import (
	"errors"
	"net/http"

	"customkeeps/internal/cart"
	"customkeeps/internal/coupon"
	"customkeeps/internal/logger"
	"customkeeps/internal/order"
	"customkeeps/internal/payment"
	"customkeeps/internal/product"
	"customkeeps/internal/user"
	"customkeeps/internal/utils"

	"go.uber.org/zap"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

var errorTable = []errorMapping{
	// -- Authentication/Authorization --
	{cart.ErrUserNotAuthenticated, http.StatusUnauthorized, utils.CodeUnauthorized, ""},
	{user.ErrInvalidCredentials, http.StatusUnauthorized, utils.CodeInvalidCredentials, ""},
	{order.ErrUnauthorized, http.StatusForbidden, utils.CodeForbidden, ""},

	// -- Validation & Input --
	{user.ErrInvalidEmail, http.StatusBadRequest, utils.CodeInvalidRequest, ""},
	{user.ErrPasswordTooWeak, http.StatusBadRequest, utils.CodeInvalidRequest, ""},
	{cart.ErrInvalidQuantity, http.StatusBadRequest, utils.CodeInvalidRequest, ""},
	{cart.ErrInvalidPrice, http.StatusBadRequest, utils.CodeInvalidRequest, ""},
	{cart.ErrProductRequired, http.StatusBadRequest, utils.CodeInvalidRequest, ""},
	{cart.ErrDesignRequired, http.StatusBadRequest, utils.CodeInvalidRequest, ""},
	{cart.ErrDuplicateItemID, http.StatusBadRequest, utils.CodeInvalidRequest, ""},
	{product.ErrNameRequired, http.StatusBadRequest, utils.CodeInvalidRequest, ""},
	{product.ErrInvalidPrice, http.StatusBadRequest, utils.CodeInvalidRequest, ""},
	{coupon.ErrNegativeSubtotal, http.StatusBadRequest, utils.CodeInvalidRequest, ""},
	{payment.ErrInvalidAmount, http.StatusBadRequest, utils.CodeInvalidAmount, "Invalid payment amount."},
	{payment.ErrEmptyCart, http.StatusBadRequest, utils.CodeEmptyCart, ""},
	{payment.ErrInvalidCoupon, http.StatusBadRequest, utils.CodeInvalidCoupon, ""},
	{payment.ErrUnknownProduct, http.StatusBadRequest, utils.CodeUnknownProduct, ""},
	{order.ErrMissingPaymentIntent, http.StatusBadRequest, utils.CodeInvalidRequest, ""},
	{order.ErrInvalidStatus, http.StatusBadRequest, utils.CodeInvalidRequest, ""},

	// -- Resource State --
	{payment.ErrPriceChanged, http.StatusConflict, utils.CodePriceChanged, ""},
	{payment.ErrAmountMismatch, http.StatusConflict, utils.CodeAmountMismatch, ""},
	{order.ErrAmountMismatch, http.StatusConflict, utils.CodeAmountMismatch, ""},
	{order.ErrCouponMismatch, http.StatusConflict, utils.CodeCouponMismatch, ""},
	{order.ErrCommitInProgress, http.StatusConflict, utils.CodeCommitInProgress, ""},
	{order.ErrInvalidTransition, http.StatusConflict, utils.CodeInvalidTransition, ""},
	{order.ErrPaymentNotSucceeded, http.StatusPaymentRequired, utils.CodePaymentNotSucceeded, ""},
	{user.ErrEmailExists, http.StatusConflict, utils.CodeEmailExists, ""},
	{cart.ErrCartItemNotFound, http.StatusNotFound, utils.CodeNotFound, ""},
	{cart.ErrProductNotFound, http.StatusNotFound, utils.CodeNotFound, ""},
	{product.ErrProductNotFound, http.StatusNotFound, utils.CodeNotFound, ""},
	{order.ErrOrderNotFound, http.StatusNotFound, utils.CodeNotFound, ""},
	{payment.ErrQuoteNotFound, http.StatusNotFound, utils.CodeNotFound, ""},

	// -- External Systems --
	{payment.ErrGateway, http.StatusBadGateway, utils.CodeGateway, "payment provider unavailable"},
}

// writeError maps a service error onto a status and code. Unknown errors
// are logged and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, method string, err error) {
	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "handler"),
		zap.String("method", method),
	)

	for _, m := range errorTable {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = err.Error()
		}
		if m.status >= http.StatusInternalServerError {
			log.Error("request failed", zap.Error(err))
		}
		utils.WriteJSONErrorCode(w, msg, m.code, m.status)
		return
	}

	log.Error("unexpected error", zap.Error(err))
	utils.WriteJSONErrorCode(w, "internal server error", utils.CodeInternal, http.StatusInternalServerError)
}

func badRequest(w http.ResponseWriter, err error) {
	utils.WriteJSONErrorCode(w, err.Error(), utils.CodeInvalidRequest, http.StatusBadRequest)
}
