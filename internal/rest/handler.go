package rest

import (
	"context"
	"net/http"

	"customkeeps/internal/cart"
	"customkeeps/internal/coupon"
	"customkeeps/internal/metrics"
	"customkeeps/internal/order"
	"customkeeps/internal/payment"
	"customkeeps/internal/product"
	"customkeeps/internal/user"
	"customkeeps/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	Users    user.Service
	Products product.Service
	Cart     cart.Service
	Coupons  coupon.Evaluator
	Payments payment.Service
	Orders   order.Service
	Webhook  http.Handler
	Health   map[string]HealthCheck
}

// ----------------- Auth -----------------

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := utils.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	res, err := h.Users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, "Register", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := utils.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	res, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, "Login", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}

// ----------------- Products -----------------

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	list, err := h.Products.List(r.Context())
	if err != nil {
		writeError(w, r, "ListProducts", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

type createProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	p, err := h.Products.Create(r.Context(), product.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, r, "CreateProduct", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, p)
}

// ----------------- Cart -----------------

type addCartItemRequest struct {
	ProductName       string `json:"product_name"`
	Quantity          int    `json:"quantity"`
	Color             string `json:"color"`
	CustomizationText string `json:"customization_text"`
	DesignImageRef    string `json:"design_image_ref"`
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	items, err := h.Cart.GetCart(r.Context(), userID)
	if err != nil {
		writeError(w, r, "GetCart", err)
		return
	}

	lines := make([]cart.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, it.LineItem)
	}
	utils.WriteJSON(w, http.StatusOK, lines)
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	userID, _ := utils.GetUserIDFromContext(r.Context())

	item, err := h.Cart.AddToCart(r.Context(), cart.AddToCartParams{
		UserID:            userID,
		ProductName:       req.ProductName,
		Quantity:          req.Quantity,
		Color:             req.Color,
		CustomizationText: req.CustomizationText,
		DesignImageRef:    req.DesignImageRef,
	})
	if err != nil {
		writeError(w, r, "AddToCart", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, item.LineItem)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	err := h.Cart.RemoveFromCart(r.Context(), cart.DeleteFromCartParams{
		UserID: userID,
		ItemID: chi.URLParam(r, "id"),
	})
	if err != nil {
		writeError(w, r, "RemoveFromCart", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ----------------- Coupon -----------------

type previewRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func (h *Handler) previewCoupon(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	res, err := h.Coupons.Evaluate(r.Context(), req.Code, req.Subtotal)
	if err != nil {
		writeError(w, r, "PreviewCoupon", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res.Preview())
}

// ----------------- Payment -----------------

func (h *Handler) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req payment.IntentRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	userID, _ := utils.GetUserIDFromContext(r.Context())

	res, err := h.Payments.CreateIntent(r.Context(), userID, req)
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("rejected").Inc()
		writeError(w, r, "CreatePaymentIntent", err)
		return
	}
	metrics.PaymentIntents.WithLabelValues("created").Inc()
	utils.WriteJSON(w, http.StatusOK, res)
}

// ----------------- Orders -----------------

func (h *Handler) commitOrder(w http.ResponseWriter, r *http.Request) {
	var req order.CommitRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	userID, _ := utils.GetUserIDFromContext(r.Context())

	o, err := h.Orders.Commit(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, "CommitOrder", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	list, err := h.Orders.List(r.Context(), userID, utils.IsAdmin(r.Context()))
	if err != nil {
		writeError(w, r, "ListOrders", err)
		return
	}
	if list == nil {
		list = []order.Order{}
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	o, err := h.Orders.Get(r.Context(), userID, utils.IsAdmin(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "GetOrder", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req order.StatusUpdate
	if err := utils.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	o, err := h.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, "UpdateOrderStatus", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

// ----------------- Health -----------------

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(h.Health))
	for name, check := range h.Health {
		if err := check(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	utils.WriteJSON(w, status, map[string]any{"ok": status == http.StatusOK, "checks": checks})
}
