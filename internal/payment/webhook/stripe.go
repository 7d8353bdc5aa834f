package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"customkeeps/internal/logger"
	"customkeeps/internal/metrics"
	"customkeeps/internal/payment"
	"customkeeps/internal/utils"

	"go.uber.org/zap"
)

const (
	providerStripe   = "STRIPE"
	signatureHeader  = "Stripe-Signature"
	eventSucceeded   = "payment_intent.succeeded"
	defaultTolerance = 5 * time.Minute
	maxBodyBytes     = 64 << 10
)

var (
	ErrMissingSignature = errors.New("missing signature header")
	ErrStaleSignature   = errors.New("signature timestamp outside tolerance")
)

// Committer records the order for a paid intent. Implemented by order.Service.
type Committer interface {
	CommitPaid(ctx context.Context, paymentIntentID string) error
}

type event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID     string `json:"id"`
			Object string `json:"object"`
			Status string `json:"status"`
		} `json:"object"`
	} `json:"data"`
}

type Handler struct {
	committer Committer
	repo      payment.Repository
	secret    string
	tolerance time.Duration
	now       func() time.Time
}

func NewStripeHandler(committer Committer, repo payment.Repository, secret string) *Handler {
	return &Handler{
		committer: committer,
		repo:      repo,
		secret:    secret,
		tolerance: defaultTolerance,
		now:       time.Now,
	}
}

// ServeHTTP handles POST /webhook/stripe.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "webhook"),
		zap.String("method", "Stripe"),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		utils.WriteJSONError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.verify(r.Header.Get(signatureHeader), body); err != nil {
		log.Warn("webhook signature rejected", zap.Error(err))
		metrics.WebhookEvents.WithLabelValues("unknown", "invalid_signature").Inc()
		utils.WriteJSONError(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var ev event
	if err := json.Unmarshal(body, &ev); err != nil || ev.ID == "" {
		utils.WriteJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.Type),
		zap.String("payment_intent_id", ev.Data.Object.ID),
	)

	webhookID, dup, err := h.repo.SaveWebhook(ctx, payment.WebhookEvent{
		Provider:        providerStripe,
		EventID:         ev.ID,
		EventType:       ev.Type,
		PaymentIntentID: ev.Data.Object.ID,
		Payload:         body,
		SignatureValid:  true,
	})
	if err != nil {
		log.Error("failed to save webhook", zap.Error(err))
		utils.WriteJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if dup {
		log.Info("duplicate webhook ignored")
		metrics.WebhookEvents.WithLabelValues(ev.Type, "duplicate").Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	if ev.Type != eventSucceeded {
		_ = h.repo.MarkWebhookProcessed(ctx, webhookID)
		metrics.WebhookEvents.WithLabelValues(ev.Type, "ignored").Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.committer.CommitPaid(ctx, ev.Data.Object.ID); err != nil {
		log.Error("commit from webhook failed", zap.Error(err))
		_ = h.repo.MarkWebhookFailed(ctx, webhookID, err.Error())
		metrics.WebhookEvents.WithLabelValues(ev.Type, "failed").Inc()
		// non-2xx makes Stripe redeliver
		utils.WriteJSONError(w, "failed to record order", http.StatusInternalServerError)
		return
	}

	if err := h.repo.MarkWebhookProcessed(ctx, webhookID); err != nil {
		log.Warn("failed to mark webhook processed", zap.Error(err))
	}
	metrics.WebhookEvents.WithLabelValues(ev.Type, "processed").Inc()
	log.Info("webhook processed")
	w.WriteHeader(http.StatusOK)
}

// verify checks a header of the form "t=<unix>,v1=<hex>[,v1=...]" against
// HMAC-SHA256(secret, "<t>.<body>").
func (h *Handler) verify(header string, body []byte) error {
	if header == "" {
		return ErrMissingSignature
	}

	var (
		ts   int64
		sigs []string
	)
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return payment.ErrInvalidSignature
			}
			ts = n
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return payment.ErrInvalidSignature
	}

	age := h.now().Sub(time.Unix(ts, 0))
	if age > h.tolerance || age < -h.tolerance {
		return ErrStaleSignature
	}

	expected := Sign(h.secret, ts, body)
	for _, s := range sigs {
		if hmac.Equal([]byte(s), []byte(expected)) {
			return nil
		}
	}
	return payment.ErrInvalidSignature
}

// Sign returns the hex v1 signature for body at timestamp ts.
func Sign(secret string, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
