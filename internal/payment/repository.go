package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type Repository interface {
	SaveQuote(ctx context.Context, q *Quote) error
	GetQuote(ctx context.Context, paymentIntentID string) (*Quote, error)

	SaveWebhook(ctx context.Context, ev WebhookEvent) (webhookID int64, isDuplicate bool, err error)
	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SaveQuote(ctx context.Context, q *Quote) error {
	items, err := json.Marshal(q.Items)
	if err != nil {
		return fmt.Errorf("encode quote items: %w", err)
	}

	return r.db.QueryRowContext(ctx, `
		INSERT INTO checkout_quotes (
			payment_intent_id,
			user_id,
			items,
			coupon_code,
			subtotal,
			discount_amount,
			final_amount,
			currency
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`,
		q.PaymentIntentID,
		q.UserID,
		items,
		q.CouponCode,
		q.Subtotal,
		q.DiscountAmount,
		q.FinalAmount,
		q.Currency,
	).Scan(&q.CreatedAt)
}

// GetQuote returns ErrQuoteNotFound for an unknown payment intent.
func (r *repository) GetQuote(ctx context.Context, paymentIntentID string) (*Quote, error) {
	var (
		q     Quote
		items []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT payment_intent_id, user_id, items, coupon_code, subtotal,
		       discount_amount, final_amount, currency, created_at
		FROM checkout_quotes
		WHERE payment_intent_id = $1
	`, paymentIntentID).Scan(
		&q.PaymentIntentID, &q.UserID, &items, &q.CouponCode, &q.Subtotal,
		&q.DiscountAmount, &q.FinalAmount, &q.Currency, &q.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &q.Items); err != nil {
		return nil, fmt.Errorf("decode quote items: %w", err)
	}
	return &q, nil
}

func (r *repository) SaveWebhook(ctx context.Context, ev WebhookEvent) (int64, bool, error) {
	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_id,
		event_type,
		payment_intent_id,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_id)
	DO UPDATE SET process_error = NULL
	WHERE payment_webhooks.processed_at IS NULL
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(
		ctx,
		q,
		ev.Provider,
		ev.EventID,
		ev.EventType,
		ev.PaymentIntentID,
		ev.SignatureValid,
		[]byte(ev.Payload),
	).Scan(&id)

	if err != nil {
		// Already processed → idempotent success
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	const q = `
	UPDATE payment_webhooks
	SET processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}
