package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"customkeeps/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, userID uint, all bool) ([]Order, error)

	// CreateOrderTx inserts the order with its items and clears the user's
	// server cart in one transaction.
	CreateOrderTx(ctx context.Context, o *Order) error

	// UpdateStatus moves an order from one status to another and reports
	// whether the order was still in from.
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
		id,
		order_number,
		user_id,
		status,
		subtotal,
		discount_amount,
		total_amount,
		COALESCE(coupon_code, ''),
		payment_intent_id,
		currency,
		created_at,
		updated_at`

func scanOrder(row interface{ Scan(...any) error }, o *Order) error {
	return row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.Status,
		&o.Subtotal,
		&o.DiscountAmount,
		&o.TotalAmount,
		&o.CouponCode,
		&o.PaymentIntentID,
		&o.Currency,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func (r *repository) getOne(ctx context.Context, where string, arg any) (*Order, error) {
	var o Order
	err := scanOrder(r.db.QueryRowContext(ctx, `SELECT`+orderColumns+` FROM orders WHERE `+where, arg), &o)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := r.fetchItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

// GetByPaymentIntentID returns nil, nil when no order exists for the intent.
func (r *repository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Order, error) {
	return r.getOne(ctx, "payment_intent_id = $1", paymentIntentID)
}

// GetByID returns nil, nil when the order does not exist.
func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *repository) List(ctx context.Context, userID uint, all bool) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.Uint("user_id", userID),
		zap.Bool("all", all),
	)

	start := time.Now()
	query := `SELECT` + orderColumns + ` FROM orders`
	args := []any{}
	if !all {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.fetchItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	log.Debug("query success",
		zap.Int("rows", len(orders)),
		zap.Duration("duration", time.Since(start)),
	)
	return orders, nil
}

func (r *repository) fetchItems(ctx context.Context, orderIDs []string) (map[string][]Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id,
			order_id,
			product_name,
			unit_price,
			quantity,
			base_color,
			COALESCE(customization_text, ''),
			design_image_ref,
			subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id ASC
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]Item, len(orderIDs))
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID,
			&it.OrderID,
			&it.ProductName,
			&it.UnitPrice,
			&it.Quantity,
			&it.Color,
			&it.CustomizationText,
			&it.DesignImageRef,
			&it.Subtotal,
		); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Insert order
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, order_number, user_id, status,
			subtotal, discount_amount, total_amount,
			coupon_code, payment_intent_id, currency
		) VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8, ''),$9,$10)
		RETURNING created_at, updated_at
	`,
		o.ID,
		o.OrderNumber,
		o.UserID,
		o.Status,
		o.Subtotal,
		o.DiscountAmount,
		o.TotalAmount,
		o.CouponCode,
		o.PaymentIntentID,
		o.Currency,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrDuplicateOrder
		}
		return err
	}

	// 2. Insert order items
	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (
				order_id, product_name, unit_price, quantity,
				base_color, customization_text, design_image_ref, subtotal
			) VALUES ($1,$2,$3,$4,$5,NULLIF($6, ''),$7,$8)
			RETURNING id
		`,
			o.ID,
			item.ProductName,
			item.UnitPrice,
			item.Quantity,
			item.Color,
			item.CustomizationText,
			item.DesignImageRef,
			item.Subtotal,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}

	// 3. Clear the user's server cart
	_, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, o.UserID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
