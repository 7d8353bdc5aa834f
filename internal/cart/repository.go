package cart

import (
	"context"
	"database/sql"
	"time"

	"customkeeps/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetCartItems(ctx context.Context, userID uint) ([]CartItem, error)
	CreateCartItem(ctx context.Context, userID uint, item LineItem) (*CartItem, error)
	RemoveFromCart(ctx context.Context, params DeleteFromCartParams) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const cartColumns = `
		id,
		user_id,
		product_name,
		unit_price,
		quantity,
		base_color,
		COALESCE(customization_text, ''),
		design_image_ref,
		created_at,
		updated_at`

func scanCartItem(row interface{ Scan(...any) error }, item *CartItem) error {
	return row.Scan(
		&item.ID,
		&item.UserID,
		&item.ProductName,
		&item.UnitPrice,
		&item.Quantity,
		&item.Color,
		&item.CustomizationText,
		&item.DesignImageRef,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
}

func (r *repository) GetCartItems(ctx context.Context, userID uint) ([]CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetCartItems"),
		zap.Uint("user_id", userID),
	)

	start := time.Now()
	rows, err := r.db.QueryContext(ctx, `
	SELECT`+cartColumns+`
	FROM cart_items
	WHERE user_id = $1
	ORDER BY created_at ASC`, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}
	defer rows.Close()

	items := make([]CartItem, 0)
	for rows.Next() {
		var item CartItem
		if err := scanCartItem(rows, &item); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}

	log.Debug("query success",
		zap.Int("rows", len(items)),
		zap.Duration("duration", time.Since(start)),
	)
	return items, nil
}

func (r *repository) CreateCartItem(ctx context.Context, userID uint, item LineItem) (*CartItem, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateCartItem"),
		zap.Uint("user_id", userID),
	)

	log.Debug("start create cart item")

	var created CartItem
	row := r.db.QueryRowContext(ctx, `
	INSERT INTO cart_items (
		id,
		user_id,
		product_name,
		unit_price,
		quantity,
		base_color,
		customization_text,
		design_image_ref
	)
	VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
	RETURNING`+cartColumns,
		item.ID,
		userID,
		item.ProductName,
		item.UnitPrice,
		item.Quantity,
		item.Color,
		item.CustomizationText,
		item.DesignImageRef,
	)
	if err := scanCartItem(row, &created); err != nil {
		log.Error("failed to create cart item", zap.Error(err))
		return nil, err
	}

	log.Info("success create cart item", zap.String("cart_item_id", created.ID))
	return &created, nil
}

// RemoveFromCart reports whether a row was deleted.
func (r *repository) RemoveFromCart(ctx context.Context, params DeleteFromCartParams) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE user_id = $1 AND id = $2
	`, params.UserID, params.ItemID)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
