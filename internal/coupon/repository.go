package coupon

import (
	"context"
	"database/sql"
	"errors"

	"customkeeps/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// FindByCode returns nil, nil when no coupon has that code.
func (r *repository) FindByCode(ctx context.Context, code string) (*Coupon, error) {
	var c Coupon
	err := r.db.QueryRowContext(ctx, `
		SELECT code, discount_percent, valid_from, valid_to, active
		FROM coupons
		WHERE UPPER(code) = $1
	`, code).Scan(&c.Code, &c.DiscountPercent, &c.ValidFrom, &c.ValidTo, &c.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("coupon lookup failed",
			zap.String("layer", "repository"),
			zap.String("method", "FindByCode"),
			zap.String("code", code),
			zap.Error(err),
		)
		return nil, err
	}
	return &c, nil
}
