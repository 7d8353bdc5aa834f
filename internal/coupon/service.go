package coupon

import (
	"context"
	"time"

	"customkeeps/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service is the server-side evaluator backed by the coupons table.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) (Result, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Evaluate"),
	)

	if subtotal.IsNegative() {
		return Result{}, ErrNegativeSubtotal
	}
	code = Normalize(code)
	if code == "" {
		return Rejected(code, MsgEnterCode), nil
	}

	c, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return Result{}, err
	}
	if c == nil || !c.UsableAt(s.now()) {
		log.Debug("coupon rejected", zap.String("code", code))
		return Rejected(code, MsgInvalid), nil
	}

	res := Apply(code, c.DiscountPercent, subtotal)
	log.Debug("coupon accepted",
		zap.String("code", code),
		zap.String("discount", res.DiscountAmount.StringFixed(2)),
	)
	return res, nil
}
