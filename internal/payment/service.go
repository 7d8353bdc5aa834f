package payment

import (
	"context"
	"fmt"
	"strconv"

	"customkeeps/internal/cart"
	"customkeeps/internal/coupon"
	"customkeeps/internal/logger"
	"customkeeps/internal/pricing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceLookup returns the current catalog price per product name.
type PriceLookup interface {
	PricesByName(ctx context.Context, names []string) (map[string]decimal.Decimal, error)
}

// Service opens payment intents for server-verified amounts.
type Service interface {
	CreateIntent(ctx context.Context, userID uint, req IntentRequest) (*IntentResponse, error)
	GetQuote(ctx context.Context, paymentIntentID string) (*Quote, error)
}

type service struct {
	repo     Repository
	gateway  Gateway
	prices   PriceLookup
	coupons  coupon.Evaluator
	currency string
}

func NewService(repo Repository, gateway Gateway, prices PriceLookup, coupons coupon.Evaluator, currency string) Service {
	return &service{
		repo:     repo,
		gateway:  gateway,
		prices:   prices,
		coupons:  coupons,
		currency: currency,
	}
}

// Quote recomputes what the items cost right now, with the coupon applied.
func (s *service) quote(ctx context.Context, req IntentRequest) (pricing.Totals, string, error) {
	if len(req.Items) == 0 {
		return pricing.Totals{}, "", ErrEmptyCart
	}

	names := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		if err := it.Validate(); err != nil {
			return pricing.Totals{}, "", err
		}
		names = append(names, it.ProductName)
	}

	current, err := s.prices.PricesByName(ctx, names)
	if err != nil {
		return pricing.Totals{}, "", fmt.Errorf("load prices: %w", err)
	}
	for _, it := range req.Items {
		price, ok := current[it.ProductName]
		if !ok {
			return pricing.Totals{}, "", fmt.Errorf("%w: %s", ErrUnknownProduct, it.ProductName)
		}
		if !price.Equal(it.UnitPrice) {
			return pricing.Totals{}, "", fmt.Errorf("%w: %s", ErrPriceChanged, it.ProductName)
		}
	}

	subtotal := pricing.Subtotal(req.Items)
	discount := decimal.Zero
	code := coupon.Normalize(req.CouponCode)
	if code != "" {
		res, err := s.coupons.Evaluate(ctx, code, subtotal)
		if err != nil {
			return pricing.Totals{}, "", err
		}
		if !res.Accepted {
			return pricing.Totals{}, "", ErrInvalidCoupon
		}
		discount = res.DiscountAmount
	}

	return pricing.ComputeTotals(req.Items, discount), code, nil
}

func (s *service) CreateIntent(ctx context.Context, userID uint, req IntentRequest) (*IntentResponse, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateIntent"),
		zap.Uint("user_id", userID),
	)

	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	totals, code, err := s.quote(ctx, req)
	if err != nil {
		log.Warn("quote rejected", zap.Error(err))
		return nil, err
	}
	if !totals.FinalAmount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !totals.FinalAmount.Equal(pricing.Round(req.Amount)) {
		log.Warn("amount mismatch",
			zap.String("submitted", req.Amount.StringFixed(2)),
			zap.String("computed", totals.FinalAmount.StringFixed(2)),
		)
		return nil, ErrAmountMismatch
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx,
		pricing.MinorUnitAmount(totals.FinalAmount),
		s.currency,
		map[string]string{
			"user_id":     strconv.FormatUint(uint64(userID), 10),
			"coupon_code": code,
		},
	)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		PaymentIntentID: intent.ID,
		UserID:          userID,
		Items:           snapshot(req.Items),
		CouponCode:      code,
		Subtotal:        totals.Subtotal,
		DiscountAmount:  totals.DiscountAmount,
		FinalAmount:     totals.FinalAmount,
		Currency:        s.currency,
	}
	if err := s.repo.SaveQuote(ctx, q); err != nil {
		log.Error("failed to save quote", zap.String("payment_intent_id", intent.ID), zap.Error(err))
		return nil, err
	}

	log.Info("payment intent opened",
		zap.String("payment_intent_id", intent.ID),
		zap.String("amount", totals.FinalAmount.StringFixed(2)),
	)
	return &IntentResponse{ClientSecret: intent.ClientSecret, PaymentIntentID: intent.ID}, nil
}

func (s *service) GetQuote(ctx context.Context, paymentIntentID string) (*Quote, error) {
	return s.repo.GetQuote(ctx, paymentIntentID)
}

func snapshot(items []cart.LineItem) []cart.LineItem {
	out := make([]cart.LineItem, len(items))
	copy(out, items)
	return out
}
