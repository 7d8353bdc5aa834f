package order

import (
	"context"
	"errors"
	"fmt"

	"customkeeps/internal/cart"
	"customkeeps/internal/coupon"
	"customkeeps/internal/logger"
	"customkeeps/internal/metrics"
	"customkeeps/internal/payment"
	"customkeeps/internal/pricing"
	"customkeeps/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const commitScope = "commit"

// QuoteReader loads what the server agreed to charge for a payment intent.
type QuoteReader interface {
	GetQuote(ctx context.Context, paymentIntentID string) (*payment.Quote, error)
}

type Service interface {
	// Commit turns a paid payment intent into an order. Repeating it with the
	// same payment intent returns the same order.
	Commit(ctx context.Context, userID uint, req CommitRequest) (*Order, error)
	// CommitPaid is Commit driven by the processor's webhook.
	CommitPaid(ctx context.Context, paymentIntentID string) error

	List(ctx context.Context, userID uint, isAdmin bool) ([]Order, error)
	Get(ctx context.Context, userID uint, isAdmin bool, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
}

type service struct {
	repo    Repository
	quotes  QuoteReader
	gateway payment.Gateway
	idem    IdempotencyStore
}

func NewService(repo Repository, quotes QuoteReader, gateway payment.Gateway, idem IdempotencyStore) Service {
	return &service{
		repo:    repo,
		quotes:  quotes,
		gateway: gateway,
		idem:    idem,
	}
}

func (s *service) Commit(ctx context.Context, userID uint, req CommitRequest) (*Order, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	if req.PaymentIntentID == "" {
		return nil, ErrMissingPaymentIntent
	}

	q, err := s.quotes.GetQuote(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if q.UserID != userID {
		return nil, ErrUnauthorized
	}
	if coupon.Normalize(req.CouponCode) != q.CouponCode {
		return nil, ErrCouponMismatch
	}

	return s.commit(ctx, q)
}

func (s *service) CommitPaid(ctx context.Context, paymentIntentID string) error {
	q, err := s.quotes.GetQuote(ctx, paymentIntentID)
	if err != nil {
		return err
	}
	// ErrCommitInProgress is returned as is so the processor redelivers
	// and a later attempt finds the order or takes over the lock.
	_, err = s.commit(ctx, q)
	return err
}

func (s *service) commit(ctx context.Context, q *payment.Quote) (o *Order, err error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "commit"),
		zap.String("payment_intent_id", q.PaymentIntentID),
		zap.Uint("user_id", q.UserID),
	)

	timer := metrics.StartTimer()
	defer func() {
		timer.ObserveMs(metrics.CommitDuration)
		if err != nil {
			metrics.OrderCommits.WithLabelValues("failed").Inc()
		}
	}()

	// 1. Already committed
	existing, err := s.repo.GetByPaymentIntentID(ctx, q.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		metrics.OrderCommits.WithLabelValues("replayed").Inc()
		log.Info("order already committed", zap.String("order_id", existing.ID))
		return existing, nil
	}

	// 2. One commit per payment intent at a time
	locked, lockErr := s.idem.TryLock(ctx, commitScope, q.PaymentIntentID)
	if lockErr != nil {
		// The unique payment_intent_id constraint still prevents duplicates.
		log.Warn("idempotency lock unavailable", zap.Error(lockErr))
	} else if !locked {
		return s.recall(ctx, q.PaymentIntentID)
	} else {
		defer func() {
			if err == nil {
				return
			}
			// the caller may have gone away; the lock must not outlive the attempt
			if relErr := s.idem.Release(context.WithoutCancel(ctx), commitScope, q.PaymentIntentID); relErr != nil {
				log.Warn("failed to release commit lock", zap.Error(relErr))
			}
		}()
	}

	// 3. Money must have moved, for the quoted amount
	intent, err := s.gateway.RetrievePaymentIntent(ctx, q.PaymentIntentID)
	if err != nil {
		log.Error("failed to retrieve payment intent", zap.Error(err))
		return nil, err
	}
	if intent.Status != payment.IntentSucceeded {
		return nil, fmt.Errorf("%w: status %s", ErrPaymentNotSucceeded, intent.Status)
	}
	if intent.Amount != pricing.MinorUnitAmount(q.FinalAmount) {
		log.Error("paid amount differs from quote",
			zap.Int64("paid", intent.Amount),
			zap.String("quoted", q.FinalAmount.StringFixed(2)),
		)
		return nil, ErrAmountMismatch
	}

	// 4. Persist
	o = fromQuote(q)
	if err := s.repo.CreateOrderTx(ctx, o); err != nil {
		if errors.Is(err, ErrDuplicateOrder) {
			metrics.OrderCommits.WithLabelValues("replayed").Inc()
			return s.repo.GetByPaymentIntentID(ctx, q.PaymentIntentID)
		}
		log.Error("failed to create order", zap.Error(err))
		return nil, err
	}

	if err := s.idem.Remember(ctx, commitScope, q.PaymentIntentID, o.ID); err != nil {
		log.Warn("failed to remember commit", zap.Error(err))
	}

	metrics.OrderCommits.WithLabelValues("created").Inc()
	log.Info("order committed",
		zap.String("order_id", o.ID),
		zap.String("total", o.TotalAmount.StringFixed(2)),
	)
	return o, nil
}

func (s *service) recall(ctx context.Context, paymentIntentID string) (*Order, error) {
	id, ok, err := s.idem.Recall(ctx, commitScope, paymentIntentID)
	if err != nil || !ok {
		return nil, ErrCommitInProgress
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrCommitInProgress
	}
	return o, nil
}

func fromQuote(q *payment.Quote) *Order {
	items := make([]Item, 0, len(q.Items))
	for _, li := range q.Items {
		items = append(items, Item{
			ProductName:       li.ProductName,
			UnitPrice:         li.UnitPrice,
			Quantity:          li.Quantity,
			Color:             li.Color,
			CustomizationText: li.CustomizationText,
			DesignImageRef:    li.DesignImageRef,
			Subtotal:          pricing.Subtotal([]cart.LineItem{li}),
		})
	}

	return &Order{
		ID:              uuid.NewString(),
		OrderNumber:     utils.GenerateOrderNumber(),
		UserID:          q.UserID,
		Status:          StatusPreparing,
		Subtotal:        q.Subtotal,
		DiscountAmount:  q.DiscountAmount,
		TotalAmount:     q.FinalAmount,
		CouponCode:      q.CouponCode,
		PaymentIntentID: q.PaymentIntentID,
		Currency:        q.Currency,
		Items:           items,
	}
}

func (s *service) List(ctx context.Context, userID uint, isAdmin bool) ([]Order, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	return s.repo.List(ctx, userID, isAdmin)
}

func (s *service) Get(ctx context.Context, userID uint, isAdmin bool, id string) (*Order, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || (!isAdmin && o.UserID != userID) {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}

	next, ok := o.Status.Next()
	if !ok || next != status {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateStatus(ctx, id, o.Status, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrInvalidTransition
	}

	logger.FromCtx(ctx).Info("order status updated",
		zap.String("order_id", id),
		zap.String("from", string(o.Status)),
		zap.String("to", string(status)),
	)
	o.Status = status
	return o, nil
}
