package checkout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"customkeeps/internal/cart"
	"customkeeps/internal/coupon"
	"customkeeps/internal/logger"
	"customkeeps/internal/order"
	"customkeeps/internal/payment"
	"customkeeps/internal/pricing"

	"go.uber.org/zap"
)

const DefaultCallTimeout = 15 * time.Second

// OrderClient is the order half of the storefront API.
type OrderClient interface {
	CommitOrder(ctx context.Context, paymentIntentID, couponCode string) (*order.Order, error)
	ListOrders(ctx context.Context) ([]order.Order, error)
}

type Option func(*Orchestrator)

// WithCallTimeout bounds every network effect.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}

// Orchestrator is the checkout state machine. Dispatch applies one event at a
// time under a single lock; network calls and the hold timer run on their own
// goroutines and report back through Dispatch.
type Orchestrator struct {
	mu      sync.Mutex
	deliver sync.Mutex
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	session  *Session
	cart     *cart.Store
	coupons  coupon.Evaluator
	payments *payment.SessionController
	orders   OrderClient

	callTimeout time.Duration
	log         *zap.Logger

	phase     Phase
	coupon    CouponState
	couponSeq uint64
	commitSeq uint64
	paidID    string
	paidCode  string
	history   []order.Order
	message   string
	lastErr   error
	outbox    []State

	nextSub int
	subs    map[int]func(State)
}

func New(
	session *Session,
	store *cart.Store,
	coupons coupon.Evaluator,
	payments *payment.SessionController,
	orders OrderClient,
	opts ...Option,
) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		ctx:         ctx,
		cancel:      cancel,
		session:     session,
		cart:        store,
		coupons:     coupons,
		payments:    payments,
		orders:      orders,
		callTimeout: DefaultCallTimeout,
		log:         logger.L().With(zap.String("layer", "checkout")),
		subs:        make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Dispatch applies ev and returns the resulting state. Subscribers are
// called on the dispatching goroutine after the state lock is released, in
// dispatch order; they must not call back into the Orchestrator.
func (o *Orchestrator) Dispatch(ev Event) State {
	o.mu.Lock()
	if o.closed && !isResult(ev) {
		o.lastErr = validation("dispatch", ErrClosed)
	} else {
		if !isResult(ev) {
			o.lastErr = nil
		}
		o.handle(ev)
	}
	snaps := append(o.outbox, o.snapshot())
	o.outbox = nil
	subs := make([]func(State), 0, len(o.subs))
	for _, fn := range o.subs {
		subs = append(subs, fn)
	}
	o.deliver.Lock()
	o.mu.Unlock()

	for _, s := range snaps {
		for _, fn := range subs {
			fn(s)
		}
	}
	o.deliver.Unlock()
	return snaps[len(snaps)-1]
}

// Subscribe registers fn for every state change.
func (o *Orchestrator) Subscribe(fn func(State)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot()
}

// Settle blocks until every in-flight effect, including a running hold,
// has reported back.
func (o *Orchestrator) Settle() {
	o.wg.Wait()
}

// Close cancels the hold and in-flight calls. Later events are rejected.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.cancel()
	o.invalidate()
	o.mu.Unlock()

	o.Settle()
}

func (o *Orchestrator) handle(ev Event) {
	switch e := ev.(type) {
	case AddItem:
		if o.rejectMutation("add item") {
			return
		}
		if _, err := o.cart.Add(e.Item); err != nil {
			o.lastErr = validation("add item", err)
			return
		}
		o.cartChanged()

	case RemoveItem:
		if o.rejectMutation("remove item") {
			return
		}
		o.cart.Remove(e.ID)
		o.cartChanged()

	case ReplaceCart:
		if o.rejectMutation("replace cart") {
			return
		}
		if _, err := o.cart.Replace(e.Items); err != nil {
			o.lastErr = validation("replace cart", err)
			return
		}
		o.cartChanged()

	case OpenCheckout:
		o.openCheckout()

	case LeaveCheckout:
		if o.phase != PhaseCheckout {
			o.lastErr = validation("leave checkout", ErrWrongPhase)
			return
		}
		if o.paymentLocked() {
			o.lastErr = validation("leave checkout", ErrPaymentInProgress)
			return
		}
		o.invalidate()
		o.phase = PhaseBrowsing

	case ApplyCoupon:
		o.applyCoupon(e.Code)

	case RemoveCoupon:
		if o.rejectMutation("remove coupon") {
			return
		}
		o.couponSeq++
		had := o.coupon.AppliedCode != ""
		o.coupon = CouponState{}
		if had && o.phase == PhaseCheckout {
			o.syncSession()
		}

	case HoldStart:
		o.startHold()

	case HoldRelease:
		if o.payments.ReleaseHold() {
			o.wg.Done()
		}

	case RetryCommit:
		if o.phase != PhaseError {
			o.lastErr = validation("retry commit", ErrWrongPhase)
			return
		}
		o.commit()

	case RefreshOrders:
		if !o.session.Valid() {
			o.lastErr = validation("list orders", ErrNotSignedIn)
			return
		}
		client := o.orders
		o.spawn(func(ctx context.Context) Event {
			list, err := client.ListOrders(ctx)
			return ordersLoaded{orders: list, err: err}
		})

	case Reset:
		if o.phase == PhasePaying || o.phase == PhaseCommitting || o.phase == PhaseError || o.paymentLocked() {
			o.lastErr = validation("reset", ErrPaymentInProgress)
			return
		}
		o.invalidate()
		o.cart.Clear()
		o.couponSeq++
		o.coupon = CouponState{}
		o.history = nil
		o.message = ""
		o.phase = PhaseBrowsing

	case couponEvaluated:
		o.couponEvaluated(e)

	case sessionOpened:
		if !o.payments.Opened(e.res) {
			return
		}
		if e.res.Err != nil {
			o.lastErr = classify("open payment session", e.res.Err)
		}

	case holdCompleted:
		o.holdCompleted(e)

	case paymentConfirmed:
		o.paymentConfirmed(e)

	case orderCommitted:
		o.orderCommitted(e)

	case ordersLoaded:
		if e.err != nil {
			o.lastErr = classify("list orders", e.err)
			return
		}
		o.history = e.orders
	}
}

// paymentLocked reports whether the money side has started moving.
func (o *Orchestrator) paymentLocked() bool {
	switch o.payments.Session().Status {
	case payment.Confirming, payment.Succeeded:
		return true
	}
	return false
}

func (o *Orchestrator) rejectMutation(op string) bool {
	switch {
	case o.phase == PhasePaying, o.phase == PhaseCommitting, o.phase == PhaseError, o.paymentLocked():
		o.lastErr = validation(op, ErrPaymentInProgress)
		return true
	}
	return false
}

func (o *Orchestrator) cartChanged() {
	items := o.cart.Items()
	if o.phase == PhaseDone {
		o.phase = PhaseBrowsing
		o.message = ""
	}
	if o.coupon.AppliedCode != "" {
		r := coupon.Apply(o.coupon.AppliedCode, o.coupon.DiscountPercent, pricing.Subtotal(items))
		o.coupon.DiscountAmount = r.DiscountAmount
	}
	if o.phase != PhaseCheckout {
		return
	}
	if len(items) == 0 {
		o.invalidate()
		o.phase = PhaseBrowsing
		return
	}
	o.syncSession()
}

func (o *Orchestrator) openCheckout() {
	if o.phase != PhaseBrowsing && o.phase != PhaseDone {
		o.lastErr = validation("open checkout", ErrWrongPhase)
		return
	}
	if !o.session.Valid() {
		o.lastErr = validation("open checkout", ErrNotSignedIn)
		return
	}
	if o.cart.Len() == 0 {
		o.lastErr = validation("open checkout", ErrEmptyCart)
		return
	}

	o.phase = PhaseCheckout
	o.message = ""

	t := o.totals()
	if o.payments.Session().Ready() && o.payments.Fresh(t.FinalAmount, o.coupon.AppliedCode) {
		return
	}
	o.openSession()
}

// syncSession reopens the payment session when amount or coupon moved.
func (o *Orchestrator) syncSession() {
	t := o.totals()
	if o.payments.Fresh(t.FinalAmount, o.coupon.AppliedCode) {
		return
	}
	o.openSession()
}

func (o *Orchestrator) openSession() {
	items := o.cart.Items()
	t := pricing.ComputeTotals(items, o.coupon.DiscountAmount)

	o.invalidate()
	if !t.FinalAmount.IsPositive() {
		o.lastErr = validation("open payment session", ErrNothingToPay)
		return
	}

	open := o.payments.Open(t.FinalAmount, o.coupon.AppliedCode, items)
	o.spawn(func(ctx context.Context) Event {
		return sessionOpened{res: open(ctx)}
	})
}

// invalidate drops the payment session, settling a hold it cancelled.
func (o *Orchestrator) invalidate() {
	if o.payments.Invalidate() {
		o.wg.Done()
	}
}

func (o *Orchestrator) applyCoupon(code string) {
	if o.rejectMutation("apply coupon") {
		return
	}

	o.couponSeq++
	seq := o.couponSeq
	had := o.coupon.AppliedCode != ""
	o.coupon = CouponState{Code: code, Pending: true}
	if had && o.phase == PhaseCheckout {
		// reopened once the code is evaluated
		o.invalidate()
	}

	subtotal := pricing.Subtotal(o.cart.Items())
	eval := o.coupons
	o.spawn(func(ctx context.Context) Event {
		res, err := eval.Evaluate(ctx, code, subtotal)
		return couponEvaluated{seq: seq, res: res, err: err}
	})
}

func (o *Orchestrator) couponEvaluated(e couponEvaluated) {
	if e.seq != o.couponSeq {
		return
	}
	o.coupon.Pending = false

	switch {
	case e.err != nil:
		o.coupon.Message = "coupon check unavailable"
		o.lastErr = classify("apply coupon", e.err)
	case !e.res.Accepted:
		o.coupon.Message = e.res.Message
	default:
		// Totals may have moved while the code was being checked.
		r := coupon.Apply(e.res.Code, e.res.DiscountPercent, pricing.Subtotal(o.cart.Items()))
		o.coupon.AppliedCode = r.Code
		o.coupon.DiscountPercent = r.DiscountPercent
		o.coupon.DiscountAmount = r.DiscountAmount
		o.coupon.Message = r.Message
	}

	if o.phase == PhaseCheckout {
		o.syncSession()
	}
}

func (o *Orchestrator) startHold() {
	if o.phase != PhaseCheckout {
		o.lastErr = validation("start hold", ErrWrongPhase)
		return
	}
	if o.coupon.Pending {
		o.lastErr = validation("start hold", ErrCouponPending)
		return
	}
	t := o.totals()
	if !o.payments.Fresh(t.FinalAmount, o.coupon.AppliedCode) {
		o.lastErr = classify("start hold", payment.ErrSessionStale)
		return
	}

	gen := o.payments.Session().Generation
	o.wg.Add(1)
	err := o.payments.StartHold(func() {
		o.Dispatch(holdCompleted{gen: gen})
		o.wg.Done()
	})
	if err == nil {
		return
	}

	o.wg.Done()
	if errors.Is(err, payment.ErrConfirmInFlight) || errors.Is(err, payment.ErrHoldActive) {
		return
	}
	o.lastErr = classify("start hold", err)
}

func (o *Orchestrator) holdCompleted(e holdCompleted) {
	if o.phase != PhaseCheckout || e.gen != o.payments.Session().Generation {
		return
	}

	t := o.totals()
	confirm, err := o.payments.BeginConfirm(t.FinalAmount, o.coupon.AppliedCode)
	if err != nil {
		o.lastErr = classify("confirm payment", err)
		return
	}
	o.spawn(func(ctx context.Context) Event {
		return paymentConfirmed{out: confirm(ctx)}
	})
}

func (o *Orchestrator) paymentConfirmed(e paymentConfirmed) {
	if !o.payments.Confirmed(e.out) {
		return
	}

	s := o.payments.Session()
	switch s.Status {
	case payment.Failed:
		if s.Declined {
			o.lastErr = &Error{Kind: KindPaymentDeclined, Op: "confirm payment", Err: payment.ErrDeclined, Message: s.Message}
			return
		}
		o.lastErr = classify("confirm payment", e.out.Err)

	case payment.Succeeded:
		o.phase = PhasePaying
		o.paidID = s.PaymentIntentID
		o.paidCode = s.CouponCode
		o.emit()
		o.commit()
	}
}

func (o *Orchestrator) commit() {
	o.phase = PhaseCommitting
	o.commitSeq++

	seq := o.commitSeq
	id, code := o.paidID, o.paidCode
	client := o.orders
	o.spawn(func(ctx context.Context) Event {
		ord, err := client.CommitOrder(ctx, id, code)
		return orderCommitted{seq: seq, order: ord, err: err}
	})
}

func (o *Orchestrator) orderCommitted(e orderCommitted) {
	if e.seq != o.commitSeq || o.phase != PhaseCommitting {
		return
	}

	if e.err == nil && e.order == nil {
		e.err = errors.New("empty commit response")
	}
	if e.err != nil {
		o.phase = PhaseError
		o.message = MsgCommitFailed
		o.lastErr = &Error{Kind: KindCommit, Op: "commit order", Err: e.err, Message: MsgCommitFailed}
		o.log.Error("order commit failed after payment",
			zap.String("method", "Commit"),
			zap.String("payment_intent_id", o.paidID),
			zap.Error(e.err),
		)
		return
	}

	o.cart.Clear()
	if !slices.ContainsFunc(o.history, func(x order.Order) bool { return x.ID == e.order.ID }) {
		o.history = append(o.history, *e.order)
	}
	o.couponSeq++
	o.coupon = CouponState{}
	o.invalidate()
	o.paidID, o.paidCode = "", ""
	o.phase = PhaseDone
	o.message = fmt.Sprintf("Order %s placed", e.order.OrderNumber)

	o.log.Info("order committed",
		zap.String("method", "Commit"),
		zap.String("order_id", e.order.ID),
		zap.String("payment_intent_id", e.order.PaymentIntentID),
	)
}

// spawn runs fn on its own goroutine with a bounded context and feeds its
// result back through Dispatch.
func (o *Orchestrator) spawn(fn func(context.Context) Event) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()

		ctx, cancel := context.WithTimeout(o.ctx, o.callTimeout)
		ev := fn(ctx)
		cancel()

		o.Dispatch(ev)
	}()
}

func (o *Orchestrator) totals() pricing.Totals {
	return pricing.ComputeTotals(o.cart.Items(), o.coupon.DiscountAmount)
}

// emit queues an intermediate snapshot for subscribers.
func (o *Orchestrator) emit() {
	o.outbox = append(o.outbox, o.snapshot())
}

func (o *Orchestrator) snapshot() State {
	items := o.cart.Items()
	return State{
		Phase:        o.phase,
		Items:        items,
		Totals:       pricing.ComputeTotals(items, o.coupon.DiscountAmount),
		Coupon:       o.coupon,
		Payment:      o.payments.Session(),
		HoldProgress: o.payments.HoldProgress(),
		Orders:       slices.Clone(o.history),
		Message:      o.message,
		LastError:    o.lastErr,
	}
}
