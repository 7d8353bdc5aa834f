package payment

import (
	"context"
	"time"

	"customkeeps/internal/cart"

	"github.com/shopspring/decimal"
)

type Status int

const (
	Idle Status = iota
	AwaitingFunds
	Confirming
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "Idle"
	case AwaitingFunds:
		return "AwaitingFunds"
	case Confirming:
		return "Confirming"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	}
	return "Unknown"
}

// Session is a snapshot of the payment authorization tied to one amount.
type Session struct {
	Generation      uint64
	Status          Status
	Amount          decimal.Decimal
	CouponCode      string
	ClientSecret    string
	PaymentIntentID string
	Message         string
	Declined        bool
}

// Ready reports whether a confirmation may start on this session.
func (s Session) Ready() bool {
	return s.ClientSecret != "" && (s.Status == AwaitingFunds || s.Status == Failed)
}

// IntentOpener is the POST /payment/intent call.
type IntentOpener interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*IntentResponse, error)
}

type OpenResult struct {
	Generation uint64
	Response   *IntentResponse
	Err        error
}

type ConfirmOutcome struct {
	Generation uint64
	Result     ConfirmResult
	Err        error
}

// SessionController drives Idle → AwaitingFunds → Confirming → Succeeded|Failed.
//
// It is not safe for concurrent use; its owner serializes calls. Network work
// is returned as effect funcs whose results are fed back through Opened and
// Confirmed. Results from a superseded generation are dropped.
type SessionController struct {
	opener    IntentOpener
	confirmer Confirmer
	hold      *HoldTimer
	s         Session
}

func NewSessionController(opener IntentOpener, confirmer Confirmer, holdDuration time.Duration) *SessionController {
	return &SessionController{
		opener:    opener,
		confirmer: confirmer,
		hold:      NewHoldTimer(holdDuration),
	}
}

func (c *SessionController) Session() Session { return c.s }

func (c *SessionController) HoldProgress() float64 { return c.hold.Progress() }

// Fresh reports whether the current session was opened for amount and code.
func (c *SessionController) Fresh(amount decimal.Decimal, code string) bool {
	return c.s.Status != Idle && c.s.Amount.Equal(amount) && c.s.CouponCode == code
}

// Invalidate drops the current session. It reports whether a running hold
// was cancelled before it completed.
func (c *SessionController) Invalidate() bool {
	cancelled := c.hold.Cancel()
	c.s = Session{Generation: c.s.Generation + 1, Status: Idle}
	return cancelled
}

// Open replaces the current session with a new one for amount and returns
// the intent request to run. Callers Invalidate first when a hold may be
// running.
func (c *SessionController) Open(amount decimal.Decimal, code string, items []cart.LineItem) func(context.Context) OpenResult {
	gen := c.s.Generation + 1
	c.s = Session{
		Generation: gen,
		Status:     AwaitingFunds,
		Amount:     amount,
		CouponCode: code,
	}

	req := IntentRequest{Amount: amount, CouponCode: code, Items: items}
	opener := c.opener
	return func(ctx context.Context) OpenResult {
		resp, err := opener.CreatePaymentIntent(ctx, req)
		return OpenResult{Generation: gen, Response: resp, Err: err}
	}
}

// Opened applies an intent result. It returns false for stale results.
func (c *SessionController) Opened(r OpenResult) bool {
	if r.Generation != c.s.Generation || c.s.Status != AwaitingFunds || c.s.ClientSecret != "" {
		return false
	}
	if r.Err != nil {
		c.s.Status = Failed
		c.s.Message = r.Err.Error()
		return true
	}
	c.s.ClientSecret = r.Response.ClientSecret
	c.s.PaymentIntentID = r.Response.PaymentIntentID
	c.s.Message = ""
	return true
}

func (c *SessionController) checkConfirmable() error {
	switch {
	case c.s.Status == Confirming:
		return ErrConfirmInFlight
	case c.s.Status == Succeeded:
		return ErrAlreadyPaid
	case !c.s.Ready():
		return ErrSessionNotReady
	}
	return nil
}

// StartHold begins the confirmation gesture. onComplete runs on the timer's
// goroutine once the hold has lasted the full duration.
func (c *SessionController) StartHold(onComplete func()) error {
	if err := c.checkConfirmable(); err != nil {
		return err
	}
	if !c.hold.Start(onComplete) {
		return ErrHoldActive
	}
	return nil
}

// ReleaseHold cancels the gesture. It reports whether the hold was still
// short of its duration.
func (c *SessionController) ReleaseHold() bool {
	return c.hold.Cancel()
}

// BeginConfirm moves to Confirming and returns the confirmation to run.
// amount and code are what the caller is about to charge; a session opened
// for anything else is stale.
func (c *SessionController) BeginConfirm(amount decimal.Decimal, code string) (func(context.Context) ConfirmOutcome, error) {
	if err := c.checkConfirmable(); err != nil {
		return nil, err
	}
	if !c.s.Amount.Equal(amount) || c.s.CouponCode != code {
		return nil, ErrSessionStale
	}

	c.s.Status = Confirming
	c.s.Message = ""
	c.s.Declined = false

	gen := c.s.Generation
	secret := c.s.ClientSecret
	confirmer := c.confirmer
	return func(ctx context.Context) ConfirmOutcome {
		res, err := confirmer.Confirm(ctx, secret)
		return ConfirmOutcome{Generation: gen, Result: res, Err: err}
	}, nil
}

// Confirmed applies a confirmation result. It returns false for stale results.
func (c *SessionController) Confirmed(o ConfirmOutcome) bool {
	if o.Generation != c.s.Generation || c.s.Status != Confirming {
		return false
	}
	switch {
	case o.Err != nil:
		c.s.Status = Failed
		c.s.Message = o.Err.Error()
	case !o.Result.Succeeded():
		c.s.Status = Failed
		c.s.Declined = true
		c.s.Message = o.Result.Message
		if c.s.Message == "" {
			c.s.Message = ErrDeclined.Error()
		}
	default:
		c.s.Status = Succeeded
		if o.Result.ID != "" {
			c.s.PaymentIntentID = o.Result.ID
		}
	}
	return true
}
