package coupon

import (
	"context"
	"fmt"

	"customkeeps/internal/pricing"
	"customkeeps/internal/utils"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Evaluator turns a code and the current subtotal into a discount.
// Implementations never mutate the cart and never cache amounts.
type Evaluator interface {
	Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) (Result, error)
}

// Normalize trims and upper-cases a user-entered code.
func Normalize(code string) string {
	return utils.NormalizeCode(code)
}

// Apply derives the discount for percent off subtotal, rounded to the minor
// unit and never larger than subtotal.
func Apply(code string, percent, subtotal decimal.Decimal) Result {
	amount := pricing.Round(subtotal.Mul(percent).Div(hundred))
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return Result{
		Code:            code,
		Accepted:        true,
		DiscountAmount:  amount,
		DiscountPercent: percent,
		Message:         fmt.Sprintf("%s applied: %s%% off", code, percent.String()),
	}
}

// RuleTable is the local, deterministic evaluator used by offline deployments.
type RuleTable struct {
	percents map[string]decimal.Decimal
}

// NewRuleTable maps codes to whole percentages.
func NewRuleTable(rules map[string]int64) (*RuleTable, error) {
	t := &RuleTable{percents: make(map[string]decimal.Decimal, len(rules))}
	for code, pct := range rules {
		if pct < 0 || pct > 100 {
			return nil, fmt.Errorf("%s: %w", code, ErrInvalidPercent)
		}
		t.percents[Normalize(code)] = decimal.NewFromInt(pct)
	}
	return t, nil
}

// DefaultRuleTable knows SAVE10 only.
func DefaultRuleTable() *RuleTable {
	t, _ := NewRuleTable(map[string]int64{"SAVE10": 10})
	return t
}

func (t *RuleTable) Evaluate(_ context.Context, code string, subtotal decimal.Decimal) (Result, error) {
	if subtotal.IsNegative() {
		return Result{}, ErrNegativeSubtotal
	}
	code = Normalize(code)
	if code == "" {
		return Rejected(code, MsgEnterCode), nil
	}
	pct, ok := t.percents[code]
	if !ok {
		return Rejected(code, MsgInvalid), nil
	}
	return Apply(code, pct, subtotal), nil
}

// Previewer is the POST /coupon/preview call.
type Previewer interface {
	PreviewCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (Preview, error)
}

// RemoteEvaluator asks the storefront service to validate the code.
type RemoteEvaluator struct {
	client Previewer
}

func NewRemoteEvaluator(client Previewer) *RemoteEvaluator {
	return &RemoteEvaluator{client: client}
}

func (e *RemoteEvaluator) Evaluate(ctx context.Context, code string, subtotal decimal.Decimal) (Result, error) {
	if subtotal.IsNegative() {
		return Result{}, ErrNegativeSubtotal
	}
	code = Normalize(code)
	if code == "" {
		return Rejected(code, MsgEnterCode), nil
	}

	p, err := e.client.PreviewCoupon(ctx, code, subtotal)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrPreviewUnavailable, err)
	}
	if !p.Valid {
		msg := p.Error
		if msg == "" {
			msg = MsgInvalid
		}
		return Rejected(code, msg), nil
	}

	// The server's percentage is authoritative; the amount is re-derived
	// locally so it always matches the subtotal being shown.
	return Apply(code, p.DiscountPercent, subtotal), nil
}
