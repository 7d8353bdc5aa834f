package coupon

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRuleTable_Evaluate(t *testing.T) {
	ctx := context.Background()
	table := DefaultRuleTable()

	t.Run("SAVE10 on 1000", func(t *testing.T) {
		res, err := table.Evaluate(ctx, "SAVE10", dec("1000"))
		require.NoError(t, err)
		assert.True(t, res.Accepted)
		assert.True(t, res.DiscountAmount.Equal(dec("100")))
		assert.True(t, res.DiscountPercent.Equal(dec("10")))
		assert.True(t, dec("1000").Sub(res.DiscountAmount).Equal(dec("900")))
	})

	t.Run("Case and whitespace insensitive", func(t *testing.T) {
		res, err := table.Evaluate(ctx, "  save10 ", dec("250"))
		require.NoError(t, err)
		assert.True(t, res.Accepted)
		assert.Equal(t, "SAVE10", res.Code)
		assert.True(t, res.DiscountAmount.Equal(dec("25")))
	})

	t.Run("Unknown code", func(t *testing.T) {
		res, err := table.Evaluate(ctx, "XYZ", dec("1000"))
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Equal(t, MsgInvalid, res.Message)
		assert.True(t, res.DiscountAmount.IsZero())
	})

	t.Run("Empty code", func(t *testing.T) {
		res, err := table.Evaluate(ctx, "   ", dec("1000"))
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Equal(t, MsgEnterCode, res.Message)
	})

	t.Run("Re-derived from current subtotal", func(t *testing.T) {
		first, _ := table.Evaluate(ctx, "SAVE10", dec("1000"))
		second, _ := table.Evaluate(ctx, "SAVE10", dec("500"))
		assert.True(t, first.DiscountAmount.Equal(dec("100")))
		assert.True(t, second.DiscountAmount.Equal(dec("50")))
	})

	t.Run("Rounds half up", func(t *testing.T) {
		res, _ := table.Evaluate(ctx, "SAVE10", dec("0.25"))
		assert.Equal(t, "0.03", res.DiscountAmount.StringFixed(2))
	})

	t.Run("Negative subtotal", func(t *testing.T) {
		_, err := table.Evaluate(ctx, "SAVE10", dec("-1"))
		assert.ErrorIs(t, err, ErrNegativeSubtotal)
	})
}

func TestNewRuleTable(t *testing.T) {
	table, err := NewRuleTable(map[string]int64{"all": 100})
	require.NoError(t, err)

	res, _ := table.Evaluate(context.Background(), "ALL", dec("80"))
	assert.True(t, res.DiscountAmount.Equal(dec("80")))

	_, err = NewRuleTable(map[string]int64{"bad": 120})
	assert.ErrorIs(t, err, ErrInvalidPercent)
}

func TestApply_ClampsToSubtotal(t *testing.T) {
	res := Apply("BIG", dec("150"), dec("200"))
	assert.True(t, res.DiscountAmount.Equal(dec("200")))
}

type MockPreviewer struct {
	mock.Mock
}

func (m *MockPreviewer) PreviewCoupon(ctx context.Context, code string, subtotal decimal.Decimal) (Preview, error) {
	args := m.Called(ctx, code, subtotal)
	return args.Get(0).(Preview), args.Error(1)
}

func TestRemoteEvaluator_Evaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid uses server percent", func(t *testing.T) {
		p := new(MockPreviewer)
		p.On("PreviewCoupon", ctx, "SAVE10", dec("1000")).
			Return(Preview{Valid: true, DiscountPercent: dec("10"), DiscountAmount: dec("100")}, nil)

		res, err := NewRemoteEvaluator(p).Evaluate(ctx, "save10", dec("1000"))
		require.NoError(t, err)
		assert.True(t, res.Accepted)
		assert.True(t, res.DiscountAmount.Equal(dec("100")))
		p.AssertExpectations(t)
	})

	t.Run("Rejected", func(t *testing.T) {
		p := new(MockPreviewer)
		p.On("PreviewCoupon", ctx, "XYZ", dec("1000")).
			Return(Preview{Valid: false, Error: "invalid coupon"}, nil)

		res, err := NewRemoteEvaluator(p).Evaluate(ctx, "XYZ", dec("1000"))
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Equal(t, MsgInvalid, res.Message)
		assert.True(t, res.DiscountAmount.IsZero())
	})

	t.Run("Empty code skips the call", func(t *testing.T) {
		p := new(MockPreviewer)
		res, err := NewRemoteEvaluator(p).Evaluate(ctx, "", dec("1000"))
		require.NoError(t, err)
		assert.Equal(t, MsgEnterCode, res.Message)
		p.AssertNotCalled(t, "PreviewCoupon", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Transport failure is an error", func(t *testing.T) {
		p := new(MockPreviewer)
		p.On("PreviewCoupon", ctx, "SAVE10", dec("1000")).
			Return(Preview{}, errors.New("connection reset"))

		_, err := NewRemoteEvaluator(p).Evaluate(ctx, "SAVE10", dec("1000"))
		assert.ErrorIs(t, err, ErrPreviewUnavailable)
	})
}

func TestResult_Preview(t *testing.T) {
	ok := Apply("SAVE10", dec("10"), dec("1000")).Preview()
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Error)

	bad := Rejected("XYZ", MsgInvalid).Preview()
	assert.False(t, bad.Valid)
	assert.Equal(t, MsgInvalid, bad.Error)
}
