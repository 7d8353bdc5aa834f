package payment

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHoldTimer_FiresOnce(t *testing.T) {
	h := NewHoldTimer(20 * time.Millisecond)
	var fired atomic.Int32

	assert.True(t, h.Start(func() { fired.Add(1) }))
	assert.False(t, h.Start(func() { fired.Add(1) }), "second start while running")

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, float64(1), h.Progress())
	assert.False(t, h.Running())

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestHoldTimer_ReleaseEarly(t *testing.T) {
	h := NewHoldTimer(200 * time.Millisecond)
	var fired atomic.Int32

	h.Start(func() { fired.Add(1) })
	time.Sleep(20 * time.Millisecond)
	assert.Greater(t, h.Progress(), 0.0)
	assert.Less(t, h.Progress(), 1.0)

	assert.True(t, h.Cancel())
	assert.Equal(t, 0.0, h.Progress())

	time.Sleep(250 * time.Millisecond)
	assert.Zero(t, fired.Load())
	assert.False(t, h.Cancel(), "nothing left to cancel")
}

func TestHoldTimer_Restart(t *testing.T) {
	h := NewHoldTimer(30 * time.Millisecond)
	var fired atomic.Int32

	h.Start(func() { fired.Add(1) })
	h.Cancel()
	h.Start(func() { fired.Add(10) })

	assert.Eventually(t, func() bool { return fired.Load() == 10 }, time.Second, 5*time.Millisecond)
}

func TestHoldTimer_DefaultDuration(t *testing.T) {
	assert.Equal(t, DefaultHoldDuration, NewHoldTimer(0).Duration())
	assert.Equal(t, 1500*time.Millisecond, DefaultHoldDuration)
}
