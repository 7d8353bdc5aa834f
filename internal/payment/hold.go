package payment

import (
	"sync"
	"time"
)

const DefaultHoldDuration = 1500 * time.Millisecond

// HoldTimer measures a continuous press. The callback passed to Start runs
// once when the hold reaches its duration, unless Cancel runs first.
type HoldTimer struct {
	mu       sync.Mutex
	d        time.Duration
	started  time.Time
	timer    *time.Timer
	seq      uint64
	running  bool
	complete bool
}

func NewHoldTimer(d time.Duration) *HoldTimer {
	if d <= 0 {
		d = DefaultHoldDuration
	}
	return &HoldTimer{d: d}
}

func (h *HoldTimer) Duration() time.Duration { return h.d }

// Start begins a hold. It returns false if a hold is already running.
func (h *HoldTimer) Start(onComplete func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return false
	}
	h.seq++
	seq := h.seq
	h.running = true
	h.complete = false
	h.started = time.Now()
	h.timer = time.AfterFunc(h.d, func() {
		h.mu.Lock()
		if !h.running || h.seq != seq {
			h.mu.Unlock()
			return
		}
		h.running = false
		h.complete = true
		h.mu.Unlock()

		onComplete()
	})
	return true
}

// Cancel stops a running hold and resets progress. It reports whether it
// prevented the callback from running.
func (h *HoldTimer) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.complete = false
	if !h.running {
		return false
	}
	h.running = false
	h.seq++
	h.timer.Stop()
	return true
}

// Progress is in [0, 1]. It uses the monotonic clock reading of time.Now.
func (h *HoldTimer) Progress() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case h.complete:
		return 1
	case !h.running:
		return 0
	}
	p := float64(time.Since(h.started)) / float64(h.d)
	if p > 1 {
		p = 1
	}
	return p
}

func (h *HoldTimer) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}
