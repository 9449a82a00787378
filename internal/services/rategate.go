package services

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const dayKeyFormat = "2006-01-02"

// RateGate tracks the rolling daily budget of external evaluator calls.
// Every TryConsume is charged against the window, including the call that
// discovers the limit is already reached — that mirrors how the quota has
// always been counted, and changing it would silently shift the effective
// daily limit.
type RateGate struct {
	mu        sync.Mutex
	limit     int
	now       func() time.Time
	windowKey string
	count     int
	logger    *zap.SugaredLogger
}

// NewRateGate creates a gate allowing limit attempts per calendar day. The
// clock is injected so tests can simulate day rollovers.
func NewRateGate(limit int, now func() time.Time, logger *zap.SugaredLogger) *RateGate {
	if now == nil {
		now = time.Now
	}
	return &RateGate{
		limit:  limit,
		now:    now,
		logger: logger,
	}
}

// TryConsume charges one attempt against the current day window and returns
// ErrQuotaExceeded once the window budget is exhausted.
func (g *RateGate) TryConsume() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	day := g.now().Format(dayKeyFormat)
	if day != g.windowKey {
		g.windowKey = day
		g.count = 0
	}

	g.count++
	if g.logger != nil {
		g.logger.Infof("📊 Daily evaluator requests: %d/%d", g.count, g.limit)
	}

	if g.count > g.limit {
		return fmt.Errorf("%w: %d attempts on %s (limit %d)", ErrQuotaExceeded, g.count, day, g.limit)
	}

	return nil
}

// Remaining reports how many attempts are left in the current window without
// charging one.
func (g *RateGate) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.now().Format(dayKeyFormat) != g.windowKey {
		return g.limit
	}

	remaining := g.limit - g.count
	if remaining < 0 {
		return 0
	}
	return remaining
}
