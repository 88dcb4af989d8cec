package feed

import (
	"context"
	"math"
	"time"
)

// RetryPolicy is the reconnect schedule: BaseDelay grows by Multiplier on
// every failed attempt up to MaxDelay. MaxAttempts <= 0 retries forever.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
}

// DefaultRetryPolicy starts at 500ms, doubles and caps at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:  500 * time.Millisecond,
		Multiplier: 2,
		MaxDelay:   10 * time.Second,
	}
}

// withDefaults fills unset schedule fields from DefaultRetryPolicy.
// MaxAttempts is kept as is.
func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.BaseDelay <= 0 {
		p.BaseDelay = def.BaseDelay
	}
	if p.Multiplier <= 0 {
		p.Multiplier = def.Multiplier
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}
	return p
}

// Delay is the wait before reconnect attempt n (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.BaseDelay) * math.Pow(mult, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Exhausted reports whether attempt n is beyond the allowed attempts.
func (p RetryPolicy) Exhausted(attempt int) bool {
	return p.MaxAttempts > 0 && attempt > p.MaxAttempts
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
