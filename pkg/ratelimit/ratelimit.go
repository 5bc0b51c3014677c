package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// DefaultPageDelay is the pause between paged search requests.
const DefaultPageDelay = 2 * time.Second

// Policy returns how long to pause after the given zero-based page index has
// been processed. A zero or negative duration means no pause.
type Policy func(page int) time.Duration

// None never pauses. Tests use it to run paged fetches without delay.
func None() Policy {
	return func(int) time.Duration { return 0 }
}

// Fixed pauses for the same duration after every page.
func Fixed(d time.Duration) Policy {
	return func(int) time.Duration { return d }
}

// Jittered pauses for base +/- (jitter * base). Jitter is clamped to 0.0..1.0.
func Jittered(base time.Duration, jitter float64) Policy {
	if jitter < 0 {
		jitter = 0
	} else if jitter > 1 {
		jitter = 1
	}
	return func(int) time.Duration {
		if jitter == 0 || base <= 0 {
			return base
		}
		factor := (rand.Float64() * 2) - 1.0 // -1.0 to 1.0
		return base + time.Duration(float64(base)*jitter*factor)
	}
}

// Wait blocks for the duration the policy assigns to page, or until the
// context is canceled.
func (p Policy) Wait(ctx context.Context, page int) error {
	if p == nil {
		return nil
	}
	d := p(page)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
