// Package retry runs an operation under a bounded attempt budget with backoff
// between failed attempts.
package retry

import (
	// Go Internal Packages
	"context"
	"math"
	"time"

	// External Packages
	"github.com/cenkalti/backoff/v4"
)

// Clock hands out the timer that paces one Do call.
type Clock interface {
	NewTimer() backoff.Timer
}

type realClock struct{}

// RealClock waits on wall clock timers.
func RealClock() Clock { return realClock{} }

// NewTimer returns nil, which makes backoff use its own time.Timer.
func (realClock) NewTimer() backoff.Timer { return nil }

// Backoff builds a fresh schedule for one Do call.
type Backoff func() backoff.BackOff

// Exponential yields base, 2*base, 4*base, ... without jitter or an elapsed time cap.
func Exponential(base time.Duration) Backoff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = base
		b.Multiplier = 2
		b.RandomizationFactor = 0
		b.MaxInterval = time.Duration(math.MaxInt64)
		b.MaxElapsedTime = 0
		return b
	}
}

type Policy struct {
	MaxAttempts int
	Backoff     Backoff
	// Retryable decides whether a failed attempt may be followed by another.
	// A nil predicate retries every error.
	Retryable func(err error) bool
	Clock     Clock
}

// Default is three attempts with 1s, 2s backoff.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     Exponential(time.Second),
		Clock:       RealClock(),
	}
}

// Do calls fn until it succeeds, the budget is spent, the error is not
// retryable or ctx is done. No sleep follows the final attempt. It returns the
// number of attempts made and the last error.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var schedule backoff.BackOff = &backoff.ZeroBackOff{}
	if p.Backoff != nil {
		schedule = p.Backoff()
	}
	schedule = backoff.WithContext(backoff.WithMaxRetries(schedule, uint64(maxAttempts-1)), ctx)

	var timer backoff.Timer
	if p.Clock != nil {
		timer = p.Clock.NewTimer()
	}

	attempts := 0
	operation := func() error {
		err := fn(ctx, attempts)
		attempts++
		if err != nil && p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.RetryNotifyWithTimer(operation, schedule, nil, timer)
	return attempts, err
}
