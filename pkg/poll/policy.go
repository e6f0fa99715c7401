package poll

import (
	"errors"
	"time"
)

const (
	defaultInitialDelay      = 100 * time.Millisecond
	defaultBackoffMultiplier = 2.0
	defaultMaxDelay          = 1 * time.Second
	defaultMaxDuration       = 5 * time.Second
)

// Policy bounds how long and how often a condition is re-checked.
// At least one of MaxAttempts or MaxDuration must be set; when both are
// set the first bound to trigger wins.
type Policy struct {
	// InitialDelay is the sleep before the second attempt. The first
	// evaluation happens immediately. Defaults to 100ms.
	InitialDelay time.Duration

	// BackoffMultiplier scales the delay after each failed attempt.
	// Must be >= 1. Defaults to 2.
	BackoffMultiplier float64

	// MaxDelay caps the backoff. Must be >= InitialDelay. Defaults to 1s.
	MaxDelay time.Duration

	// MaxAttempts stops polling after this many evaluations.
	// 0 means unbounded by attempts.
	MaxAttempts int

	// MaxDuration stops polling once this much wall-clock time has
	// elapsed since Await was called. 0 means unbounded by duration.
	MaxDuration time.Duration
}

// DefaultPolicy returns a Policy suitable for waiting on a single
// asynchronous page update: 100ms initial delay doubling up to 1s,
// bounded at 5s total.
func DefaultPolicy() Policy {
	return Policy{
		InitialDelay:      defaultInitialDelay,
		BackoffMultiplier: defaultBackoffMultiplier,
		MaxDelay:          defaultMaxDelay,
		MaxDuration:       defaultMaxDuration,
	}
}

// Validate reports whether the policy is internally consistent.
func (p Policy) Validate() error {
	if p.InitialDelay <= 0 {
		return errors.New("poll: InitialDelay must be positive")
	}
	if p.BackoffMultiplier < 1 {
		return errors.New("poll: BackoffMultiplier must be >= 1")
	}
	if p.MaxDelay < p.InitialDelay {
		return errors.New("poll: MaxDelay must be >= InitialDelay")
	}
	if p.MaxAttempts <= 0 && p.MaxDuration <= 0 {
		return errors.New("poll: at least one of MaxAttempts or MaxDuration must be set")
	}
	if p.MaxAttempts < 0 {
		return errors.New("poll: MaxAttempts must not be negative")
	}
	if p.MaxDuration < 0 {
		return errors.New("poll: MaxDuration must not be negative")
	}
	return nil
}

// nextDelay returns the sleep duration following the given one.
func (p Policy) nextDelay(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * p.BackoffMultiplier)
	if next > p.MaxDelay {
		return p.MaxDelay
	}
	return next
}
