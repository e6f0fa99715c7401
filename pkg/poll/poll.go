// Package poll implements the retry/backoff engine used to wait for
// asynchronous page updates to become observable. A Condition is
// re-evaluated with exponential backoff until it holds, the caller
// cancels, or the Policy's bounds are exhausted.
package poll

import (
	"context"
	"fmt"
	"time"
)

// Condition is a boolean probe over current observable state. Eval must
// be idempotent and side-effect free; it is invoked at sub-second
// intervals. Returning an error marks the failure as unretryable and
// aborts the wait immediately, as opposed to returning false, which is
// retried.
type Condition interface {
	Eval(ctx context.Context) (bool, error)
}

// Diagnoser is optionally implemented by conditions that can describe
// the last state they observed. The diagnostic is attached to timeout
// results so that a failed wait never reports a bare timeout.
type Diagnoser interface {
	Diagnostic() string
}

// Func adapts a plain function to the Condition interface.
type Func func(ctx context.Context) (bool, error)

// Eval implements Condition.
func (f Func) Eval(ctx context.Context) (bool, error) { return f(ctx) }

// diagnosed pairs a condition with a recorded diagnostic.
type diagnosed struct {
	Condition
	diag func() string
}

func (d diagnosed) Diagnostic() string { return d.diag() }

// WithDiagnostic attaches a diagnostic callback to a condition. The
// callback is consulted only when the wait times out.
func WithDiagnostic(c Condition, diag func() string) Condition {
	return diagnosed{Condition: c, diag: diag}
}

// Result describes how a wait concluded.
type Result struct {
	// Satisfied is true when the condition held before any bound fired.
	Satisfied bool

	// Attempts is the number of evaluations performed.
	Attempts int

	// Elapsed is the wall-clock time the wait consumed.
	Elapsed time.Duration

	// LastDiagnostic carries the condition's final diagnostic, when it
	// exposes one. Empty otherwise.
	LastDiagnostic string
}

// TimeoutError is returned by Await on exhaustion. It carries the wait
// description and the last observed diagnostic so failure reports have
// context.
type TimeoutError struct {
	Description string
	Attempts    int
	Elapsed     time.Duration
	Diagnostic  string
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("poll: condition %q not met after %d attempts in %v", e.Description, e.Attempts, e.Elapsed.Round(time.Millisecond))
	if e.Diagnostic != "" {
		msg += ": last state: " + e.Diagnostic
	}
	return msg
}

// Await repeatedly evaluates cond until it returns true, an error, the
// context is cancelled, or the policy's bounds are exhausted. The first
// evaluation happens immediately; subsequent attempts are separated by
// exponential backoff seeded at policy.InitialDelay and capped at
// policy.MaxDelay. Cancellation is observed during the backoff sleep,
// not after it.
func Await(ctx context.Context, description string, cond Condition, policy Policy) (Result, error) {
	if err := policy.Validate(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	var deadline time.Time
	if policy.MaxDuration > 0 {
		deadline = start.Add(policy.MaxDuration)
	}

	delay := policy.InitialDelay
	attempts := 0
	timer := time.NewTimer(0)
	defer timer.Stop()
	if !timer.Stop() {
		<-timer.C
	}

	for {
		attempts++
		ok, err := cond.Eval(ctx)
		if err != nil {
			return result(cond, false, attempts, start), fmt.Errorf("poll: condition %q failed on attempt %d: %w", description, attempts, err)
		}
		if ok {
			return result(cond, true, attempts, start), nil
		}

		if policy.MaxAttempts > 0 && attempts >= policy.MaxAttempts {
			break
		}
		if !deadline.IsZero() && !time.Now().Add(delay).Before(deadline) {
			break
		}

		timer.Reset(delay)
		select {
		case <-ctx.Done():
			return result(cond, false, attempts, start), fmt.Errorf("poll: wait for %q cancelled: %w", description, ctx.Err())
		case <-timer.C:
		}
		delay = policy.nextDelay(delay)
	}

	res := result(cond, false, attempts, start)
	return res, &TimeoutError{
		Description: description,
		Attempts:    res.Attempts,
		Elapsed:     res.Elapsed,
		Diagnostic:  res.LastDiagnostic,
	}
}

func result(cond Condition, ok bool, attempts int, start time.Time) Result {
	res := Result{
		Satisfied: ok,
		Attempts:  attempts,
		Elapsed:   time.Since(start),
	}
	if d, hasDiag := cond.(Diagnoser); hasDiag {
		res.LastDiagnostic = d.Diagnostic()
	}
	return res
}
