// Package htmx provides poll conditions for waiting on partial-page
// updates to settle. A single response may swap a primary target and
// any number of out-of-band fragments; assertions must not run until
// all of them have applied.
package htmx

import (
	"context"
	"sync"

	"github.com/lightforgemedia/go-uiharness/pkg/poll"
)

// Evaluator runs JavaScript expressions in the page under test.
// Implemented by browser.Page.
type Evaluator interface {
	EvalBool(ctx context.Context, expr string) (bool, error)
	EvalString(ctx context.Context, expr string) (string, error)
}

const (
	// requestsIdleJS checks only the body classes htmx maintains for
	// the primary swap target.
	requestsIdleJS = `() => !document.body.classList.contains('htmx-request') && !document.body.classList.contains('htmx-settling')`

	// settledJS consults the injected tracker, which also counts
	// out-of-band swaps. Falls back to the body classes when the
	// tracker is not installed.
	settledJS = `() => {
		if (typeof window.__uiharnessIdle === 'function') {
			return window.__uiharnessIdle();
		}
		return !document.body.classList.contains('htmx-request') && !document.body.classList.contains('htmx-settling');
	}`

	stateJS = `() => {
		if (typeof window.__uiharnessState === 'function') {
			return window.__uiharnessState();
		}
		return 'tracker not installed; body class: ' + document.body.className;
	}`
)

// RequestsIdle holds when no request is in flight against the primary
// swap target. It does not account for out-of-band fragments; prefer
// Settled unless the page predates the tracker injection.
func RequestsIdle(page Evaluator) poll.Condition {
	return condition(page, requestsIdleJS)
}

// Settled holds when all in-flight requests have completed and every
// swap, primary and out-of-band, has finished settling.
func Settled(page Evaluator) poll.Condition {
	return condition(page, settledJS)
}

func condition(page Evaluator, expr string) poll.Condition {
	var (
		mu   sync.Mutex
		last string
	)
	return poll.WithDiagnostic(poll.Func(func(ctx context.Context) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		ok, err := page.EvalBool(ctx, expr)
		if err != nil {
			// A click that triggers a full navigation destroys the
			// document's execution context mid-flight; the next attempt
			// evaluates in the new document. Treat eval failures as
			// not-yet-settled and let the poll bounds decide.
			mu.Lock()
			last = "eval failed: " + err.Error()
			mu.Unlock()
			return false, nil
		}
		if !ok {
			if state, stateErr := page.EvalString(ctx, stateJS); stateErr == nil {
				mu.Lock()
				last = state
				mu.Unlock()
			}
		}
		return ok, nil
	}), func() string {
		mu.Lock()
		defer mu.Unlock()
		return last
	})
}
