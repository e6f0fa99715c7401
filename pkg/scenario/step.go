package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/lightforgemedia/go-uiharness/pkg/browser"
	"github.com/lightforgemedia/go-uiharness/pkg/htmx"
	"github.com/lightforgemedia/go-uiharness/pkg/locator"
	"github.com/lightforgemedia/go-uiharness/pkg/poll"
	"github.com/lightforgemedia/go-uiharness/pkg/probe"
	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

// Scenario is an ordered sequence of steps. Bodies are written once
// and replayed across the {viewport} x {fixture} matrix.
type Scenario struct {
	Name  string
	steps []Step
}

// Step is one unit of scenario execution. Steps run strictly in
// order; a failing step halts the scenario, since later steps assume
// the prior step's postcondition.
type Step interface {
	describe() string
	run(ctx context.Context, r *run) error
}

// assertionError carries assertion failures out of a step so the
// runner can record them on the Result.
type assertionError struct {
	failures []AssertionFailure
}

func (e *assertionError) Error() string {
	parts := make([]string, len(e.failures))
	for i, f := range e.failures {
		parts[i] = f.String()
	}
	return "assertion failed: " + strings.Join(parts, "; ")
}

// expand interpolates {key} placeholders from the fixture row.
func expand(s string, params Params) string {
	for key, val := range params.Fixture.Values {
		s = strings.ReplaceAll(s, "{"+key+"}", val)
	}
	return s
}

type navigateStep struct{ path string }

func (s navigateStep) describe() string { return "navigate " + s.path }

func (s navigateStep) run(ctx context.Context, r *run) error {
	url := r.baseURL + expand(s.path, r.params)
	if err := r.page.Navigate(ctx, url); err != nil {
		return err
	}
	return r.awaitSettled(ctx, "page settled after navigation")
}

type fillStep struct {
	elem locator.LogicalElement
	text string
}

func (s fillStep) describe() string { return "fill " + s.elem.Name }

func (s fillStep) run(ctx context.Context, r *run) error {
	handle, err := r.resolve(ctx, s.elem)
	if err != nil {
		return err
	}
	return handle.Input(ctx, expand(s.text, r.params))
}

type clickStep struct {
	elem locator.LogicalElement
	// settle waits for htmx to settle after the click. Disabled for
	// clicks that trigger full navigations instead of swaps.
	settle bool
}

func (s clickStep) describe() string { return "click " + s.elem.Name }

func (s clickStep) run(ctx context.Context, r *run) error {
	handle, err := r.resolve(ctx, s.elem)
	if err != nil {
		return err
	}
	if err := handle.Click(ctx); err != nil {
		return err
	}
	if s.settle {
		return r.awaitSettled(ctx, "updates settled after clicking "+s.elem.Name)
	}
	return nil
}

// resizeStep switches the live viewport mid-scenario. Subsequent
// element resolution uses the new class; SetViewport already applies
// the settle wait that layout re-renders require.
type resizeStep struct {
	to viewport.Class
}

func (s resizeStep) describe() string { return "resize viewport to " + s.to.String() }

func (s resizeStep) run(ctx context.Context, r *run) error {
	if err := r.page.SetViewport(ctx, viewport.SizeFor(s.to)); err != nil {
		return err
	}
	r.params.Viewport = s.to
	return nil
}

type snapshotStep struct {
	name  string
	specs []probe.Spec
}

func (s snapshotStep) describe() string { return "snapshot " + s.name }

func (s snapshotStep) run(ctx context.Context, r *run) error {
	snap, err := probe.Capture(ctx, r.page, s.specs)
	if err != nil {
		return err
	}
	r.snapshots[s.name] = snap
	r.lastSnapshot = snap
	return nil
}

type assertDiffStep struct {
	before, after string
	expects       []Expectation
}

func (s assertDiffStep) describe() string {
	return fmt.Sprintf("assert diff %s -> %s", s.before, s.after)
}

func (s assertDiffStep) run(ctx context.Context, r *run) error {
	before, ok := r.snapshots[s.before]
	if !ok {
		return fmt.Errorf("scenario: no snapshot named %q", s.before)
	}
	after, ok := r.snapshots[s.after]
	if !ok {
		return fmt.Errorf("scenario: no snapshot named %q", s.after)
	}

	entries := probe.Diff(before, after)
	byProbe := make(map[string]probe.Entry, len(entries))
	for _, e := range entries {
		byProbe[e.Probe] = e
	}

	var failures []AssertionFailure
	for _, expect := range s.expects {
		entry, ok := byProbe[expect.Probe]
		if !ok {
			failures = append(failures, AssertionFailure{
				Probe:    expect.Probe,
				Expected: "probe present in both snapshots",
				Actual:   "probe missing",
			})
			continue
		}
		if f := expect.verify(entry); f != nil {
			failures = append(failures, *f)
		}
	}
	if len(failures) > 0 {
		return &assertionError{failures: failures}
	}
	return nil
}

type assertTextStep struct {
	elem   locator.LogicalElement
	substr string
}

func (s assertTextStep) describe() string {
	return fmt.Sprintf("assert %s contains %q", s.elem.Name, s.substr)
}

func (s assertTextStep) run(ctx context.Context, r *run) error {
	handle, err := r.resolve(ctx, s.elem)
	if err != nil {
		return err
	}
	text, err := handle.Text(ctx)
	if err != nil {
		return err
	}
	want := expand(s.substr, r.params)
	if !strings.Contains(text, want) {
		return &assertionError{failures: []AssertionFailure{{
			Probe:    s.elem.Name + " text",
			Expected: fmt.Sprintf("contains %q", want),
			Actual:   truncate(text, 200),
		}}}
	}
	return nil
}

type assertVisibleCountStep struct {
	elem locator.LogicalElement
	want int
}

func (s assertVisibleCountStep) describe() string {
	return fmt.Sprintf("assert %d visible %s", s.want, s.elem.Name)
}

func (s assertVisibleCountStep) run(ctx context.Context, r *run) error {
	n, err := locator.VisibleCount(ctx, r.page, s.elem, r.params.Viewport)
	if err != nil {
		return err
	}
	if n != s.want {
		return &assertionError{failures: []AssertionFailure{{
			Probe:    s.elem.Name + " visible count",
			Expected: fmt.Sprintf("%d", s.want),
			Actual:   fmt.Sprintf("%d", n),
		}}}
	}
	return nil
}

type waitStep struct {
	desc string
	cond func(pg *browser.Page) poll.Condition
}

func (s waitStep) describe() string { return "wait for " + s.desc }

func (s waitStep) run(ctx context.Context, r *run) error {
	_, err := poll.Await(ctx, s.desc, s.cond(r.page), r.policy)
	return err
}

type settleStep struct{}

func (s settleStep) describe() string { return "wait for updates to settle" }

func (s settleStep) run(ctx context.Context, r *run) error {
	return r.awaitSettled(ctx, "updates settled")
}

type customStep struct {
	desc string
	fn   func(ctx context.Context, pg *browser.Page, params Params) error
}

func (s customStep) describe() string { return s.desc }

func (s customStep) run(ctx context.Context, r *run) error {
	return s.fn(ctx, r.page, r.params)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// awaitSettled waits for all pending swaps, out-of-band included.
func (r *run) awaitSettled(ctx context.Context, desc string) error {
	_, err := poll.Await(ctx, desc, htmx.Settled(r.page), r.policy)
	return err
}
