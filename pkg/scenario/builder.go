package scenario

import (
	"context"

	"github.com/lightforgemedia/go-uiharness/pkg/browser"
	"github.com/lightforgemedia/go-uiharness/pkg/locator"
	"github.com/lightforgemedia/go-uiharness/pkg/poll"
	"github.com/lightforgemedia/go-uiharness/pkg/probe"
	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

// Builder assembles a Scenario step by step.
type Builder struct {
	name  string
	steps []Step
}

// New starts a scenario definition.
func New(name string) *Builder {
	return &Builder{name: name}
}

// Navigate loads baseURL+path and waits for updates to settle. The
// path may contain {key} fixture placeholders.
func (b *Builder) Navigate(path string) *Builder {
	b.steps = append(b.steps, navigateStep{path: path})
	return b
}

// Fill resolves elem and types text into it. The text may contain
// {key} fixture placeholders.
func (b *Builder) Fill(elem locator.LogicalElement, text string) *Builder {
	b.steps = append(b.steps, fillStep{elem: elem, text: text})
	return b
}

// Click resolves elem, clicks it, and waits for the resulting updates
// (primary and out-of-band) to settle.
func (b *Builder) Click(elem locator.LogicalElement) *Builder {
	b.steps = append(b.steps, clickStep{elem: elem, settle: true})
	return b
}

// ClickNoSettle clicks without the settle wait, for clicks that
// trigger a full navigation rather than a swap.
func (b *Builder) ClickNoSettle(elem locator.LogicalElement) *Builder {
	b.steps = append(b.steps, clickStep{elem: elem, settle: false})
	return b
}

// Resize switches the live viewport mid-scenario.
func (b *Builder) Resize(to viewport.Class) *Builder {
	b.steps = append(b.steps, resizeStep{to: to})
	return b
}

// Snapshot captures the probe set under the given name.
func (b *Builder) Snapshot(name string, specs ...probe.Spec) *Builder {
	b.steps = append(b.steps, snapshotStep{name: name, specs: specs})
	return b
}

// AssertDiff diffs two named snapshots and judges the expectations.
func (b *Builder) AssertDiff(before, after string, expects ...Expectation) *Builder {
	b.steps = append(b.steps, assertDiffStep{before: before, after: after, expects: expects})
	return b
}

// AssertTextContains requires elem's text to contain substr, which may
// hold {key} fixture placeholders.
func (b *Builder) AssertTextContains(elem locator.LogicalElement, substr string) *Builder {
	b.steps = append(b.steps, assertTextStep{elem: elem, substr: substr})
	return b
}

// AssertVisibleCount requires exactly want visible implementations of
// elem in the current viewport class.
func (b *Builder) AssertVisibleCount(elem locator.LogicalElement, want int) *Builder {
	b.steps = append(b.steps, assertVisibleCountStep{elem: elem, want: want})
	return b
}

// WaitSettled waits for all pending swaps, out-of-band included.
func (b *Builder) WaitSettled() *Builder {
	b.steps = append(b.steps, settleStep{})
	return b
}

// WaitFor waits on an arbitrary condition built from the live page.
func (b *Builder) WaitFor(desc string, cond func(pg *browser.Page) poll.Condition) *Builder {
	b.steps = append(b.steps, waitStep{desc: desc, cond: cond})
	return b
}

// Do runs an arbitrary action against the live page.
func (b *Builder) Do(desc string, fn func(ctx context.Context, pg *browser.Page, params Params) error) *Builder {
	b.steps = append(b.steps, customStep{desc: desc, fn: fn})
	return b
}

// Build finalizes the scenario.
func (b *Builder) Build() Scenario {
	steps := make([]Step, len(b.steps))
	copy(steps, b.steps)
	return Scenario{Name: b.name, steps: steps}
}
