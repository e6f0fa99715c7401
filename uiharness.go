// uiharness.go
package uiharness

import (
	"context"

	"github.com/lightforgemedia/go-uiharness/pkg/browser"
	"github.com/lightforgemedia/go-uiharness/pkg/locator"
	"github.com/lightforgemedia/go-uiharness/pkg/poll"
	"github.com/lightforgemedia/go-uiharness/pkg/probe"
	"github.com/lightforgemedia/go-uiharness/pkg/scenario"
	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

// Re-export core types
type (
	Policy         = poll.Policy
	Condition      = poll.Condition
	TimeoutError   = poll.TimeoutError
	ViewportClass  = viewport.Class
	ViewportSize   = viewport.Size
	LogicalElement = locator.LogicalElement
	Candidate      = locator.Candidate
	Handle         = locator.Handle
	ProbeSpec      = probe.Spec
	Snapshot       = probe.Snapshot
	DiffEntry      = probe.Entry
	Scenario       = scenario.Scenario
	Builder        = scenario.Builder
	Fixture        = scenario.Fixture
	Params         = scenario.Params
	Result         = scenario.Result
	Runner         = scenario.Runner
	RunnerOptions  = scenario.RunnerOptions
	Browser        = browser.Browser
	BrowserOptions = browser.Options
)

// Re-export error types
var (
	ErrNotReady       = locator.ErrNotReady
	ErrInfrastructure = browser.ErrInfrastructure
)

// Re-export viewport classes and scenario verdicts
const (
	Mobile  = viewport.Mobile
	Desktop = viewport.Desktop

	Passed  = scenario.Passed
	Failed  = scenario.Failed
	Errored = scenario.Errored
)

// DefaultPolicy returns the default retry policy for waits.
func DefaultPolicy() poll.Policy {
	return poll.DefaultPolicy()
}

// Await polls a condition under a policy until it holds or a stop
// bound is hit.
func Await(ctx context.Context, description string, cond poll.Condition, policy poll.Policy) (poll.Result, error) {
	return poll.Await(ctx, description, cond, policy)
}

// Element defines a logical UI element from its selector candidates.
func Element(name string, candidates ...locator.Candidate) locator.LogicalElement {
	return locator.Element(name, candidates...)
}

// On tags a selector with the viewport classes it applies to.
func On(selector string, classes ...viewport.Class) locator.Candidate {
	return locator.On(selector, classes...)
}

// Any tags a selector for every viewport class.
func Any(selector string) locator.Candidate {
	return locator.Any(selector)
}

// NewScenario starts a scenario definition.
func NewScenario(name string) *scenario.Builder {
	return scenario.New(name)
}

// NewRunner builds a scenario runner.
func NewRunner(opts scenario.RunnerOptions) (*scenario.Runner, error) {
	return scenario.NewRunner(opts)
}

// DefaultBrowserOptions returns default browser options.
func DefaultBrowserOptions() browser.Options {
	return browser.DefaultOptions()
}

// NewBrowser launches a browser.
func NewBrowser(opts browser.Options, extra ...browser.Option) (*browser.Browser, error) {
	return browser.New(opts, extra...)
}
