package scenario

import (
	"fmt"
	"time"

	"github.com/lightforgemedia/go-uiharness/pkg/diagnostics"
	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

// State is a scenario's lifecycle state. Running is the only
// non-terminal state and is entered exactly once from Pending.
type State int

const (
	Pending State = iota
	Running
	// Passed: every step completed and every assertion held.
	Passed
	// Failed: an assertion did not hold, a wait timed out, or the
	// application rendered an ambiguous state.
	Failed
	// Errored: the test environment itself broke (browser crash,
	// server unreachable). Kept distinct from Failed so reports can
	// separate "app is broken" from "harness is broken".
	Errored
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Errored:
		return "errored"
	default:
		return fmt.Sprintf("scenario.State(%d)", int(s))
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == Passed || s == Failed || s == Errored
}

// AssertionFailure records one probe whose observed value did not
// match the expectation.
type AssertionFailure struct {
	Probe    string
	Expected string
	Actual   string
}

func (f AssertionFailure) String() string {
	return fmt.Sprintf("%s: expected %s, got %s", f.Probe, f.Expected, f.Actual)
}

// Fixture is one input row a scenario body is replayed with. Values
// interpolate into step arguments via {key} placeholders.
type Fixture struct {
	Name   string
	Values map[string]string
}

// Params selects one cell of the replay matrix.
type Params struct {
	Viewport viewport.Class
	Fixture  Fixture
}

// Label renders the params for logs and artifact names.
func (p Params) Label() string {
	if p.Fixture.Name == "" {
		return p.Viewport.String()
	}
	return p.Viewport.String() + "/" + p.Fixture.Name
}

// Result is the immutable outcome of one scenario run. A new run
// produces a new Result; nothing mutates one after creation.
type Result struct {
	Scenario  string
	Params    Params
	RunID     string
	Verdict   State
	Failures  []AssertionFailure
	Artifacts []diagnostics.Artifact
	Err       error
	Elapsed   time.Duration
}

// Passed reports whether the run passed.
func (r Result) Passed() bool { return r.Verdict == Passed }
