// Package scenario orchestrates user actions, waits, snapshots, and
// assertions into replayable test scenarios with pass/fail verdicts
// and diagnostic artifacts on failure.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lightforgemedia/go-uiharness/pkg/browser"
	"github.com/lightforgemedia/go-uiharness/pkg/diagnostics"
	"github.com/lightforgemedia/go-uiharness/pkg/locator"
	"github.com/lightforgemedia/go-uiharness/pkg/poll"
	"github.com/lightforgemedia/go-uiharness/pkg/probe"
	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

const collectorLimit = 50

// RunnerOptions configures a Runner. BaseURL is mandatory: the server
// under test is an explicit constructor argument, never an implicit
// global.
type RunnerOptions struct {
	// BaseURL of the server under test, e.g. "http://127.0.0.1:8080".
	BaseURL string

	// Browser to run sessions in.
	Browser *browser.Browser

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger

	// Policy is the default poll policy for waits. Defaults to
	// poll.DefaultPolicy().
	Policy poll.Policy

	// ArtifactsDir receives failure screenshots and state dumps.
	// Defaults to "artifacts".
	ArtifactsDir string
}

// Runner executes scenarios against one server.
type Runner struct {
	baseURL  string
	browser  *browser.Browser
	logger   *slog.Logger
	policy   poll.Policy
	capturer *diagnostics.Capturer
}

// NewRunner validates options and builds a Runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("scenario: BaseURL is required")
	}
	if opts.Browser == nil {
		return nil, errors.New("scenario: Browser is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Policy == (poll.Policy{}) {
		opts.Policy = poll.DefaultPolicy()
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}
	if opts.ArtifactsDir == "" {
		opts.ArtifactsDir = "artifacts"
	}
	capturer, err := diagnostics.NewCapturer(opts.ArtifactsDir, opts.Logger)
	if err != nil {
		return nil, err
	}
	return &Runner{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		browser:  opts.Browser,
		logger:   opts.Logger,
		policy:   opts.Policy,
		capturer: capturer,
	}, nil
}

// run is the mutable state of one execution.
type run struct {
	baseURL      string
	page         *browser.Page
	params       Params
	policy       poll.Policy
	snapshots    map[string]*probe.Snapshot
	lastSnapshot *probe.Snapshot
}

// resolve waits for elem to become resolvable, then resolves it. An
// ambiguous state aborts without retry.
func (r *run) resolve(ctx context.Context, elem locator.LogicalElement) (locator.Handle, error) {
	if _, err := poll.Await(ctx, elem.Name+" resolvable", locator.Ready(r.page, elem, r.params.Viewport), r.policy); err != nil {
		return nil, err
	}
	return locator.Resolve(ctx, r.page, elem, r.params.Viewport)
}

// Run executes one scenario with one parameter cell. The verdict state
// machine is Pending -> Running -> {Passed, Failed, Errored}; session
// teardown runs on every exit path.
func (rn *Runner) Run(ctx context.Context, sc Scenario, params Params) Result {
	result := Result{
		Scenario: sc.Name,
		Params:   params,
		RunID:    uuid.NewString(),
		Verdict:  Pending,
	}
	start := time.Now()
	logger := rn.logger.With("scenario", sc.Name, "params", params.Label(), "run_id", result.RunID)

	session, err := rn.browser.NewSession(ctx)
	if err != nil {
		result.Verdict = Errored
		result.Err = err
		result.Elapsed = time.Since(start)
		logger.Error("session setup failed", "error", err)
		return result
	}
	defer session.Close()

	collector := diagnostics.NewCollector(session.Bus(), collectorLimit)
	defer collector.Close()

	result.Verdict = Running

	page, err := session.OpenPage(ctx, "about:blank")
	if err == nil {
		err = page.SetViewport(ctx, viewport.SizeFor(params.Viewport))
	}
	if err != nil {
		result.Verdict = Errored
		result.Err = err
		result.Elapsed = time.Since(start)
		logger.Error("page setup failed", "error", err)
		return result
	}

	r := &run{
		baseURL:   rn.baseURL,
		page:      page,
		params:    params,
		policy:    rn.policy,
		snapshots: make(map[string]*probe.Snapshot),
	}

	for i, step := range sc.steps {
		logger.Debug("step", "index", i, "action", step.describe())
		if err := step.run(ctx, r); err != nil {
			verdict, failures := classify(err)
			result.Verdict = verdict
			result.Err = fmt.Errorf("step %d (%s): %w", i, step.describe(), err)
			result.Failures = failures
			result.Artifacts = rn.capturer.Capture(ctx, artifactLabel(sc.Name, params), page, r.lastSnapshot, collector)
			result.Elapsed = time.Since(start)
			logger.Warn("scenario halted", "verdict", verdict.String(), "step", step.describe(), "error", err)
			return result
		}
	}

	result.Verdict = Passed
	result.Elapsed = time.Since(start)
	logger.Info("scenario passed", "elapsed", result.Elapsed)
	return result
}

// RunMatrix replays one scenario body across every viewport class and
// fixture row. An empty fixture list runs each viewport once with an
// empty fixture.
func (rn *Runner) RunMatrix(ctx context.Context, sc Scenario, classes []viewport.Class, fixtures []Fixture) []Result {
	if len(fixtures) == 0 {
		fixtures = []Fixture{{}}
	}
	results := make([]Result, 0, len(classes)*len(fixtures))
	for _, class := range classes {
		for _, fixture := range fixtures {
			results = append(results, rn.Run(ctx, sc, Params{Viewport: class, Fixture: fixture}))
		}
	}
	return results
}

// classify maps a step error onto the verdict taxonomy. Infrastructure
// faults are Errored; everything the application under test caused
// (assertions, timeouts, ambiguous layouts) is Failed.
func classify(err error) (State, []AssertionFailure) {
	var assertErr *assertionError
	if errors.As(err, &assertErr) {
		return Failed, assertErr.failures
	}
	if errors.Is(err, browser.ErrInfrastructure) {
		return Errored, nil
	}
	var ambig *locator.AmbiguousStateError
	if errors.As(err, &ambig) {
		return Failed, []AssertionFailure{{
			Probe:    ambig.Element,
			Expected: "exactly one visible candidate",
			Actual:   ambig.Error(),
		}}
	}
	var timeout *poll.TimeoutError
	if errors.As(err, &timeout) {
		return Failed, []AssertionFailure{{
			Probe:    timeout.Description,
			Expected: "condition met within budget",
			Actual:   timeout.Error(),
		}}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Errored, nil
	}
	return Errored, nil
}

func artifactLabel(name string, params Params) string {
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	return slug + "-" + strings.ReplaceAll(params.Label(), "/", "-")
}
