package locator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightforgemedia/go-uiharness/pkg/poll"
	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

// fakeHandle implements Handle for resolver tests.
type fakeHandle struct {
	selector string
	clicked  int
	text     string
}

func (h *fakeHandle) Click(ctx context.Context) error              { h.clicked++; return nil }
func (h *fakeHandle) Input(ctx context.Context, text string) error { h.text = text; return nil }
func (h *fakeHandle) Text(ctx context.Context) (string, error)     { return h.text, nil }
func (h *fakeHandle) Selector() string                             { return h.selector }

// fakePage maps selectors to the handles they currently yield.
type fakePage struct {
	visible map[string][]Handle
	err     error
}

func (p *fakePage) VisibleHandles(ctx context.Context, selector string) ([]Handle, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.visible[selector], nil
}

var hamburger = Element("hamburger button",
	On("#mobile-header .menu-btn", viewport.Mobile),
	On("#desktop-nav .menu-btn", viewport.Desktop),
)

func TestResolveSingleVisibleCandidate(t *testing.T) {
	want := &fakeHandle{selector: "#mobile-header .menu-btn"}
	page := &fakePage{visible: map[string][]Handle{
		"#mobile-header .menu-btn": {want},
	}}

	got, err := Resolve(context.Background(), page, hamburger, viewport.Mobile)
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestResolveFiltersByViewport(t *testing.T) {
	// The desktop candidate is visible, but we are resolving for
	// mobile, so it must not be considered.
	page := &fakePage{visible: map[string][]Handle{
		"#desktop-nav .menu-btn": {&fakeHandle{selector: "#desktop-nav .menu-btn"}},
	}}

	_, err := Resolve(context.Background(), page, hamburger, viewport.Mobile)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestResolveZeroVisibleIsNotReady(t *testing.T) {
	page := &fakePage{visible: map[string][]Handle{}}
	_, err := Resolve(context.Background(), page, hamburger, viewport.Mobile)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestResolveAmbiguousStateFault(t *testing.T) {
	// Both layout subtrees rendering simultaneously is the exact
	// application bug the resolver exists to catch.
	both := Element("add-feed button",
		On("#mobile-sidebar .add-feed-button", viewport.Mobile),
		Any(".add-feed-button-fallback"),
	)
	page := &fakePage{visible: map[string][]Handle{
		"#mobile-sidebar .add-feed-button": {&fakeHandle{selector: "#mobile-sidebar .add-feed-button"}},
		".add-feed-button-fallback":        {&fakeHandle{selector: ".add-feed-button-fallback"}},
	}}

	_, err := Resolve(context.Background(), page, both, viewport.Mobile)
	require.Error(t, err)

	var ambig *AmbiguousStateError
	require.ErrorAs(t, err, &ambig)
	assert.Equal(t, "add-feed button", ambig.Element)
	assert.Len(t, ambig.Selectors, 2)
	assert.NotErrorIs(t, err, ErrNotReady)
}

func TestResolveAmbiguousWithinOneCandidate(t *testing.T) {
	dup := Element("search input", On("input.search", viewport.Desktop))
	page := &fakePage{visible: map[string][]Handle{
		"input.search": {&fakeHandle{selector: "input.search"}, &fakeHandle{selector: "input.search"}},
	}}

	_, err := Resolve(context.Background(), page, dup, viewport.Desktop)
	var ambig *AmbiguousStateError
	require.ErrorAs(t, err, &ambig)
}

func TestResolveUntaggedCandidateAppliesEverywhere(t *testing.T) {
	el := Element("toast", Any(".toast"))
	page := &fakePage{visible: map[string][]Handle{
		".toast": {&fakeHandle{selector: ".toast"}},
	}}

	for _, class := range []viewport.Class{viewport.Mobile, viewport.Desktop} {
		got, err := Resolve(context.Background(), page, el, class)
		require.NoError(t, err, "class %s", class)
		assert.Equal(t, ".toast", got.Selector())
	}
}

func TestResolveQueryErrorPropagates(t *testing.T) {
	boom := errors.New("target closed")
	page := &fakePage{err: boom}
	_, err := Resolve(context.Background(), page, hamburger, viewport.Mobile)
	assert.ErrorIs(t, err, boom)
}

func TestReadyConditionRetriesNotReady(t *testing.T) {
	page := &fakePage{visible: map[string][]Handle{}}
	cond := Ready(page, hamburger, viewport.Mobile)

	ok, err := cond.Eval(context.Background())
	require.NoError(t, err, "not-ready must be retryable, not an error")
	assert.False(t, ok)

	// Once the element renders, the condition holds.
	page.visible["#mobile-header .menu-btn"] = []Handle{&fakeHandle{selector: "#mobile-header .menu-btn"}}
	ok, err = cond.Eval(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReadyConditionAbortsOnAmbiguity(t *testing.T) {
	page := &fakePage{visible: map[string][]Handle{
		"#mobile-header .menu-btn": {&fakeHandle{}, &fakeHandle{}},
	}}
	cond := Ready(page, hamburger, viewport.Mobile)

	_, err := cond.Eval(context.Background())
	var ambig *AmbiguousStateError
	require.ErrorAs(t, err, &ambig, "ambiguity must abort the wait, not be retried")
}

func TestReadyConditionWithAwait(t *testing.T) {
	page := &fakePage{visible: map[string][]Handle{}}
	policy := poll.Policy{
		InitialDelay:      time.Millisecond,
		BackoffMultiplier: 1,
		MaxDelay:          time.Millisecond,
		MaxAttempts:       3,
	}

	res, err := poll.Await(context.Background(), "hamburger visible", Ready(page, hamburger, viewport.Mobile), policy)
	require.Error(t, err)
	assert.Contains(t, res.LastDiagnostic, "no visible candidate")
}

func TestVisibleCount(t *testing.T) {
	page := &fakePage{visible: map[string][]Handle{
		"#mobile-header .menu-btn": {&fakeHandle{}},
		"#desktop-nav .menu-btn":   {&fakeHandle{}},
	}}

	n, err := VisibleCount(context.Background(), page, hamburger, viewport.Mobile)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = VisibleCount(context.Background(), page, hamburger, viewport.Desktop)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
