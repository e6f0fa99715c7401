// Package locator resolves logical UI elements to concrete handles.
//
// A logical element ("the add-feed button") maps to one or more selector
// candidates, each tagged with the viewport classes it applies to. Many
// UI frameworks keep both mobile and desktop DOM subtrees in the
// document and toggle visibility through layout rules, so a candidate
// only counts when it is actually visible. Finding more than one
// visible implementation of the same logical element is a bug in the
// application under test and is surfaced as a non-retryable fault
// rather than masked by first-match ordering.
package locator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lightforgemedia/go-uiharness/pkg/poll"
	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

// ErrNotReady signals that no visible candidate matched. The element
// may simply not have rendered yet; callers compose with poll.Await.
var ErrNotReady = errors.New("locator: no visible candidate")

// AmbiguousStateError reports that more than one visible candidate
// resolved for a single logical element, typically both layout
// subtrees rendering at once. It is never retried.
type AmbiguousStateError struct {
	Element   string
	Viewport  viewport.Class
	Selectors []string
}

func (e *AmbiguousStateError) Error() string {
	return fmt.Sprintf("locator: ambiguous state for %q in %s viewport: %d visible candidates (%s)",
		e.Element, e.Viewport, len(e.Selectors), strings.Join(e.Selectors, ", "))
}

// Handle is a resolved, visible element the scenario can act on.
type Handle interface {
	// Click clicks the element.
	Click(ctx context.Context) error
	// Input clears the element and types text into it.
	Input(ctx context.Context, text string) error
	// Text returns the element's visible text.
	Text(ctx context.Context) (string, error)
	// Selector returns the selector the handle was resolved from.
	Selector() string
}

// Page is the read-only query surface the resolver needs.
type Page interface {
	// VisibleHandles returns handles for all elements matching the
	// selector that are currently visible, not merely present.
	VisibleHandles(ctx context.Context, selector string) ([]Handle, error)
}

// Candidate is one concrete implementation of a logical element.
type Candidate struct {
	Selector  string
	Viewports []viewport.Class
}

// appliesTo reports whether the candidate is tagged for the class.
// A candidate with no tags applies to every viewport.
func (c Candidate) appliesTo(class viewport.Class) bool {
	if len(c.Viewports) == 0 {
		return true
	}
	for _, v := range c.Viewports {
		if v == class {
			return true
		}
	}
	return false
}

// LogicalElement is a named UI affordance abstracted from its concrete,
// viewport-specific implementations. Mappings are configuration: they
// are defined once and read-only at run time.
type LogicalElement struct {
	Name       string
	Candidates []Candidate
}

// Element builds a LogicalElement. Candidates are listed in
// declaration order; order carries no priority, since resolution
// requires exactly one visible match overall.
func Element(name string, candidates ...Candidate) LogicalElement {
	return LogicalElement{Name: name, Candidates: candidates}
}

// On tags a selector with the viewport classes it applies to.
func On(selector string, classes ...viewport.Class) Candidate {
	return Candidate{Selector: selector, Viewports: classes}
}

// Any tags a selector for every viewport class.
func Any(selector string) Candidate {
	return Candidate{Selector: selector}
}

// Resolve finds the single visible implementation of elem for the given
// viewport class. Zero visible matches returns ErrNotReady; more than
// one returns an AmbiguousStateError.
func Resolve(ctx context.Context, page Page, elem LogicalElement, class viewport.Class) (Handle, error) {
	var (
		found     []Handle
		selectors []string
	)
	for _, cand := range elem.Candidates {
		if !cand.appliesTo(class) {
			continue
		}
		handles, err := page.VisibleHandles(ctx, cand.Selector)
		if err != nil {
			return nil, fmt.Errorf("locator: querying %q for %q: %w", cand.Selector, elem.Name, err)
		}
		for range handles {
			selectors = append(selectors, cand.Selector)
		}
		found = append(found, handles...)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("locator: %q in %s viewport: %w", elem.Name, class, ErrNotReady)
	case 1:
		return found[0], nil
	default:
		return nil, &AmbiguousStateError{Element: elem.Name, Viewport: class, Selectors: selectors}
	}
}

// Ready returns a poll.Condition that holds once elem resolves to
// exactly one visible handle. An ambiguous state aborts the wait
// immediately via the condition error path.
func Ready(page Page, elem LogicalElement, class viewport.Class) poll.Condition {
	var lastErr error
	return poll.WithDiagnostic(poll.Func(func(ctx context.Context) (bool, error) {
		_, err := Resolve(ctx, page, elem, class)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, ErrNotReady):
			lastErr = err
			return false, nil
		default:
			return false, err
		}
	}), func() string {
		if lastErr == nil {
			return ""
		}
		return lastErr.Error()
	})
}

// VisibleCount returns the number of visible implementations of elem in
// the given viewport class, regardless of ambiguity. Used by layout
// exclusivity assertions.
func VisibleCount(ctx context.Context, page Page, elem LogicalElement, class viewport.Class) (int, error) {
	total := 0
	for _, cand := range elem.Candidates {
		if !cand.appliesTo(class) {
			continue
		}
		handles, err := page.VisibleHandles(ctx, cand.Selector)
		if err != nil {
			return 0, fmt.Errorf("locator: querying %q for %q: %w", cand.Selector, elem.Name, err)
		}
		total += len(handles)
	}
	return total, nil
}
