package reader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightforgemedia/go-uiharness/pkg/locator"
	"github.com/lightforgemedia/go-uiharness/pkg/scenario"
	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

type fakeHandle struct{ selector string }

func (h fakeHandle) Click(context.Context) error          { return nil }
func (h fakeHandle) Input(context.Context, string) error  { return nil }
func (h fakeHandle) Text(context.Context) (string, error) { return "", nil }
func (h fakeHandle) Selector() string                     { return h.selector }

// fakePage reports every listed selector as having one visible match.
type fakePage struct{ visible map[string]bool }

func (p fakePage) VisibleHandles(_ context.Context, selector string) ([]locator.Handle, error) {
	if p.visible[selector] {
		return []locator.Handle{fakeHandle{selector: selector}}, nil
	}
	return nil, nil
}

func TestAddFeedInputResolvesPerViewport(t *testing.T) {
	page := fakePage{visible: map[string]bool{
		"#mobile-sidebar input[name='new_feed_url']":        true,
		"#desktop-feeds-content input[name='new_feed_url']": true,
	}}

	// Both copies are visible, but each viewport class admits only its
	// own candidate, so resolution stays unambiguous.
	h, err := locator.Resolve(context.Background(), page, AddFeedInput, viewport.Mobile)
	require.NoError(t, err)
	assert.Contains(t, h.Selector(), "#mobile-sidebar")

	h, err = locator.Resolve(context.Background(), page, AddFeedInput, viewport.Desktop)
	require.NoError(t, err)
	assert.Contains(t, h.Selector(), "#desktop-feeds-content")
}

func TestHamburgerIsMobileOnly(t *testing.T) {
	page := fakePage{visible: map[string]bool{"#mobile-menu-button": true}}

	_, err := locator.Resolve(context.Background(), page, Hamburger, viewport.Mobile)
	require.NoError(t, err)

	n, err := locator.VisibleCount(context.Background(), page, Hamburger, viewport.Desktop)
	require.NoError(t, err)
	assert.Zero(t, n, "hamburger has no desktop candidate")
}

func TestItemAtSelector(t *testing.T) {
	elem := ItemAt(6)
	require.Len(t, elem.Candidates, 1)
	assert.Equal(t, "li[data-testid='feed-item']:nth-child(6) a", elem.Candidates[0].Selector)
	assert.Empty(t, elem.Candidates[0].Viewports, "item links apply to every viewport")
}

func TestEnsureDrawerOpenIsDesktopNoop(t *testing.T) {
	err := ensureDrawerOpen(context.Background(), nil, scenario.Params{Viewport: viewport.Desktop})
	assert.NoError(t, err)
}

func TestProbeSetNames(t *testing.T) {
	specs := ReadTransitionProbes()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"dot-classes", "title-weight", "item-height", "list-scroll"}, names)
}

func TestSuiteShape(t *testing.T) {
	suite := Suite()
	require.Len(t, suite, 5)

	seen := make(map[string]bool)
	for _, entry := range suite {
		assert.NotEmpty(t, entry.Scenario.Name)
		assert.False(t, seen[entry.Scenario.Name], "scenario names must be unique")
		seen[entry.Scenario.Name] = true
		assert.NotEmpty(t, entry.Classes)

		for _, f := range entry.Fixtures {
			assert.NotEmpty(t, f.Name)
			assert.Contains(t, f.Values, "url")
			assert.Contains(t, f.Values, "expect")
		}
	}

	assert.Len(t, suite[0].Fixtures, 2, "accepted outcomes: success and partial failure")
	assert.Len(t, suite[1].Fixtures, 3, "rejected outcomes: empty, duplicate, invalid")
}
