package reader

import (
	"context"
	"fmt"

	"github.com/lightforgemedia/go-uiharness/pkg/browser"
	"github.com/lightforgemedia/go-uiharness/pkg/fixture"
	"github.com/lightforgemedia/go-uiharness/pkg/locator"
	"github.com/lightforgemedia/go-uiharness/pkg/probe"
	"github.com/lightforgemedia/go-uiharness/pkg/scenario"
	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

// ItemAt targets the nth article link in the summary list.
func ItemAt(n int) locator.LogicalElement {
	return locator.Element(fmt.Sprintf("item link %d", n),
		locator.Any(fmt.Sprintf("li[data-testid='feed-item']:nth-child(%d) a", n)),
	)
}

// ensureDrawerOpen opens the mobile drawer when it is closed. A no-op
// on desktop and when the drawer is already open, so a post-submit
// re-render that closed the drawer does not strand the scenario.
func ensureDrawerOpen(ctx context.Context, pg *browser.Page, params scenario.Params) error {
	if params.Viewport != viewport.Mobile {
		return nil
	}
	n, err := locator.VisibleCount(ctx, pg, Sidebar, params.Viewport)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	handle, err := locator.Resolve(ctx, pg, Hamburger, params.Viewport)
	if err != nil {
		return err
	}
	return handle.Click(ctx)
}

func scrollSummaryTo(offset float64) func(ctx context.Context, pg *browser.Page, params scenario.Params) error {
	return func(ctx context.Context, pg *browser.Page, _ scenario.Params) error {
		return pg.ScrollTo(ctx, summarySel, offset)
	}
}

// AddFeedAccepted submits a URL the application accepts. The outcome
// banner must show the fixture's expected message and the sidebar's
// feed count must grow.
func AddFeedAccepted() scenario.Scenario {
	return scenario.New("add feed accepted").
		Navigate("/").
		Do("open drawer if needed", ensureDrawerOpen).
		Snapshot("before", FeedCountProbes()...).
		Fill(AddFeedInput, "{url}").
		Click(AddFeedButton).
		Do("open drawer if needed", ensureDrawerOpen).
		AssertTextContains(FeedMessage, "{expect}").
		Snapshot("after", FeedCountProbes()...).
		AssertDiff("before", "after",
			scenario.Expect("feed-count", scenario.MustChange()),
		).
		Build()
}

// AddFeedRejected submits a URL the application rejects. The outcome
// banner must show the expected message and the feed count must not
// move.
func AddFeedRejected() scenario.Scenario {
	return scenario.New("add feed rejected").
		Navigate("/").
		Do("open drawer if needed", ensureDrawerOpen).
		Snapshot("before", FeedCountProbes()...).
		Fill(AddFeedInput, "{url}").
		Click(AddFeedButton).
		Do("open drawer if needed", ensureDrawerOpen).
		AssertTextContains(FeedMessage, "{expect}").
		Snapshot("after", FeedCountProbes()...).
		AssertDiff("before", "after",
			scenario.Expect("feed-count", scenario.MustNotChange()),
		).
		Build()
}

// ReadTransition opens the first article and returns. The unread dot's
// classes and the title weight must change; the row height must not,
// or the list would visibly jump.
func ReadTransition() scenario.Scenario {
	return scenario.New("read transition").
		Navigate("/?unread=0").
		Snapshot("before", ReadTransitionProbes()...).
		ClickNoSettle(FirstItem).
		ClickNoSettle(BackLink).
		WaitSettled().
		Snapshot("after", ReadTransitionProbes()...).
		AssertDiff("before", "after",
			scenario.Expect("dot-classes", scenario.MustChange()),
			scenario.Expect("title-weight", scenario.Becomes(probe.StrValue("400"))),
			scenario.Expect("item-height", scenario.MustNotChange()),
		).
		Build()
}

// ScrollRestoration scrolls the list, reads an article that is in
// view at that offset, and returns. The offset must come back within
// the restoration tolerance.
func ScrollRestoration() scenario.Scenario {
	return scenario.New("scroll restoration").
		Navigate("/?unread=0").
		Do("scroll the list", scrollSummaryTo(400)).
		Snapshot("before", ScrollProbes()...).
		ClickNoSettle(ItemAt(6)).
		ClickNoSettle(BackLink).
		WaitSettled().
		Snapshot("after", ScrollProbes()...).
		AssertDiff("before", "after",
			scenario.Expect("list-scroll", scenario.MustNotChangeWithin(50)),
		).
		Build()
}

// ViewportSwitch resizes the live page across the layout boundary and
// requires that exactly one layout's controls are visible on each
// side of it.
func ViewportSwitch() scenario.Scenario {
	return scenario.New("viewport switch").
		Navigate("/").
		Resize(viewport.Desktop).
		AssertVisibleCount(Sidebar, 1).
		AssertVisibleCount(Hamburger, 0).
		Resize(viewport.Mobile).
		AssertVisibleCount(Hamburger, 1).
		AssertVisibleCount(Sidebar, 0).
		Do("open drawer", ensureDrawerOpen).
		AssertVisibleCount(Sidebar, 1).
		AssertVisibleCount(AddFeedInput, 1).
		Build()
}

// Entry binds one scenario to the parameter matrix it runs under.
type Entry struct {
	Scenario scenario.Scenario
	Classes  []viewport.Class
	Fixtures []scenario.Fixture
}

// Suite is the full canonical suite.
func Suite() []Entry {
	both := []viewport.Class{viewport.Mobile, viewport.Desktop}
	return []Entry{
		{
			Scenario: AddFeedAccepted(),
			Classes:  both,
			Fixtures: []scenario.Fixture{
				{Name: "success", Values: map[string]string{
					"url":    "https://fresh.example.net/atom.xml",
					"expect": fixture.MsgAdded,
				}},
				{Name: "partial-failure", Values: map[string]string{
					"url":    "https://partial.example.net/feed",
					"expect": fixture.MsgPartialFailure,
				}},
			},
		},
		{
			Scenario: AddFeedRejected(),
			Classes:  both,
			Fixtures: []scenario.Fixture{
				{Name: "empty-url", Values: map[string]string{
					"url":    "",
					"expect": fixture.MsgEmptyURL,
				}},
				{Name: "duplicate", Values: map[string]string{
					"url":    "https://news.example.com/rss.xml",
					"expect": fixture.MsgDuplicate,
				}},
				{Name: "invalid", Values: map[string]string{
					"url":    "https://invalid.example.net/nope",
					"expect": fixture.MsgAddFailed,
				}},
			},
		},
		{Scenario: ReadTransition(), Classes: both},
		{Scenario: ScrollRestoration(), Classes: both},
		{Scenario: ViewportSwitch(), Classes: []viewport.Class{viewport.Desktop}},
	}
}
