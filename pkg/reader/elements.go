// Package reader defines the canonical scenario suite for the feed
// reader application: the logical elements of its two layouts, the
// probe sets its assertions observe, and the scenario bodies that are
// replayed across the viewport/fixture matrix.
package reader

import (
	"github.com/lightforgemedia/go-uiharness/pkg/locator"
	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

// Logical elements of the reader UI. Each names an interaction target
// once; viewport-tagged candidates map it onto the layout subtree the
// current viewport class actually shows.
var (
	// Hamburger opens the navigation drawer. Mobile layout only.
	Hamburger = locator.Element("hamburger button",
		locator.On("#mobile-menu-button", viewport.Mobile),
	)

	// Sidebar is the feed navigation container. On mobile it is the
	// drawer, which is only visible once opened.
	Sidebar = locator.Element("feed sidebar",
		locator.On("#mobile-sidebar", viewport.Mobile),
		locator.On("#desktop-feeds-content", viewport.Desktop),
	)

	// AddFeedInput is the subscription URL field. Both layouts carry
	// one; only the active layout's copy may be visible.
	AddFeedInput = locator.Element("add-feed input",
		locator.On("#mobile-sidebar input[name='new_feed_url']", viewport.Mobile),
		locator.On("#desktop-feeds-content input[name='new_feed_url']", viewport.Desktop),
	)

	// AddFeedButton submits the subscription form.
	AddFeedButton = locator.Element("add-feed button",
		locator.On("#mobile-sidebar button[hx-post='/api/feed/add']", viewport.Mobile),
		locator.On("#desktop-feeds-content button[hx-post='/api/feed/add']", viewport.Desktop),
	)

	// FeedMessage is the outcome banner rendered after a subscription
	// attempt.
	FeedMessage = locator.Element("feed message",
		locator.On("#mobile-sidebar .feed-message", viewport.Mobile),
		locator.On("#desktop-feeds-content .feed-message", viewport.Desktop),
	)

	// FirstItem is the top article link in the summary list.
	FirstItem = locator.Element("first item link",
		locator.Any("li[data-testid='feed-item']:first-child a"),
	)

	// BackLink returns from an article to the summary list.
	BackLink = locator.Element("back link",
		locator.Any("#back-to-list"),
	)

	// UnreadTab and AllTab switch the list filter.
	UnreadTab = locator.Element("unread tab", locator.Any("#tab-unread"))
	AllTab    = locator.Element("all tab", locator.Any("#tab-all"))
)
