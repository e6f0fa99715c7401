package reader

import "github.com/lightforgemedia/go-uiharness/pkg/probe"

const (
	firstItemSel = "li[data-testid='feed-item']:first-child"
	summarySel   = "#summary"
	feedListSel  = "#feeds .feed-entry"
)

// FeedCountProbes observes the subscription list. The count is taken
// from the desktop subtree's list; both subtrees render the same
// session state, so one is enough.
func FeedCountProbes() []probe.Spec {
	return []probe.Spec{
		{Name: "feed-count", Selector: feedListSel, Kind: probe.Count},
	}
}

// ReadTransitionProbes observes the first list item around a
// read-state change: the unread dot's classes, the title weight, the
// row height, and the list's scroll offset.
func ReadTransitionProbes() []probe.Spec {
	return []probe.Spec{
		{Name: "dot-classes", Selector: firstItemSel + " .unread-dot", Kind: probe.ClassList},
		{Name: "title-weight", Selector: firstItemSel + " .item-title", Kind: probe.Style, Arg: "font-weight"},
		{Name: "item-height", Selector: firstItemSel, Kind: probe.Style, Arg: "height"},
		{Name: "list-scroll", Selector: summarySel, Kind: probe.ScrollTop},
	}
}

// ScrollProbes observes only the summary list's scroll offset.
func ScrollProbes() []probe.Spec {
	return []probe.Spec{
		{Name: "list-scroll", Selector: summarySel, Kind: probe.ScrollTop},
	}
}
