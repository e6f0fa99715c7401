// Package probe captures structured snapshots of UI state and computes
// diffs between them. A probe names one observable fact (visibility,
// scroll offset, class list, computed style, attribute, match count);
// a snapshot is an ordered, immutable capture of a probe set at one
// point in time. The comparator itself never fails: it reports facts,
// and the caller decides which diff entries constitute a test failure.
package probe

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Kind identifies what a probe observes.
type Kind int

const (
	// Visible reports whether the first match is currently visible.
	Visible Kind = iota
	// Exists reports whether at least one match is in the document.
	Exists
	// Text captures the first match's visible text.
	Text
	// ClassList captures the first match's class attribute.
	ClassList
	// Attribute captures a named attribute of the first match; the
	// attribute name goes in Spec.Arg.
	Attribute
	// Style captures a computed style property of the first match; the
	// property name goes in Spec.Arg.
	Style
	// ScrollTop captures the first match's vertical scroll offset.
	ScrollTop
	// Count captures the number of document matches.
	Count
)

func (k Kind) String() string {
	switch k {
	case Visible:
		return "visible"
	case Exists:
		return "exists"
	case Text:
		return "text"
	case ClassList:
		return "class-list"
	case Attribute:
		return "attribute"
	case Style:
		return "style"
	case ScrollTop:
		return "scroll-top"
	case Count:
		return "count"
	default:
		return fmt.Sprintf("probe.Kind(%d)", int(k))
	}
}

// numeric reports whether values of this kind compare with a tolerance.
func (k Kind) numeric() bool {
	return k == ScrollTop || k == Count
}

// Spec describes a single named probe.
type Spec struct {
	// Name identifies the probe within a snapshot. Must be unique in a
	// probe set.
	Name string
	// Selector locates the probed element(s).
	Selector string
	// Kind selects what to observe.
	Kind Kind
	// Arg carries the attribute name for Attribute probes and the
	// property name for Style probes.
	Arg string
}

func (s Spec) String() string {
	if s.Arg != "" {
		return fmt.Sprintf("%s[%s %s(%s)]", s.Name, s.Selector, s.Kind, s.Arg)
	}
	return fmt.Sprintf("%s[%s %s]", s.Name, s.Selector, s.Kind)
}

// CountMatches counts selector matches within an HTML document or
// fragment. Used for Count probes, which do not need a live DOM query:
// counting over captured HTML keeps the probe cheap and lets the same
// logic run against diagnostic captures.
func CountMatches(html, selector string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("probe: parsing HTML for count: %w", err)
	}
	return doc.Find(selector).Length(), nil
}
