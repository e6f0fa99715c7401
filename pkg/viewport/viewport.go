// Package viewport classifies browser viewports as mobile or desktop.
// The application under test switches layouts at a CSS media-query
// threshold, so exactly one class is active for any given width.
package viewport

import (
	"fmt"
	"time"
)

// DefaultThreshold is the width in CSS pixels at which the layout
// switches from mobile to desktop (min-width: 1024px).
const DefaultThreshold = 1024

// SettleWait is the pause applied after a viewport change before
// elements are re-queried. Layout changes are asynchronous: CSS
// transitions and re-renders lag the resize event.
const SettleWait = 250 * time.Millisecond

// Class is the rendering mode of the page.
type Class int

const (
	Mobile Class = iota
	Desktop
)

func (c Class) String() string {
	switch c {
	case Mobile:
		return "mobile"
	case Desktop:
		return "desktop"
	default:
		return fmt.Sprintf("viewport.Class(%d)", int(c))
	}
}

// Matches reports whether the class is the one active at width.
func (c Class) Matches(width int) bool { return Classify(width) == c }

// Classify returns the class active at the given viewport width.
func Classify(width int) Class {
	if width >= DefaultThreshold {
		return Desktop
	}
	return Mobile
}

// Size is a viewport size in CSS pixels.
type Size struct {
	Width  int
	Height int
}

// Class returns the viewport class the size renders as.
func (s Size) Class() Class { return Classify(s.Width) }

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// Standard test viewports. MobileSize matches an iPhone 12 Pro;
// the Alt sizes exist for compatibility with older fixtures.
var (
	MobileSize     = Size{Width: 390, Height: 844}
	MobileSizeAlt  = Size{Width: 375, Height: 667}
	DesktopSize    = Size{Width: 1400, Height: 900}
	DesktopSizeAlt = Size{Width: 1200, Height: 800}
)

// SizeFor returns the standard size for a class.
func SizeFor(c Class) Size {
	if c == Desktop {
		return DesktopSize
	}
	return MobileSize
}
