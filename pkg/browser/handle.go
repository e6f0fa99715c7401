package browser

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// Handle is a resolved, visible element. It implements locator.Handle.
type Handle struct {
	el       *rod.Element
	selector string
	opts     Options
}

// Selector returns the selector the handle was resolved from.
func (h *Handle) Selector() string { return h.selector }

// Click scrolls the element into view and clicks it.
func (h *Handle) Click(ctx context.Context) error {
	el := h.el.Context(ctx).Timeout(h.opts.ActionTimeout)
	if err := el.ScrollIntoView(); err != nil {
		return infra(err, "browser: scrolling %q into view", h.selector)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return infra(err, "browser: clicking %q", h.selector)
	}
	return nil
}

// Input clears the element and types text into it. An empty text
// leaves the element cleared, which the add-feed validation scenarios
// rely on.
func (h *Handle) Input(ctx context.Context, text string) error {
	el := h.el.Context(ctx).Timeout(h.opts.ActionTimeout)
	if err := el.SelectAllText(); err != nil {
		return infra(err, "browser: selecting text in %q", h.selector)
	}
	if text == "" {
		if err := el.Type(input.Backspace); err != nil {
			return infra(err, "browser: clearing %q", h.selector)
		}
		return nil
	}
	if err := el.Input(text); err != nil {
		return infra(err, "browser: typing into %q", h.selector)
	}
	return nil
}

// Text returns the element's visible text.
func (h *Handle) Text(ctx context.Context) (string, error) {
	text, err := h.el.Context(ctx).Timeout(h.opts.ActionTimeout).Text()
	if err != nil {
		return "", infra(err, "browser: reading text of %q", h.selector)
	}
	return text, nil
}
