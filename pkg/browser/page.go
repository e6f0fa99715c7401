package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/lightforgemedia/go-uiharness/internal/jsassets"
	"github.com/lightforgemedia/go-uiharness/pkg/diagnostics"
	"github.com/lightforgemedia/go-uiharness/pkg/locator"
	"github.com/lightforgemedia/go-uiharness/pkg/probe"
	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

// Page wraps one browser tab. It implements locator.Page,
// probe.Target, htmx.Evaluator, and diagnostics.Page.
type Page struct {
	opts Options
	page *rod.Page
	bus  *diagnostics.Bus
	size viewport.Size
}

// OpenPage creates a page in the session and navigates it to url. The
// settle-tracker script is installed before the first navigation so it
// observes every request the page makes. The default viewport is
// desktop; use SetViewport to switch.
func (s *Session) OpenPage(ctx context.Context, url string) (*Page, error) {
	pg, err := s.incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, infra(err, "browser: opening page")
	}

	p := &Page{opts: s.opts, page: pg, bus: s.bus, size: viewport.DesktopSize}
	s.pages = append(s.pages, p)

	if _, err := pg.EvalOnNewDocument(jsassets.Tracker()); err != nil {
		return nil, infra(err, "browser: installing settle tracker")
	}
	p.watchEvents()

	if err := p.applyViewport(p.size); err != nil {
		return nil, err
	}
	if err := p.Navigate(ctx, url); err != nil {
		return nil, err
	}
	return p, nil
}

// watchEvents forwards console and network activity to the session
// bus. The stream is buffered there and only ever read when a failure
// is being diagnosed.
func (p *Page) watchEvents() {
	go p.page.EachEvent(func(e *proto.RuntimeConsoleAPICalled) {
		p.bus.Publish(diagnostics.TopicConsole, fmt.Sprintf("%s %s", e.Type, consoleText(e.Args)))
	}, func(e *proto.NetworkResponseReceived) {
		p.bus.Publish(diagnostics.TopicNetwork, fmt.Sprintf("%d %s", e.Response.Status, e.Response.URL))
	})()
}

func consoleText(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if arg.Value.Val() != nil {
			parts = append(parts, arg.Value.String())
			continue
		}
		parts = append(parts, arg.Description)
	}
	return strings.Join(parts, " ")
}

// Navigate loads a URL and waits for the load event, bounded by the
// navigation timeout.
func (p *Page) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx).Timeout(p.opts.NavigationTimeout)
	if err := pg.Navigate(url); err != nil {
		return infra(err, "browser: navigating to %s", url)
	}
	if err := pg.WaitLoad(); err != nil {
		return infra(err, "browser: waiting for load of %s", url)
	}
	return nil
}

// SetViewport resizes the page and waits for the layout to settle.
// Layout changes are asynchronous; querying elements immediately after
// a resize races the re-render.
func (p *Page) SetViewport(ctx context.Context, size viewport.Size) error {
	if err := p.applyViewport(size); err != nil {
		return err
	}
	p.size = size
	if p.opts.SettleWait > 0 {
		timer := time.NewTimer(p.opts.SettleWait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

func (p *Page) applyViewport(size viewport.Size) error {
	err := p.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             size.Width,
		Height:            size.Height,
		DeviceScaleFactor: 1,
		Mobile:            size.Class() == viewport.Mobile,
	})
	if err != nil {
		return infra(err, "browser: setting viewport %s", size)
	}
	return nil
}

// Viewport returns the page's current viewport size.
func (p *Page) Viewport() viewport.Size { return p.size }

// VisibleHandles implements locator.Page: all currently visible
// matches of the selector, not merely present ones.
func (p *Page) VisibleHandles(ctx context.Context, selector string) ([]locator.Handle, error) {
	els, err := p.page.Context(ctx).Timeout(p.opts.ActionTimeout).Elements(selector)
	if err != nil {
		return nil, infra(err, "browser: querying %q", selector)
	}
	var handles []locator.Handle
	for _, el := range els {
		visible, err := el.Visible()
		if err != nil {
			return nil, infra(err, "browser: checking visibility of %q", selector)
		}
		if visible {
			handles = append(handles, &Handle{el: el, selector: selector, opts: p.opts})
		}
	}
	return handles, nil
}

// ProbeValue implements probe.Target. A missing element records the
// Absent sentinel; errors are reserved for the page itself failing.
func (p *Page) ProbeValue(ctx context.Context, spec probe.Spec) (probe.Value, error) {
	pg := p.page.Context(ctx).Timeout(p.opts.ActionTimeout)

	switch spec.Kind {
	case probe.Count:
		html, err := pg.HTML()
		if err != nil {
			return probe.Value{}, infra(err, "browser: reading HTML for count probe %q", spec.Name)
		}
		n, err := probe.CountMatches(html, spec.Selector)
		if err != nil {
			return probe.Value{}, err
		}
		return probe.NumValue(float64(n)), nil

	case probe.Exists:
		els, err := pg.Elements(spec.Selector)
		if err != nil {
			return probe.Value{}, infra(err, "browser: querying %q", spec.Selector)
		}
		return probe.BoolValue(len(els) > 0), nil
	}

	els, err := pg.Elements(spec.Selector)
	if err != nil {
		return probe.Value{}, infra(err, "browser: querying %q", spec.Selector)
	}
	if len(els) == 0 {
		return probe.Absent, nil
	}
	el := els.First()

	switch spec.Kind {
	case probe.Visible:
		visible, err := el.Visible()
		if err != nil {
			return probe.Value{}, infra(err, "browser: visibility of %q", spec.Selector)
		}
		return probe.BoolValue(visible), nil

	case probe.Text:
		text, err := el.Text()
		if err != nil {
			return probe.Value{}, infra(err, "browser: text of %q", spec.Selector)
		}
		return probe.StrValue(text), nil

	case probe.ClassList:
		return p.attribute(el, "class", spec)

	case probe.Attribute:
		return p.attribute(el, spec.Arg, spec)

	case probe.Style:
		res, err := el.Eval(`(prop) => getComputedStyle(this).getPropertyValue(prop)`, spec.Arg)
		if err != nil {
			return probe.Value{}, infra(err, "browser: computed style %q of %q", spec.Arg, spec.Selector)
		}
		return probe.StrValue(res.Value.Str()), nil

	case probe.ScrollTop:
		res, err := el.Eval(`() => this.scrollTop`)
		if err != nil {
			return probe.Value{}, infra(err, "browser: scrollTop of %q", spec.Selector)
		}
		return probe.NumValue(res.Value.Num()), nil

	default:
		return probe.Value{}, fmt.Errorf("browser: unsupported probe kind %s", spec.Kind)
	}
}

func (p *Page) attribute(el *rod.Element, name string, spec probe.Spec) (probe.Value, error) {
	attr, err := el.Attribute(name)
	if err != nil {
		return probe.Value{}, infra(err, "browser: attribute %q of %q", name, spec.Selector)
	}
	if attr == nil {
		return probe.StrValue(""), nil
	}
	return probe.StrValue(*attr), nil
}

// EvalBool implements htmx.Evaluator.
func (p *Page) EvalBool(ctx context.Context, expr string) (bool, error) {
	res, err := p.page.Context(ctx).Timeout(p.opts.ActionTimeout).Eval(expr)
	if err != nil {
		return false, infra(err, "browser: evaluating bool expression")
	}
	return res.Value.Bool(), nil
}

// EvalString implements htmx.Evaluator.
func (p *Page) EvalString(ctx context.Context, expr string) (string, error) {
	res, err := p.page.Context(ctx).Timeout(p.opts.ActionTimeout).Eval(expr)
	if err != nil {
		return "", infra(err, "browser: evaluating string expression")
	}
	return res.Value.Str(), nil
}

// ScrollTo sets the vertical scroll offset of the element matching the
// selector.
func (p *Page) ScrollTo(ctx context.Context, selector string, offset float64) error {
	_, err := p.page.Context(ctx).Timeout(p.opts.ActionTimeout).Eval(
		`(sel, y) => { const el = document.querySelector(sel); if (el) el.scrollTop = y; }`, selector, offset)
	if err != nil {
		return infra(err, "browser: scrolling %q to %v", selector, offset)
	}
	return nil
}

// URL implements diagnostics.Page.
func (p *Page) URL(ctx context.Context) (string, error) {
	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", infra(err, "browser: reading page info")
	}
	return info.URL, nil
}

// HTML implements diagnostics.Page.
func (p *Page) HTML(ctx context.Context) (string, error) {
	html, err := p.page.Context(ctx).HTML()
	if err != nil {
		return "", infra(err, "browser: reading page HTML")
	}
	return html, nil
}

// Screenshot implements diagnostics.Page, writing a PNG to path.
func (p *Page) Screenshot(path string) error {
	data, err := p.page.Screenshot(false, nil)
	if err != nil {
		return infra(err, "browser: taking screenshot")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("browser: writing screenshot to %s: %w", path, err)
	}
	return nil
}

func (p *Page) close() {
	if p.page != nil {
		_ = p.page.Close()
		p.page = nil
	}
}
