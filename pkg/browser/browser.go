// Package browser drives a real browser through go-rod and adapts it
// to the interfaces the rest of the harness consumes: locator.Page,
// probe.Target, htmx.Evaluator, diagnostics.Page.
//
// Isolation is structural: every scenario runs in its own Session, an
// incognito browser context with independent cookies and storage, so
// server-side session state (feed subscriptions, read flags) cannot
// leak between concurrently running scenarios.
package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"github.com/lightforgemedia/go-uiharness/pkg/diagnostics"
)

// ErrInfrastructure marks faults in the automation channel itself
// (browser crash, connection refused, target closed) as opposed to
// the application under test misbehaving. Reports separate the two so
// "app is broken" and "test environment is broken" stay distinct.
var ErrInfrastructure = errors.New("browser: infrastructure error")

func infra(err error, format string, args ...any) error {
	return fmt.Errorf(format+": %v: %w", append(args, err, ErrInfrastructure)...)
}

// Browser owns a launched browser process. One Browser serves many
// Sessions; Sessions must not share mutable state with each other.
type Browser struct {
	opts     Options
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// New launches a browser. Additional functional options override the
// struct values, mirroring the Options/Option dual configuration
// pattern used across this library.
func New(opts Options, extra ...Option) (*Browser, error) {
	for _, fn := range extra {
		fn(&opts)
	}
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	l := launcher.New().
		Headless(opts.Headless).
		Delete("disable-extensions")
	if !opts.Headless {
		l.Delete("disable-gpu")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, infra(err, "browser: launching")
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, infra(err, "browser: connecting to %s", controlURL)
	}

	opts.Logger.Debug("browser: launched", "headless", opts.Headless, "control_url", controlURL)
	return &Browser{opts: opts, launcher: l, browser: b}, nil
}

// NewSession opens an isolated incognito context. The caller must
// Close it; closing releases every page opened within it.
func (b *Browser) NewSession(ctx context.Context) (*Session, error) {
	incognito, err := b.browser.Incognito()
	if err != nil {
		return nil, infra(err, "browser: opening incognito context")
	}
	return &Session{
		opts:      b.opts,
		incognito: incognito.Context(ctx),
		bus:       diagnostics.NewBus(),
	}, nil
}

// Close shuts the browser process down. Safe to call after failures.
func (b *Browser) Close() error {
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.launcher.Cleanup()
	b.browser = nil
	if err != nil {
		return infra(err, "browser: closing")
	}
	return nil
}

// Session is one scenario's isolated browser context.
type Session struct {
	opts      Options
	incognito *rod.Browser
	bus       *diagnostics.Bus
	pages     []*Page
}

// Bus returns the session's diagnostic event bus. Console and network
// events from every page in the session are published to it.
func (s *Session) Bus() *diagnostics.Bus { return s.bus }

// Close tears the session down: pages, incognito context, and event
// bus. It runs on every scenario exit path and never depends on the
// scenario having succeeded.
func (s *Session) Close() {
	for _, p := range s.pages {
		p.close()
	}
	s.pages = nil
	if s.incognito != nil {
		_ = s.incognito.Close()
		s.incognito = nil
	}
	s.bus.Close()
}
