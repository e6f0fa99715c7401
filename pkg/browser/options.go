package browser

import (
	"errors"
	"log/slog"
	"time"

	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

const (
	defaultNavigationTimeout = 15 * time.Second
	defaultActionTimeout     = 5 * time.Second
)

// Options contains configuration values for creating a Browser.
// All fields have reasonable defaults provided by DefaultOptions().
type Options struct {
	// Headless controls whether the browser runs without a window.
	// Defaults to true.
	Headless bool

	// Logger for structured logging. Defaults to slog.Default().
	Logger *slog.Logger

	// NavigationTimeout bounds every page navigation. Must be
	// positive. Defaults to 15 seconds.
	NavigationTimeout time.Duration

	// ActionTimeout bounds element interactions (click, input) and
	// single probe evaluations. Must be positive. Defaults to 5
	// seconds.
	ActionTimeout time.Duration

	// SettleWait is the pause applied after a viewport change before
	// elements are re-queried. Defaults to viewport.SettleWait.
	SettleWait time.Duration
}

// DefaultOptions returns an Options struct populated with library
// defaults.
func DefaultOptions() Options {
	return Options{
		Headless:          true,
		Logger:            slog.Default(),
		NavigationTimeout: defaultNavigationTimeout,
		ActionTimeout:     defaultActionTimeout,
		SettleWait:        viewport.SettleWait,
	}
}

func validateOptions(opts Options) error {
	if opts.NavigationTimeout <= 0 {
		return errors.New("browser: NavigationTimeout must be positive")
	}
	if opts.ActionTimeout <= 0 {
		return errors.New("browser: ActionTimeout must be positive")
	}
	if opts.SettleWait < 0 {
		return errors.New("browser: SettleWait must not be negative")
	}
	return nil
}

// Option configures a Browser beyond the Options struct.
type Option func(*Options)

// WithHeadless configures whether the browser runs headless.
func WithHeadless(headless bool) Option {
	return func(o *Options) { o.Headless = headless }
}

// WithLogger sets a custom logging implementation.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithNavigationTimeout bounds page navigations.
func WithNavigationTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.NavigationTimeout = d
		}
	}
}

// WithActionTimeout bounds element interactions.
func WithActionTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.ActionTimeout = d
		}
	}
}

// WithSettleWait sets the post-viewport-change settle pause.
func WithSettleWait(d time.Duration) Option {
	return func(o *Options) {
		if d >= 0 {
			o.SettleWait = d
		}
	}
}
