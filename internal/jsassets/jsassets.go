// Package jsassets embeds the JavaScript injected into pages under
// test and serves it minified.
package jsassets

import (
	_ "embed"
	"sync"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/js"
)

//go:embed tracker.js
var trackerSrc string

var (
	trackerOnce sync.Once
	trackerMin  string
)

// Tracker returns the settle-tracker script, minified once on first
// use. Falls back to the unminified source if minification fails; the
// script is valid either way.
func Tracker() string {
	trackerOnce.Do(func() {
		m := minify.New()
		m.AddFunc("application/javascript", js.Minify)
		out, err := m.String("application/javascript", trackerSrc)
		if err != nil {
			trackerMin = trackerSrc
			return
		}
		trackerMin = out
	})
	return trackerMin
}

// TrackerSource returns the unminified script for debugging.
func TrackerSource() string {
	return trackerSrc
}
