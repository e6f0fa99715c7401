package diagnostics

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/lightforgemedia/go-uiharness/pkg/probe"
)

// ArtifactKind classifies a diagnostic capture.
type ArtifactKind string

const (
	ArtifactScreenshot ArtifactKind = "screenshot"
	ArtifactStateDump  ArtifactKind = "state-dump"
)

// Artifact is one file written while diagnosing a failure.
type Artifact struct {
	Kind ArtifactKind
	Path string
	Note string
}

// Page is the surface the capturer needs from the browser layer.
type Page interface {
	URL(ctx context.Context) (string, error)
	Screenshot(path string) error
	HTML(ctx context.Context) (string, error)
}

// Capturer writes failure artifacts into a directory.
type Capturer struct {
	dir    string
	logger *slog.Logger
}

// NewCapturer creates a capturer writing into dir, creating it if
// needed.
func NewCapturer(dir string, logger *slog.Logger) (*Capturer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("diagnostics: creating artifacts dir: %w", err)
	}
	return &Capturer{dir: dir, logger: logger}, nil
}

// Capture writes a screenshot and a state dump (page URL, snapshot
// render, DOM summary, console tail) for a failed scenario step. Each
// artifact is best-effort: a capture that partially fails still
// returns whatever was written, since this only ever runs on a path
// that is already failing.
func (c *Capturer) Capture(ctx context.Context, label string, page Page, snap *probe.Snapshot, collector *Collector) []Artifact {
	id := uuid.NewString()[:8]
	var artifacts []Artifact

	shotPath := filepath.Join(c.dir, fmt.Sprintf("%s-%s.png", label, id))
	if err := page.Screenshot(shotPath); err != nil {
		c.logger.Warn("diagnostics: screenshot failed", "label", label, "error", err)
	} else {
		artifacts = append(artifacts, Artifact{Kind: ArtifactScreenshot, Path: shotPath, Note: "screenshot at failure"})
	}

	var b strings.Builder
	if url, err := page.URL(ctx); err == nil {
		fmt.Fprintf(&b, "url: %s\n", url)
	} else {
		fmt.Fprintf(&b, "url: unavailable: %v\n", err)
	}
	if snap != nil {
		b.WriteString("\n-- state snapshot --\n")
		b.WriteString(snap.Render())
	}
	if html, err := page.HTML(ctx); err == nil {
		b.WriteString("\n-- dom summary --\n")
		b.WriteString(SummarizeHTML(html))
		b.WriteByte('\n')
	}
	if collector != nil {
		entries := collector.Recent()
		if len(entries) > 0 {
			b.WriteString("\n-- recent browser events --\n")
			for _, e := range entries {
				fmt.Fprintf(&b, "[%s] %s %s\n", e.Time.Format("15:04:05.000"), e.Topic, e.Text)
			}
		}
	}

	dumpPath := filepath.Join(c.dir, fmt.Sprintf("%s-%s.txt", label, id))
	if err := os.WriteFile(dumpPath, []byte(b.String()), 0o644); err != nil {
		c.logger.Warn("diagnostics: state dump failed", "label", label, "error", err)
	} else {
		artifacts = append(artifacts, Artifact{Kind: ArtifactStateDump, Path: dumpPath, Note: "url, snapshot, dom summary, console tail"})
	}

	return artifacts
}

// SummarizeHTML condenses a page into a few report-friendly lines:
// title, body classes, and counts of landmark elements.
func SummarizeHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Sprintf("unparseable HTML: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "title: %s\n", strings.TrimSpace(doc.Find("title").First().Text()))
	if class, ok := doc.Find("body").Attr("class"); ok && class != "" {
		fmt.Fprintf(&b, "body class: %s\n", class)
	}
	for _, sel := range []string{"form", "a", "li", "[id]"} {
		fmt.Fprintf(&b, "%s: %d\n", sel, doc.Find(sel).Length())
	}
	return strings.TrimRight(b.String(), "\n")
}
