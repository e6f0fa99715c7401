package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lightforgemedia/go-uiharness/pkg/poll"
	"github.com/lightforgemedia/go-uiharness/pkg/scenario"
	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

// config is the YAML suite configuration. Flags override file values.
type config struct {
	// BaseURL of the application under test.
	BaseURL string `yaml:"base_url"`

	// Headless controls browser visibility. Defaults to true.
	Headless *bool `yaml:"headless"`

	// ArtifactsDir receives failure screenshots and state dumps.
	ArtifactsDir string `yaml:"artifacts_dir"`

	// Poll overrides the default wait policy. Zero fields keep their
	// defaults.
	Poll pollConfig `yaml:"poll"`

	// Viewports restricts runs to the named classes ("mobile",
	// "desktop"). Empty keeps each scenario's own matrix.
	Viewports []string `yaml:"viewports"`

	// Scenarios filters the suite to the named scenarios. Empty runs
	// everything.
	Scenarios []string `yaml:"scenarios"`

	// AddFeedFixtures replaces the built-in add-feed rows. Rows are
	// split onto the accepted/rejected scenario by their Accepted flag.
	AddFeedFixtures []fixtureRow `yaml:"add_feed_fixtures"`

	// WatchPaths are rerun triggers for watch mode.
	WatchPaths []string `yaml:"watch_paths"`
}

type pollConfig struct {
	InitialDelay      duration `yaml:"initial_delay"`
	BackoffMultiplier float64  `yaml:"backoff_multiplier"`
	MaxDelay          duration `yaml:"max_delay"`
	MaxAttempts       int      `yaml:"max_attempts"`
	MaxDuration       duration `yaml:"max_duration"`
}

// duration decodes Go duration strings ("500ms", "3s") from YAML.
type duration time.Duration

func (d *duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = duration(parsed)
	return nil
}

type fixtureRow struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Expect   string `yaml:"expect"`
	Accepted bool   `yaml:"accepted"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// policy merges the config over the default wait policy.
func (c config) policy() poll.Policy {
	p := poll.DefaultPolicy()
	if c.Poll.InitialDelay > 0 {
		p.InitialDelay = time.Duration(c.Poll.InitialDelay)
	}
	if c.Poll.BackoffMultiplier > 0 {
		p.BackoffMultiplier = c.Poll.BackoffMultiplier
	}
	if c.Poll.MaxDelay > 0 {
		p.MaxDelay = time.Duration(c.Poll.MaxDelay)
	}
	if c.Poll.MaxAttempts > 0 {
		p.MaxAttempts = c.Poll.MaxAttempts
	}
	if c.Poll.MaxDuration > 0 {
		p.MaxDuration = time.Duration(c.Poll.MaxDuration)
	}
	return p
}

// wantScenario reports whether the filter admits the named scenario.
func (c config) wantScenario(name string) bool {
	if len(c.Scenarios) == 0 {
		return true
	}
	for _, s := range c.Scenarios {
		if s == name {
			return true
		}
	}
	return false
}

// filterClasses intersects a scenario's viewport classes with the
// config's filter.
func (c config) filterClasses(classes []viewport.Class) ([]viewport.Class, error) {
	if len(c.Viewports) == 0 {
		return classes, nil
	}
	want := make(map[viewport.Class]bool, len(c.Viewports))
	for _, name := range c.Viewports {
		switch name {
		case "mobile":
			want[viewport.Mobile] = true
		case "desktop":
			want[viewport.Desktop] = true
		default:
			return nil, fmt.Errorf("unknown viewport %q (want mobile or desktop)", name)
		}
	}
	var out []viewport.Class
	for _, class := range classes {
		if want[class] {
			out = append(out, class)
		}
	}
	return out, nil
}

// addFeedFixtures returns the configured rows for the accepted or
// rejected add-feed scenario, or nil to keep the built-in rows.
func (c config) addFeedFixtures(accepted bool) []scenario.Fixture {
	var out []scenario.Fixture
	for _, row := range c.AddFeedFixtures {
		if row.Accepted != accepted {
			continue
		}
		out = append(out, scenario.Fixture{
			Name:   row.Name,
			Values: map[string]string{"url": row.URL, "expect": row.Expect},
		})
	}
	return out
}
