package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightforgemedia/go-uiharness/pkg/viewport"
)

const sampleConfig = `
base_url: http://127.0.0.1:8080
headless: false
artifacts_dir: out
poll:
  initial_delay: 50ms
  max_delay: 2s
  max_duration: 10s
viewports: [mobile]
scenarios: [read transition]
add_feed_fixtures:
  - name: custom-success
    url: https://example.com/feed.xml
    expect: Feed added successfully
    accepted: true
  - name: custom-bad
    url: https://invalid.example.com/x
    expect: "Failed to add feed: "
watch_paths: [suite.yaml]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.BaseURL)
	require.NotNil(t, cfg.Headless)
	assert.False(t, *cfg.Headless)
	assert.Equal(t, "out", cfg.ArtifactsDir)
	assert.Equal(t, []string{"suite.yaml"}, cfg.WatchPaths)

	p := cfg.policy()
	require.NoError(t, p.Validate())
	assert.Equal(t, 50*time.Millisecond, p.InitialDelay)
	assert.Equal(t, 2*time.Second, p.MaxDelay)
	assert.Equal(t, 10*time.Second, p.MaxDuration)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.BaseURL)
	require.NoError(t, cfg.policy().Validate(), "defaults apply without a file")
}

func TestLoadConfigBadDuration(t *testing.T) {
	_, err := loadConfig(writeConfig(t, "poll:\n  initial_delay: soon\n"))
	assert.Error(t, err)
}

func TestScenarioFilter(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.True(t, cfg.wantScenario("read transition"))
	assert.False(t, cfg.wantScenario("viewport switch"))

	var unfiltered config
	assert.True(t, unfiltered.wantScenario("anything"))
}

func TestViewportFilter(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	classes, err := cfg.filterClasses([]viewport.Class{viewport.Mobile, viewport.Desktop})
	require.NoError(t, err)
	assert.Equal(t, []viewport.Class{viewport.Mobile}, classes)

	_, err = config{Viewports: []string{"tablet"}}.filterClasses([]viewport.Class{viewport.Mobile})
	assert.Error(t, err)
}

func TestAddFeedFixtureOverrides(t *testing.T) {
	cfg, err := loadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	accepted := cfg.addFeedFixtures(true)
	require.Len(t, accepted, 1)
	assert.Equal(t, "custom-success", accepted[0].Name)
	assert.Equal(t, "https://example.com/feed.xml", accepted[0].Values["url"])

	rejected := cfg.addFeedFixtures(false)
	require.Len(t, rejected, 1)
	assert.Equal(t, "custom-bad", rejected[0].Name)

	var none config
	assert.Nil(t, none.addFeedFixtures(true), "no overrides keeps the built-in rows")
}
