package jsassets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerIsMinified(t *testing.T) {
	min := Tracker()
	src := TrackerSource()

	assert.NotEmpty(t, min)
	assert.Less(t, len(min), len(src))
	assert.NotContains(t, min, "// Settle tracker")
}

func TestTrackerExposesHooks(t *testing.T) {
	min := Tracker()
	for _, hook := range []string{"__uiharness", "__uiharnessIdle", "__uiharnessState", "htmx:oobAfterSwap"} {
		assert.True(t, strings.Contains(min, hook), "minified tracker must keep %s", hook)
	}
}
