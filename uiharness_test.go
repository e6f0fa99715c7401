package uiharness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())
	assert.Equal(t, 100*time.Millisecond, p.InitialDelay)
}

func TestAwaitThroughFacade(t *testing.T) {
	calls := 0
	cond := conditionFunc(func(ctx context.Context) (bool, error) {
		calls++
		return calls >= 2, nil
	})

	p := DefaultPolicy()
	p.InitialDelay = time.Millisecond
	res, err := Await(context.Background(), "two evaluations", cond, p)
	require.NoError(t, err)
	assert.True(t, res.Satisfied)
	assert.Equal(t, 2, res.Attempts)
}

type conditionFunc func(ctx context.Context) (bool, error)

func (f conditionFunc) Eval(ctx context.Context) (bool, error) { return f(ctx) }

func TestElementConstructors(t *testing.T) {
	elem := Element("sidebar",
		On("#mobile-sidebar", Mobile),
		On("#desktop-feeds-content", Desktop),
		Any("aside"),
	)
	require.Len(t, elem.Candidates, 3)
	assert.Equal(t, "sidebar", elem.Name)
	assert.Empty(t, elem.Candidates[2].Viewports)
}

func TestNewRunnerRequiresOptions(t *testing.T) {
	_, err := NewRunner(RunnerOptions{})
	assert.Error(t, err)
}

func TestVerdictConstants(t *testing.T) {
	assert.True(t, Passed.Terminal())
	assert.True(t, Failed.Terminal())
	assert.True(t, Errored.Terminal())
}
