package probe

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestRenderDiffGolden(t *testing.T) {
	target := &fakeTarget{values: map[string]Value{
		"blue-dot-visible": BoolValue(true),
		"title-weight":     StrValue("700"),
		"item-height":      StrValue("88px"),
		"list-scroll":      NumValue(412),
	}}
	before, err := Capture(context.Background(), target, readTransitionSpecs)
	require.NoError(t, err)

	target.values["blue-dot-visible"] = BoolValue(false)
	target.values["title-weight"] = StrValue("400")
	target.values["list-scroll"] = NumValue(412.4) // within tolerance
	after, err := Capture(context.Background(), target, readTransitionSpecs)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "read_transition_diff", []byte(RenderDiff(Diff(before, after))))
}

func TestRenderSnapshotGolden(t *testing.T) {
	target := &fakeTarget{values: map[string]Value{
		"blue-dot-visible": BoolValue(true),
		"title-weight":     StrValue("700"),
		"list-scroll":      NumValue(412),
	}}
	snap, err := Capture(context.Background(), target, readTransitionSpecs)
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "read_transition_snapshot", []byte(snap.Render()))
}
