package probe

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Entry is one pairwise comparison in a diff.
type Entry struct {
	Probe   string
	Before  Value
	After   Value
	Changed bool
}

func (e Entry) String() string {
	marker := " "
	if e.Changed {
		marker = "~"
	}
	return fmt.Sprintf("%s %-32s %s -> %s", marker, e.Probe, e.Before, e.After)
}

// Diff compares two snapshots pairwise, preserving the probe order of
// the before snapshot. Probes present in only one snapshot compare
// against Absent. Numeric probes compare within NumericTolerance to
// absorb sub-pixel rendering noise; string and boolean probes compare
// exactly. Diff is pure: it reports facts and never fails.
func Diff(before, after *Snapshot) []Entry {
	entries := make([]Entry, 0, before.Len())
	seen := make(map[string]struct{}, before.Len())

	for _, name := range before.order {
		seen[name] = struct{}{}
		b := before.values[name]
		a, ok := after.values[name]
		if !ok {
			a = Absent
		}
		entries = append(entries, Entry{
			Probe:   name,
			Before:  b,
			After:   a,
			Changed: !valuesEqual(before, after, name, b, a),
		})
	}

	for _, name := range after.order {
		if _, dup := seen[name]; dup {
			continue
		}
		a := after.values[name]
		entries = append(entries, Entry{
			Probe:   name,
			Before:  Absent,
			After:   a,
			Changed: !a.IsAbsent(),
		})
	}
	return entries
}

// valuesEqual picks the comparison for a probe by its kind: numeric
// kinds and style dimensions compare within NumericTolerance,
// everything else exactly.
func valuesEqual(before, after *Snapshot, name string, b, a Value) bool {
	spec, ok := before.specs[name]
	if !ok {
		spec, ok = after.specs[name]
	}
	switch {
	case !ok:
		return b.Equal(a, 0)
	case spec.Kind.numeric():
		return b.Equal(a, NumericTolerance)
	case spec.Kind == Style:
		return styleEqual(b, a)
	default:
		return b.Equal(a, 0)
	}
}

// styleEqual compares computed style strings. Dimension values
// ("88.4px", "400") compare numerically within NumericTolerance when
// their units match, absorbing sub-pixel layout jitter; keyword values
// and mismatched units compare exactly.
func styleEqual(b, a Value) bool {
	if b.typ == strValue && a.typ == strValue {
		bn, bu, bok := splitDimension(b.s)
		an, au, aok := splitDimension(a.s)
		if bok && aok && bu == au {
			return math.Abs(bn-an) <= NumericTolerance
		}
	}
	return b.Equal(a, 0)
}

// splitDimension parses a CSS dimension into its number and unit.
func splitDimension(s string) (float64, string, bool) {
	i := 0
	for i < len(s) && (s[i] == '-' || s[i] == '+' || s[i] == '.' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}
	if i == 0 {
		return 0, "", false
	}
	n, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, "", false
	}
	return n, s[i:], true
}

// Changed filters a diff down to the entries that changed.
func Changed(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Changed {
			out = append(out, e)
		}
	}
	return out
}

// RenderDiff writes a diff as a stable text table. Changed entries are
// prefixed with "~".
func RenderDiff(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}
