package probe

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Target is the read-only surface a capture evaluates probes against.
// Implementations must return Absent (not an error) when the probed
// element is missing; errors are reserved for infrastructure faults.
type Target interface {
	ProbeValue(ctx context.Context, spec Spec) (Value, error)
}

// Snapshot is an ordered, immutable capture of a probe set.
type Snapshot struct {
	takenAt time.Time
	order   []string
	specs   map[string]Spec
	values  map[string]Value
}

// Capture evaluates every spec against the target in the order given.
// A probe whose element is momentarily absent records the Absent
// sentinel rather than aborting the whole capture. An error from the
// target aborts: it indicates the page itself is gone, not the element.
func Capture(ctx context.Context, target Target, specs []Spec) (*Snapshot, error) {
	snap := &Snapshot{
		takenAt: time.Now(),
		order:   make([]string, 0, len(specs)),
		specs:   make(map[string]Spec, len(specs)),
		values:  make(map[string]Value, len(specs)),
	}
	for _, spec := range specs {
		if _, dup := snap.values[spec.Name]; dup {
			return nil, fmt.Errorf("probe: duplicate probe name %q in capture set", spec.Name)
		}
		val, err := target.ProbeValue(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("probe: capturing %s: %w", spec, err)
		}
		snap.order = append(snap.order, spec.Name)
		snap.specs[spec.Name] = spec
		snap.values[spec.Name] = val
	}
	return snap, nil
}

// TakenAt returns the capture time.
func (s *Snapshot) TakenAt() time.Time { return s.takenAt }

// Names returns the probe names in capture order.
func (s *Snapshot) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Value returns the captured value for a probe name. The second return
// is false for unknown names.
func (s *Snapshot) Value(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Spec returns the spec a probe was captured with.
func (s *Snapshot) Spec(name string) (Spec, bool) {
	sp, ok := s.specs[name]
	return sp, ok
}

// Len returns the number of probes in the snapshot.
func (s *Snapshot) Len() int { return len(s.order) }

// Render writes the snapshot as a stable text table, one probe per
// line, for failure reports and artifacts.
func (s *Snapshot) Render() string {
	var b strings.Builder
	for _, name := range s.order {
		fmt.Fprintf(&b, "%-32s %s\n", name, s.values[name])
	}
	return b.String()
}
