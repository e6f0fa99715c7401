package scenario

import (
	"fmt"

	"github.com/lightforgemedia/go-uiharness/pkg/probe"
)

// checkKind enumerates the supported diff expectations.
type checkKind int

const (
	mustChange checkKind = iota
	mustNotChange
	becomes
	stays
)

// Check is the judgement applied to one diff entry. The comparator
// only reports facts; a Check is what turns a fact into a verdict.
type Check struct {
	kind      checkKind
	value     probe.Value
	tolerance float64
	hasTol    bool
}

// MustChange requires the probe's value to differ before vs after.
func MustChange() Check { return Check{kind: mustChange} }

// MustNotChange requires the probe's value to be unchanged, within the
// probe's default tolerance.
func MustNotChange() Check { return Check{kind: mustNotChange} }

// MustNotChangeWithin requires a numeric probe to stay within tol of
// its before value, e.g. scroll restoration within ±50 units.
func MustNotChangeWithin(tol float64) Check {
	return Check{kind: mustNotChange, tolerance: tol, hasTol: true}
}

// Becomes requires the probe's after value to equal v.
func Becomes(v probe.Value) Check { return Check{kind: becomes, value: v} }

// Stays requires the probe's value to equal v both before and after.
func Stays(v probe.Value) Check { return Check{kind: stays, value: v} }

// Expectation binds a Check to a named probe in a diff.
type Expectation struct {
	Probe string
	Check Check
}

// Expect builds an Expectation.
func Expect(probeName string, check Check) Expectation {
	return Expectation{Probe: probeName, Check: check}
}

// verify judges one diff entry, returning nil when the expectation
// holds.
func (e Expectation) verify(entry probe.Entry) *AssertionFailure {
	switch e.Check.kind {
	case mustChange:
		if !entry.Changed {
			return &AssertionFailure{
				Probe:    e.Probe,
				Expected: "a change",
				Actual:   fmt.Sprintf("unchanged at %s", entry.Before),
			}
		}
	case mustNotChange:
		if e.Check.hasTol {
			if !entry.Before.Equal(entry.After, e.Check.tolerance) {
				return &AssertionFailure{
					Probe:    e.Probe,
					Expected: fmt.Sprintf("within %v of %s", e.Check.tolerance, entry.Before),
					Actual:   entry.After.String(),
				}
			}
		} else if entry.Changed {
			return &AssertionFailure{
				Probe:    e.Probe,
				Expected: fmt.Sprintf("no change from %s", entry.Before),
				Actual:   entry.After.String(),
			}
		}
	case becomes:
		if !entry.After.Equal(e.Check.value, probe.NumericTolerance) {
			return &AssertionFailure{
				Probe:    e.Probe,
				Expected: e.Check.value.String(),
				Actual:   entry.After.String(),
			}
		}
	case stays:
		if !entry.Before.Equal(e.Check.value, probe.NumericTolerance) || !entry.After.Equal(e.Check.value, probe.NumericTolerance) {
			return &AssertionFailure{
				Probe:    e.Probe,
				Expected: fmt.Sprintf("%s before and after", e.Check.value),
				Actual:   fmt.Sprintf("%s -> %s", entry.Before, entry.After),
			}
		}
	}
	return nil
}
