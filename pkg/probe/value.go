package probe

import (
	"fmt"
	"math"
	"strconv"
)

// NumericTolerance absorbs sub-pixel rendering noise when comparing
// numeric probe values.
const NumericTolerance = 1.0

// valueType tags the variant held by a Value.
type valueType int

const (
	absentValue valueType = iota
	boolValue
	numValue
	strValue
)

// Value is one captured probe observation. A Value is immutable; the
// zero Value is the "absent" sentinel recorded when a probe's target
// element was not in the document at capture time.
type Value struct {
	typ valueType
	b   bool
	n   float64
	s   string
}

// Absent is the sentinel recorded for a missing element. Partial
// information is still useful for diagnostics, so capture records it
// instead of aborting.
var Absent = Value{typ: absentValue}

// BoolValue wraps a boolean observation.
func BoolValue(b bool) Value { return Value{typ: boolValue, b: b} }

// NumValue wraps a numeric observation.
func NumValue(n float64) Value { return Value{typ: numValue, n: n} }

// StrValue wraps a string observation.
func StrValue(s string) Value { return Value{typ: strValue, s: s} }

// IsAbsent reports whether the probed element was missing.
func (v Value) IsAbsent() bool { return v.typ == absentValue }

// Bool returns the boolean observation, false if not a boolean.
func (v Value) Bool() bool { return v.typ == boolValue && v.b }

// Num returns the numeric observation, 0 if not numeric.
func (v Value) Num() float64 {
	if v.typ != numValue {
		return 0
	}
	return v.n
}

// Str returns the string observation, "" if not a string.
func (v Value) Str() string {
	if v.typ != strValue {
		return ""
	}
	return v.s
}

// Equal compares two values type-aware: numeric values compare within
// tolerance, booleans and strings exactly. Absent equals only Absent.
func (v Value) Equal(other Value, tolerance float64) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case absentValue:
		return true
	case boolValue:
		return v.b == other.b
	case numValue:
		return math.Abs(v.n-other.n) <= tolerance
	default:
		return v.s == other.s
	}
}

func (v Value) String() string {
	switch v.typ {
	case absentValue:
		return "<absent>"
	case boolValue:
		return strconv.FormatBool(v.b)
	case numValue:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	default:
		return fmt.Sprintf("%q", v.s)
	}
}
