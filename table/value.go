package table

import (
	"fmt"
	"time"
)

// ============================================================================
// VALUE — Typed Scalar
// ============================================================================
// Every cell in a Dataset holds a Value: a number, a string, a date, a small
// numeric series (for sparkline columns), or nothing at all. The zero Value
// is missing, so uninitialized cells render the placeholder instead of junk.
// ============================================================================

// Kind identifies what a Value holds.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindString
	KindTime
	KindSeries
)

// String returns the kind name for error messages.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindTime:
		return "date"
	case KindSeries:
		return "series"
	default:
		return "missing"
	}
}

// Value is a single typed cell.
type Value struct {
	kind   Kind
	num    float64
	str    string
	ts     time.Time
	series []float64
}

// Number creates a numeric Value.
func Number(v float64) Value { return Value{kind: KindNumber, num: v} }

// Int creates a numeric Value from an int.
func Int(v int) Value { return Value{kind: KindNumber, num: float64(v)} }

// String creates a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Date creates a date Value.
func Date(t time.Time) Value { return Value{kind: KindTime, ts: t} }

// Series creates a numeric-series Value for sparkline columns.
func Series(points ...float64) Value {
	cp := make([]float64, len(points))
	copy(cp, points)
	return Value{kind: KindSeries, series: cp}
}

// Missing creates an absent Value. Equivalent to the zero Value.
func Missing() Value { return Value{} }

// Kind returns what the Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the Value is absent.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric content, or 0 for non-numbers.
func (v Value) Float() float64 { return v.num }

// Text returns the string content, or "" for non-strings.
func (v Value) Text() string { return v.str }

// Time returns the date content, or the zero time for non-dates.
func (v Value) Time() time.Time { return v.ts }

// Points returns the series content, or nil for non-series.
func (v Value) Points() []float64 { return v.series }

// Native returns the underlying Go value. Used for predicate environments
// and spreadsheet cells.
func (v Value) Native() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindTime:
		return v.ts
	case KindSeries:
		return v.series
	default:
		return nil
	}
}

// String renders an unformatted debug representation.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return fmt.Sprintf("%g", v.num)
	case KindString:
		return v.str
	case KindTime:
		return v.ts.Format("2006-01-02")
	case KindSeries:
		return fmt.Sprintf("series(%d)", len(v.series))
	default:
		return ""
	}
}
