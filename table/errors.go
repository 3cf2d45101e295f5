package table

import (
	"errors"
	"fmt"
)

// ============================================================================
// ERRORS — Render-Time Validation Failures
// ============================================================================
// All spec validation happens at render time, the single point where the
// full directive list and the final column set are both known. Each error
// carries the offending directive's declaration position because position
// determines precedence.
// ============================================================================

// Sentinel errors for errors.Is checks. The typed errors below unwrap to
// these.
var (
	ErrUnknownColumn      = errors.New("unknown column")
	ErrInvalidReduction   = errors.New("invalid reduction")
	ErrOverlappingSpanner = errors.New("overlapping spanner")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrEmptyTable         = errors.New("empty table")
	ErrEmptyGroup         = errors.New("empty group")
)

// UnknownColumnError reports a directive referencing a column that does not
// exist in the base dataset at render time.
type UnknownColumnError struct {
	Column    string
	Directive string // directive kind, e.g. "format", "style"
	Position  int    // zero-based position in declaration order
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("%s directive at position %d: unknown column %q", e.Directive, e.Position, e.Column)
}

func (e *UnknownColumnError) Unwrap() error { return ErrUnknownColumn }

// InvalidReductionError reports a reduction applied to a missing or
// incompatible column.
type InvalidReductionError struct {
	Column string
	Reduce Reduction
	Reason string
}

func (e *InvalidReductionError) Error() string {
	return fmt.Sprintf("cannot reduce column %q with %s: %s", e.Column, e.Reduce, e.Reason)
}

func (e *InvalidReductionError) Unwrap() error { return ErrInvalidReduction }

// OverlappingSpannerError reports two spanners at the same nesting level
// claiming the same leaf column.
type OverlappingSpannerError struct {
	Column string
	First  string // label of the earlier spanner
	Second string // label of the later spanner
}

func (e *OverlappingSpannerError) Error() string {
	return fmt.Sprintf("spanners %q and %q both claim column %q", e.First, e.Second, e.Column)
}

func (e *OverlappingSpannerError) Unwrap() error { return ErrOverlappingSpanner }

// TypeMismatchError reports a ColumnFormat applied to an incompatible value
// type, e.g. a currency format on a text column.
type TypeMismatchError struct {
	Column string
	Format string
	Got    Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("column %q: %s format cannot render a %s value", e.Column, e.Format, e.Got)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }

// EmptyTableError reports a render over zero rows without an explicit
// allow-empty override.
type EmptyTableError struct{}

func (e *EmptyTableError) Error() string {
	return "render invoked on a spec with zero rows (use AllowEmpty to permit)"
}

func (e *EmptyTableError) Unwrap() error { return ErrEmptyTable }

// EmptyGroupError reports a group with no usable values when the caller has
// forbidden empty groups.
type EmptyGroupError struct {
	Key string
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("group %q has no usable values", e.Key)
}

func (e *EmptyGroupError) Unwrap() error { return ErrEmptyGroup }
