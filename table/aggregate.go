package table

import (
	"sort"
	"strings"
)

// ============================================================================
// AGGREGATION STAGE — Grouping and Reduction
// ============================================================================
// Partitions a view by key columns (first-seen order) and reduces each group
// to one output row. Percent-of-total columns are two-pass: the grand total
// is computed over the ungrouped view and frozen before any group share is
// computed, so the denominator never depends on group iteration order.
// ============================================================================

// Reduction identifies how a group of values collapses to one.
type Reduction int

const (
	Sum Reduction = iota
	Count
	Mean
	Min
	Max
	Median
	First
	PercentOfTotal
)

// String returns the reduction name for error messages.
func (r Reduction) String() string {
	switch r {
	case Sum:
		return "sum"
	case Count:
		return "count"
	case Mean:
		return "mean"
	case Min:
		return "min"
	case Max:
		return "max"
	case Median:
		return "median"
	case First:
		return "first"
	case PercentOfTotal:
		return "percent-of-total"
	default:
		return "unknown"
	}
}

// AggColumn maps an output column to a (source column, reduction) pair.
// Source may be empty for Count.
type AggColumn struct {
	Name   string
	Source string
	Reduce Reduction
}

// AggOption configures Aggregate.
type AggOption func(*aggConfig)

type aggConfig struct {
	forbidEmpty bool
}

// ForbidEmptyGroups makes Aggregate fail with EmptyGroupError when a group
// has no usable values for some reduction. By default such groups emit a
// missing cell and are otherwise kept.
func ForbidEmptyGroups() AggOption {
	return func(c *aggConfig) { c.forbidEmpty = true }
}

// Aggregate partitions view by the key columns and reduces each group to one
// output row. The result carries the key columns first (original values),
// then one column per AggColumn. A two-column key yields one row per
// distinct key combination, ordered by first appearance.
func Aggregate(view DataView, key []string, outputs []AggColumn, opts ...AggOption) (*Dataset, error) {
	cfg := &aggConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if err := validateOutputs(view, outputs); err != nil {
		return nil, err
	}
	for _, k := range key {
		if !hasColumn(view, k) {
			return nil, &InvalidReductionError{Column: k, Reduce: First, Reason: "group key column not in dataset"}
		}
	}

	// Freeze percent-of-total denominators before iterating groups.
	grand := make(map[string]float64)
	for _, out := range outputs {
		if out.Reduce == PercentOfTotal {
			grand[out.Source] = sumColumn(view, out.Source)
		}
	}

	groups := partition(view, key)

	cols := make([]string, 0, len(key)+len(outputs))
	cols = append(cols, key...)
	for _, out := range outputs {
		cols = append(cols, out.Name)
	}
	result := NewDataset(cols...)

	for _, g := range groups {
		row := make(Row, len(cols))
		for i, k := range key {
			row[k] = g.keys[i]
		}
		for _, out := range outputs {
			v, err := reduceGroup(g, out, grand)
			if err != nil {
				return nil, err
			}
			if v.IsMissing() && cfg.forbidEmpty {
				return nil, &EmptyGroupError{Key: g.label()}
			}
			row[out.Name] = v
		}
		result.AppendRow(row)
	}

	return result, nil
}

func validateOutputs(view DataView, outputs []AggColumn) error {
	for _, out := range outputs {
		if out.Reduce == Count && out.Source == "" {
			continue
		}
		if !hasColumn(view, out.Source) {
			return &InvalidReductionError{Column: out.Source, Reduce: out.Reduce, Reason: "column not in dataset"}
		}
		if out.Reduce == First || out.Reduce == Count {
			continue
		}
		// Numeric reductions need a numeric column. The first non-missing
		// value decides, since all rows share one type per column.
		if k, ok := firstKind(view, out.Source); ok && k != KindNumber {
			return &InvalidReductionError{Column: out.Source, Reduce: out.Reduce, Reason: "column is not numeric (" + k.String() + ")"}
		}
	}
	return nil
}

func reduceGroup(g groupSlice, out AggColumn, grand map[string]float64) (Value, error) {
	if out.Reduce == Count {
		return Int(g.view.Len()), nil
	}
	if out.Reduce == First {
		for i := 0; i < g.view.Len(); i++ {
			if v := g.view.Cell(i, out.Source); !v.IsMissing() {
				return v, nil
			}
		}
		return Missing(), nil
	}

	vals := numericValues(g.view, out.Source)
	if len(vals) == 0 {
		return Missing(), nil
	}

	switch out.Reduce {
	case Sum:
		return Number(sumFloats(vals)), nil
	case Mean:
		return Number(sumFloats(vals) / float64(len(vals))), nil
	case Min:
		return Number(minFloats(vals)), nil
	case Max:
		return Number(maxFloats(vals)), nil
	case Median:
		return Number(medianFloats(vals)), nil
	case PercentOfTotal:
		total := grand[out.Source]
		if total == 0 {
			return Missing(), nil
		}
		return Number(sumFloats(vals) / total * 100), nil
	default:
		return Missing(), &InvalidReductionError{Column: out.Source, Reduce: out.Reduce, Reason: "unsupported reduction"}
	}
}

// ============================================================================
// PARTITIONING
// ============================================================================

// groupSlice is one partition of a parent view.
type groupSlice struct {
	keys   []Value // one per key column, taken from the group's first row
	labels []string
	view   *SubView
}

func (g groupSlice) label() string { return strings.Join(g.labels, " / ") }

// partition splits a view by the key columns in first-seen order. With an
// empty key the whole view forms a single unlabeled group. Every input row
// lands in exactly one group.
func partition(view DataView, key []string) []groupSlice {
	if len(key) == 0 {
		all := make([]int, view.Len())
		for i := range all {
			all[i] = i
		}
		return []groupSlice{{view: NewSubView(view, all)}}
	}

	const sep = "\x1f"
	order := make([]string, 0)
	indices := make(map[string][]int)
	firstRow := make(map[string]int)

	for i := 0; i < view.Len(); i++ {
		parts := make([]string, len(key))
		for j, k := range key {
			parts[j] = view.Cell(i, k).String()
		}
		composite := strings.Join(parts, sep)
		if _, seen := indices[composite]; !seen {
			order = append(order, composite)
			firstRow[composite] = i
		}
		indices[composite] = append(indices[composite], i)
	}

	groups := make([]groupSlice, 0, len(order))
	for _, composite := range order {
		first := firstRow[composite]
		keys := make([]Value, len(key))
		labels := make([]string, len(key))
		for j, k := range key {
			keys[j] = view.Cell(first, k)
			labels[j] = keys[j].String()
		}
		groups = append(groups, groupSlice{
			keys:   keys,
			labels: labels,
			view:   NewSubView(view, indices[composite]),
		})
	}
	return groups
}

// ============================================================================
// NUMERIC HELPERS
// ============================================================================

func hasColumn(view DataView, col string) bool {
	for _, c := range view.Columns() {
		if c == col {
			return true
		}
	}
	return false
}

func firstKind(view DataView, col string) (Kind, bool) {
	for i := 0; i < view.Len(); i++ {
		if v := view.Cell(i, col); !v.IsMissing() {
			return v.Kind(), true
		}
	}
	return KindMissing, false
}

// numericValues collects the non-missing numeric cells of a column.
func numericValues(view DataView, col string) []float64 {
	vals := make([]float64, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		if v := view.Cell(i, col); v.Kind() == KindNumber {
			vals = append(vals, v.Float())
		}
	}
	return vals
}

func sumColumn(view DataView, col string) float64 {
	return sumFloats(numericValues(view, col))
}

func sumFloats(vals []float64) float64 {
	var total float64
	for _, v := range vals {
		total += v
	}
	return total
}

func minFloats(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxFloats(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func medianFloats(vals []float64) float64 {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 0 {
		return (cp[mid-1] + cp[mid]) / 2
	}
	return cp[mid]
}
