package table

import (
	"fmt"
	"math"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ============================================================================
// STYLE RESOLVER — Matching Rules → One Props Per Cell
// ============================================================================
// resolve(cell) collects every rule whose selector matches the cell's column
// and whose predicate holds for the cell's row, then merges their properties
// in declaration order (last-declared wins per property). Properties nothing
// mentions fall back to column-level, then table-level defaults.
//
// Resolution is pure: identical spec + identical coordinate always yields
// identical Props. Expression predicates are compiled once per render pass
// and evaluated against the precomputed statistics cache.
// ============================================================================

// evalContext is the shared predicate-evaluation state for one render pass.
type evalContext struct {
	view  DataView
	stats *Stats
}

// env builds the expression environment for one cell: every row value by
// column name, the cell itself as `value`, and the column aggregate
// functions bound to the statistics cache.
func (e *evalContext) env(rowIdx int, col string) map[string]any {
	cols := e.view.Columns()
	m := make(map[string]any, len(cols)+7)
	for _, c := range cols {
		m[c] = e.nativeOrZero(rowIdx, c)
	}
	m["value"] = e.nativeOrZero(rowIdx, col)
	m["mean"] = func(c string) float64 { return e.stats.Mean(c) }
	m["min"] = func(c string) float64 { return e.stats.Min(c) }
	m["max"] = func(c string) float64 { return e.stats.Max(c) }
	m["sum"] = func(c string) float64 { return e.stats.Sum(c) }
	m["median"] = func(c string) float64 { return e.stats.MedianOf(c) }
	m["count"] = func(c string) int { return e.stats.CountOf(c) }
	return m
}

// nativeOrZero substitutes a typed zero for a missing cell so that an
// expression never fails on a placeholder: NaN for numeric columns (every
// comparison is false), "" for text, the zero time for dates. A missing
// value renders the placeholder and must never abort the render through a
// predicate either.
func (e *evalContext) nativeOrZero(rowIdx int, col string) any {
	v := e.view.Cell(rowIdx, col)
	if !v.IsMissing() {
		return v.Native()
	}
	k, _ := firstKind(e.view, col)
	switch k {
	case KindNumber:
		return math.NaN()
	case KindString:
		return ""
	case KindTime:
		return time.Time{}
	default:
		return nil
	}
}

// row materializes the sibling values for closure predicates.
func (e *evalContext) row(rowIdx int) Row {
	cols := e.view.Columns()
	r := make(Row, len(cols))
	for _, c := range cols {
		r[c] = e.view.Cell(rowIdx, c)
	}
	return r
}

// compiledPred is a Predicate ready for per-cell evaluation.
type compiledPred struct {
	pred Predicate
	prog *vm.Program
}

// predCompileOpts disables the expr builtins that collide with the column
// aggregate helpers evalContext.env supplies at Run time; otherwise the typed
// builtins shadow them and predicates like `value == max("col")` fail to
// compile.
var predCompileOpts = []expr.Option{
	expr.DisableBuiltin("min"),
	expr.DisableBuiltin("max"),
	expr.DisableBuiltin("mean"),
	expr.DisableBuiltin("median"),
	expr.DisableBuiltin("sum"),
	expr.DisableBuiltin("count"),
}

// compilePred compiles an expression predicate. what and pos identify the
// declaring directive in error messages.
func compilePred(p Predicate, what string, pos int) (compiledPred, error) {
	cp := compiledPred{pred: p}
	if p.code == "" {
		return cp, nil
	}
	prog, err := expr.Compile(p.code, predCompileOpts...)
	if err != nil {
		return cp, fmt.Errorf("%s directive at position %d: compile predicate %q: %w", what, pos, p.code, err)
	}
	cp.prog = prog
	return cp, nil
}

// eval reports whether the predicate holds for the cell at (rowIdx, col).
func (cp compiledPred) eval(e *evalContext, rowIdx int, col string) (bool, error) {
	switch {
	case cp.pred.isAlways():
		return true, nil
	case cp.pred.fn != nil:
		return cp.pred.fn(Cell{
			Column: col,
			Value:  e.view.Cell(rowIdx, col),
			Row:    e.row(rowIdx),
			Stats:  e.stats,
		}), nil
	default:
		out, err := expr.Run(cp.prog, e.env(rowIdx, col))
		if err != nil {
			return false, fmt.Errorf("evaluate predicate %q: %w", cp.pred.code, err)
		}
		b, ok := out.(bool)
		if !ok {
			return false, fmt.Errorf("predicate %q: expected bool result, got %T", cp.pred.code, out)
		}
		return b, nil
	}
}

// compiledRule is one style rule ready for resolution.
type compiledRule struct {
	sel   Selector
	props Props
	pred  compiledPred
	pos   int
}

// resolver merges style rules for the cells of one render pass.
type resolver struct {
	ctx            *evalContext
	rules          []compiledRule
	columnDefaults map[string]Props
	tableDefaults  Props
}

// newResolver scans the directive list for style rules and defaults,
// compiling expression predicates once up front.
func newResolver(view DataView, stats *Stats, directives []directive) (*resolver, error) {
	r := &resolver{
		ctx:            &evalContext{view: view, stats: stats},
		columnDefaults: make(map[string]Props),
	}
	for pos, d := range directives {
		switch d.kind {
		case dirStyle:
			cp, err := compilePred(d.pred, "style", pos)
			if err != nil {
				return nil, err
			}
			r.rules = append(r.rules, compiledRule{sel: d.sel, props: d.props, pred: cp, pos: pos})
		case dirDefault:
			r.tableDefaults = r.tableDefaults.merge(d.props)
		case dirColumnDefault:
			col := d.cols[0]
			r.columnDefaults[col] = r.columnDefaults[col].merge(d.props)
		}
	}
	return r, nil
}

// resolve computes the final Props for one body cell. Defaults apply first,
// then matching rules overlay them in declaration order.
func (r *resolver) resolve(rowIdx int, col string) (Props, error) {
	out := r.tableDefaults.merge(r.columnDefaults[col])
	for _, rule := range r.rules {
		if rule.sel.Scope != ScopeBody || !rule.sel.matchesColumn(col) {
			continue
		}
		match, err := rule.pred.eval(r.ctx, rowIdx, col)
		if err != nil {
			return Props{}, fmt.Errorf("style directive at position %d: %w", rule.pos, err)
		}
		if match {
			out = out.merge(rule.props)
		}
	}
	return out, nil
}

// resolveLabel computes the Props for a column-label header cell. Only
// unconditional rules apply — label cells have no row for a predicate to
// read.
func (r *resolver) resolveLabel(col string) Props {
	out := r.tableDefaults.merge(r.columnDefaults[col])
	for _, rule := range r.rules {
		if rule.sel.Scope != ScopeColumnLabels || !rule.sel.matchesColumn(col) {
			continue
		}
		if rule.pred.pred.isAlways() {
			out = out.merge(rule.props)
		}
	}
	return out
}
