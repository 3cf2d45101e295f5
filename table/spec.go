package table

// ============================================================================
// TABLE SPEC BUILDER — Append-Only Directive Accumulation
// ============================================================================
// A Spec is the accumulated description of one table: the base data plus an
// ordered list of directives. Every builder method returns a new Spec value
// backed by a fresh directive slice, so a base spec can be reused to build
// several variant tables without aliasing. Directives are validated at
// render time, once the final column set is known — they may be declared
// before the columns they reference exist.
// ============================================================================

// Spec is an immutable-per-version table description. Build it with the
// directive methods, then hand it to a renderer exactly once per render.
type Spec struct {
	data       DataView
	directives []directive
}

// New creates a Spec over a view. The view's column order is the table's
// column order.
func New(data DataView) Spec {
	return Spec{data: data}
}

// Data returns the spec's base view.
func (s Spec) Data() DataView { return s.data }

type dirKind int

const (
	dirTitle dirKind = iota
	dirGroupBy
	dirGroupOrder
	dirFormat
	dirLabel
	dirAlign
	dirWidth
	dirStyle
	dirDefault
	dirColumnDefault
	dirSpanner
	dirSummary
	dirFootnote
	dirBar
	dirSparkline
	dirPlaceholder
	dirAllowEmpty
)

func (k dirKind) String() string {
	switch k {
	case dirTitle:
		return "title"
	case dirGroupBy:
		return "group-by"
	case dirGroupOrder:
		return "group-order"
	case dirFormat:
		return "format"
	case dirLabel:
		return "label"
	case dirAlign:
		return "align"
	case dirWidth:
		return "width"
	case dirStyle:
		return "style"
	case dirDefault:
		return "default"
	case dirColumnDefault:
		return "column-default"
	case dirSpanner:
		return "spanner"
	case dirSummary:
		return "summary"
	case dirFootnote:
		return "footnote"
	case dirBar:
		return "bar"
	case dirSparkline:
		return "sparkline"
	case dirPlaceholder:
		return "placeholder"
	default:
		return "allow-empty"
	}
}

// directive is one declarative instruction. Only the fields relevant to its
// kind are set.
type directive struct {
	kind    dirKind
	cols    []string
	text    string
	format  Format
	align   Align
	width   int
	sel     Selector
	pred    Predicate
	props   Props
	summary SummaryRow
	scaled  bool
}

// with appends a directive into a fresh slice so earlier Spec values stay
// untouched.
func (s Spec) with(d directive) Spec {
	dirs := make([]directive, len(s.directives)+1)
	copy(dirs, s.directives)
	dirs[len(s.directives)] = d
	s.directives = dirs
	return s
}

// ============================================================================
// DIRECTIVES
// ============================================================================

// Title sets the table title.
func (s Spec) Title(text string) Spec {
	return s.with(directive{kind: dirTitle, text: text})
}

// GroupBy partitions the body into row groups by the given columns
// (first-seen order, at most two levels). The key columns become group
// heading rows and are removed from the leaf columns.
func (s Spec) GroupBy(cols ...string) Spec {
	return s.with(directive{kind: dirGroupBy, cols: cols})
}

// GroupOrder overrides the first-seen order of the outer groups. Groups not
// named keep their relative first-seen order after the named ones.
func (s Spec) GroupOrder(values ...string) Spec {
	return s.with(directive{kind: dirGroupOrder, cols: values})
}

// Format sets the display format of a column. A later Format for the same
// column overrides an earlier one.
func (s Spec) Format(col string, f Format) Spec {
	return s.with(directive{kind: dirFormat, cols: []string{col}, format: f})
}

// Label sets the header label of a column. Defaults to the column name.
func (s Spec) Label(col, text string) Spec {
	return s.with(directive{kind: dirLabel, cols: []string{col}, text: text})
}

// Align sets the horizontal alignment of the given columns.
func (s Spec) Align(a Align, cols ...string) Spec {
	return s.with(directive{kind: dirAlign, cols: cols, align: a})
}

// Width sets a column's width in pixels.
func (s Spec) Width(col string, px int) Spec {
	return s.with(directive{kind: dirWidth, cols: []string{col}, width: px})
}

// Style adds a conditional style rule. Every cell the selector and predicate
// match receives the properties; when several rules mention the same
// property for one cell, the later-declared rule wins that property.
func (s Spec) Style(sel Selector, pred Predicate, props Props) Spec {
	return s.with(directive{kind: dirStyle, sel: sel, pred: pred, props: props})
}

// Default sets table-level default properties, used for any property no
// matching rule or column default mentions.
func (s Spec) Default(props Props) Spec {
	return s.with(directive{kind: dirDefault, props: props})
}

// ColumnDefault sets column-level default properties, consulted before the
// table-level defaults.
func (s Spec) ColumnDefault(col string, props Props) Spec {
	return s.with(directive{kind: dirColumnDefault, cols: []string{col}, props: props})
}

// Spanner groups a run of leaf columns under one header label. A spanner
// whose columns cover other spanners' columns entirely becomes a second
// header level; partial overlap at the same level is an error at render
// time.
func (s Spec) Spanner(label string, cols ...string) Spec {
	return s.with(directive{kind: dirSpanner, text: label, cols: cols})
}

// Summary appends a synthetic reduction row per group or for the whole
// table.
func (s Spec) Summary(row SummaryRow) Spec {
	return s.with(directive{kind: dirSummary, summary: row})
}

// Footnote binds a note to the selected cells. Notes accumulate: several
// footnotes on the same selector each get their own marker, numbered in
// declaration order.
func (s Spec) Footnote(sel Selector, text string) Spec {
	return s.with(directive{kind: dirFootnote, sel: sel, text: text})
}

// FootnoteWhere binds a note to the body cells matching a predicate.
func (s Spec) FootnoteWhere(sel Selector, pred Predicate, text string) Spec {
	return s.with(directive{kind: dirFootnote, sel: sel, pred: pred, text: text})
}

// Bar renders a numeric column as a horizontal bar scaled between the
// column's observed minimum and maximum. With scaled false the bar scales
// between 0 and the maximum instead.
func (s Spec) Bar(col string, scaled bool) Spec {
	return s.with(directive{kind: dirBar, cols: []string{col}, scaled: scaled})
}

// Sparkline renders a series column as a polyline of normalized points.
// Series columns default to sparklines; the directive exists to request one
// explicitly or to re-enable it after a Format.
func (s Spec) Sparkline(col string) Spec {
	return s.with(directive{kind: dirSparkline, cols: []string{col}})
}

// Placeholder sets the text rendered for missing values. Default: empty
// cell.
func (s Spec) Placeholder(text string) Spec {
	return s.with(directive{kind: dirPlaceholder, text: text})
}

// AllowEmpty permits rendering a spec with zero rows. Without it an empty
// table fails with EmptyTableError.
func (s Spec) AllowEmpty() Spec {
	return s.with(directive{kind: dirAllowEmpty})
}

// ============================================================================
// SUMMARY ROWS
// ============================================================================

// SummaryScope says whether a summary row trails each group or the whole
// table.
type SummaryScope int

const (
	GroupScope SummaryScope = iota
	TableScope
)

// SummaryRow declares a synthetic reduction row. Columns outside the set
// render empty. Each summarized cell uses its column's active format unless
// Format overrides it.
type SummaryRow struct {
	Scope   SummaryScope
	Reduce  Reduction
	Columns []string
	Label   string  // stub-cell label; defaults to the reduction name
	Format  *Format // optional format override
}
