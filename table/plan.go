package table

import (
	"fmt"
)

// ============================================================================
// PLAN — Validation + Render-Ready Materialization
// ============================================================================
// Finalize is the single point where the full directive list and the final
// column set are both known, so all validation happens here: unknown
// columns (reported with the directive's declaration position), overlapping
// spanners, format/type mismatches, and empty tables. Only when validation
// has fully passed does materialization begin, so a failed render never
// emits partial output.
//
// The resulting Plan is a dumb, fully-resolved structure: every cell carries
// its display text, merged visual properties, footnote markers, and
// normalized visualization points. Renderers walk it row-major and emit
// markup; walking the same Plan twice produces byte-identical output.
// ============================================================================

// VizKind identifies an embedded mini-visualization.
type VizKind int

const (
	VizNone VizKind = iota
	VizBar
	VizSpark
)

// Plan is a finalized, render-ready table.
type Plan struct {
	Title        string
	Columns      []PlanColumn // leaf columns, left to right
	SpannerRows  [][]HeaderCell
	LabelRow     []HeaderCell
	Groups       []BodyGroup
	GrandSummary []PlanRow
	Footnotes    []string // legend, in declaration order
	Placeholder  string
}

// PlanColumn describes one leaf column.
type PlanColumn struct {
	Key      string
	Label    string
	Align    Align
	WidthPx  int // 0 = automatic
	Viz      VizKind
	Markdown bool
}

// HeaderCell is one cell of a header row. Span counts leaf columns.
type HeaderCell struct {
	Text    string
	Span    int
	Props   Props
	Markers []int
}

// BodyGroup is one outer row group. Ungrouped tables have a single group
// with an empty label and one unlabeled sub.
type BodyGroup struct {
	Label   string
	Subs    []BodySub
	Summary []PlanRow // group-scoped summary rows, in declaration order
}

// BodySub is one inner row group (second grouping level).
type BodySub struct {
	Label string
	Rows  []PlanRow
}

// PlanRow is one rendered row.
type PlanRow struct {
	Cells     []PlanCell
	IsSummary bool
}

// PlanCell is one fully resolved cell.
type PlanCell struct {
	Text     string
	Props    Props
	Markers  []int
	Viz      *Viz
	Markdown bool
}

// Viz carries normalized visualization data: Frac for bars (0..1 of the
// column range), Points for sparklines (each 0..1 of the series range).
type Viz struct {
	Kind   VizKind
	Frac   float64
	Points []float64
}

// ============================================================================
// DIRECTIVE COLLECTION
// ============================================================================

type footnoteEntry struct {
	sel    Selector
	pred   compiledPred
	text   string
	marker int
}

type spannerEntry struct {
	label string
	cols  []string
	pos   int
}

type summaryEntry struct {
	row SummaryRow
	pos int
}

type tableConfig struct {
	title       string
	placeholder string
	allowEmpty  bool
	groupBy     []string
	groupOrder  []string
	formats     map[string]Format
	labels      map[string]string
	aligns      map[string]Align
	widths      map[string]int
	viz         map[string]directive // bar/sparkline directives, later wins
	spanners    []spannerEntry
	summaries   []summaryEntry
	footnotes   []footnoteEntry
}

// collect walks the directives in declaration order, validating every column
// reference against the base column set.
func collect(data DataView, directives []directive) (*tableConfig, error) {
	cfg := &tableConfig{
		formats: make(map[string]Format),
		labels:  make(map[string]string),
		aligns:  make(map[string]Align),
		widths:  make(map[string]int),
		viz:     make(map[string]directive),
	}

	checkCols := func(kind dirKind, pos int, cols []string) error {
		for _, c := range cols {
			if !hasColumn(data, c) {
				return &UnknownColumnError{Column: c, Directive: kind.String(), Position: pos}
			}
		}
		return nil
	}

	for pos, d := range directives {
		switch d.kind {
		case dirTitle:
			cfg.title = d.text
		case dirPlaceholder:
			cfg.placeholder = d.text
		case dirAllowEmpty:
			cfg.allowEmpty = true
		case dirGroupBy:
			if err := checkCols(d.kind, pos, d.cols); err != nil {
				return nil, err
			}
			if len(d.cols) > 2 {
				return nil, fmt.Errorf("group-by directive at position %d: at most two grouping levels supported", pos)
			}
			cfg.groupBy = d.cols
		case dirGroupOrder:
			cfg.groupOrder = d.cols
		case dirFormat:
			if err := checkCols(d.kind, pos, d.cols); err != nil {
				return nil, err
			}
			cfg.formats[d.cols[0]] = d.format
		case dirLabel:
			if err := checkCols(d.kind, pos, d.cols); err != nil {
				return nil, err
			}
			cfg.labels[d.cols[0]] = d.text
		case dirAlign:
			if err := checkCols(d.kind, pos, d.cols); err != nil {
				return nil, err
			}
			for _, c := range d.cols {
				cfg.aligns[c] = d.align
			}
		case dirWidth:
			if err := checkCols(d.kind, pos, d.cols); err != nil {
				return nil, err
			}
			cfg.widths[d.cols[0]] = d.width
		case dirBar, dirSparkline:
			if err := checkCols(d.kind, pos, d.cols); err != nil {
				return nil, err
			}
			cfg.viz[d.cols[0]] = d
		case dirSpanner:
			if err := checkCols(d.kind, pos, d.cols); err != nil {
				return nil, err
			}
			cfg.spanners = append(cfg.spanners, spannerEntry{label: d.text, cols: d.cols, pos: pos})
		case dirSummary:
			if err := checkCols(d.kind, pos, d.summary.Columns); err != nil {
				return nil, err
			}
			cfg.summaries = append(cfg.summaries, summaryEntry{row: d.summary, pos: pos})
		case dirFootnote:
			if err := checkCols(d.kind, pos, d.sel.Columns); err != nil {
				return nil, err
			}
			cp, err := compilePred(d.pred, "footnote", pos)
			if err != nil {
				return nil, err
			}
			cfg.footnotes = append(cfg.footnotes, footnoteEntry{
				sel:    d.sel,
				pred:   cp,
				text:   d.text,
				marker: len(cfg.footnotes) + 1,
			})
		case dirStyle:
			if err := checkCols(d.kind, pos, d.sel.Columns); err != nil {
				return nil, err
			}
		case dirColumnDefault:
			if err := checkCols(d.kind, pos, d.cols); err != nil {
				return nil, err
			}
		}
	}
	return cfg, nil
}

// ============================================================================
// FINALIZE
// ============================================================================

// Finalize validates the spec against the final column set and materializes
// a render-ready Plan. It is pure: the spec is not mutated and repeated
// calls yield identical plans.
func (s Spec) Finalize() (*Plan, error) {
	if s.data == nil {
		return nil, &EmptyTableError{}
	}

	cfg, err := collect(s.data, s.directives)
	if err != nil {
		return nil, err
	}
	if s.data.Len() == 0 && !cfg.allowEmpty {
		return nil, &EmptyTableError{}
	}

	leaves := leafColumns(s.data.Columns(), cfg.groupBy)
	if len(leaves) == 0 {
		return nil, fmt.Errorf("grouping consumed every column; nothing left to render")
	}

	// Column statistics are computed once, before the render walk. Both the
	// style resolver and the bar scaling read this cache.
	stats := computeStats(s.data)

	res, err := newResolver(s.data, stats, s.directives)
	if err != nil {
		return nil, err
	}

	b := &planBuilder{
		data:   s.data,
		cfg:    cfg,
		stats:  stats,
		res:    res,
		leaves: leaves,
	}
	return b.build()
}

func leafColumns(all, groupBy []string) []string {
	if len(groupBy) == 0 {
		return all
	}
	keySet := make(map[string]bool, len(groupBy))
	for _, k := range groupBy {
		keySet[k] = true
	}
	leaves := make([]string, 0, len(all))
	for _, c := range all {
		if !keySet[c] {
			leaves = append(leaves, c)
		}
	}
	return leaves
}

// ============================================================================
// PLAN BUILDER
// ============================================================================

type planBuilder struct {
	data   DataView
	cfg    *tableConfig
	stats  *Stats
	res    *resolver
	leaves []string
}

func (b *planBuilder) build() (*Plan, error) {
	plan := &Plan{
		Title:       b.cfg.title,
		Placeholder: b.cfg.placeholder,
	}

	cols, err := b.buildColumns()
	if err != nil {
		return nil, err
	}
	plan.Columns = cols

	spannerRows, err := b.buildSpanners()
	if err != nil {
		return nil, err
	}
	plan.SpannerRows = spannerRows
	plan.LabelRow = b.buildLabelRow()

	groups, err := b.buildGroups()
	if err != nil {
		return nil, err
	}
	plan.Groups = groups

	for _, se := range b.cfg.summaries {
		if se.row.Scope != TableScope {
			continue
		}
		row, err := b.buildSummaryRow(se, b.wholeView())
		if err != nil {
			return nil, err
		}
		plan.GrandSummary = append(plan.GrandSummary, row)
	}

	for _, fe := range b.cfg.footnotes {
		plan.Footnotes = append(plan.Footnotes, fe.text)
	}
	return plan, nil
}

func (b *planBuilder) wholeView() *SubView {
	all := make([]int, b.data.Len())
	for i := range all {
		all[i] = i
	}
	return NewSubView(b.data, all)
}

// ── Columns ─────────────────────────────────────────────────────────────────

func (b *planBuilder) buildColumns() ([]PlanColumn, error) {
	cols := make([]PlanColumn, 0, len(b.leaves))
	for _, key := range b.leaves {
		pc := PlanColumn{Key: key, Label: key}
		if l, ok := b.cfg.labels[key]; ok {
			pc.Label = l
		}
		pc.WidthPx = b.cfg.widths[key]
		pc.Markdown = b.cfg.formats[key].IsMarkdown()

		kind, _ := firstKind(b.data, key)
		// Numbers read right-aligned unless the spec says otherwise.
		if kind == KindNumber {
			pc.Align = AlignRight
		} else {
			pc.Align = AlignLeft
		}
		if a, ok := b.cfg.aligns[key]; ok && a != AlignDefault {
			pc.Align = a
		}

		if d, ok := b.cfg.viz[key]; ok {
			switch d.kind {
			case dirBar:
				if kind != KindNumber {
					return nil, &TypeMismatchError{Column: key, Format: "bar", Got: kind}
				}
				pc.Viz = VizBar
			case dirSparkline:
				if kind != KindSeries {
					return nil, &TypeMismatchError{Column: key, Format: "sparkline", Got: kind}
				}
				pc.Viz = VizSpark
			}
		} else if kind == KindSeries {
			pc.Viz = VizSpark // series columns default to sparklines
		}
		cols = append(cols, pc)
	}
	return cols, nil
}

// ── Headers ─────────────────────────────────────────────────────────────────

// buildSpanners assigns each spanner a nesting level and lays the levels out
// as header rows, top level first. A spanner whose column set strictly
// contains another's is the outer level; two spanners at the same level
// sharing a leaf column is an error.
func (b *planBuilder) buildSpanners() ([][]HeaderCell, error) {
	if len(b.cfg.spanners) == 0 {
		return nil, nil
	}

	leafIdx := make(map[string]int, len(b.leaves))
	for i, c := range b.leaves {
		leafIdx[c] = i
	}

	type placed struct {
		spannerEntry
		lo, hi int // inclusive leaf index range
		outer  bool
	}

	spans := make([]placed, 0, len(b.cfg.spanners))
	for _, se := range b.cfg.spanners {
		lo, hi := len(b.leaves), -1
		n := 0
		for _, c := range se.cols {
			idx, ok := leafIdx[c]
			if !ok {
				continue // column consumed by grouping
			}
			n++
			if idx < lo {
				lo = idx
			}
			if idx > hi {
				hi = idx
			}
		}
		if n == 0 {
			continue
		}
		if hi-lo+1 != n {
			return nil, fmt.Errorf("spanner directive at position %d: columns of %q are not a contiguous run", se.pos, se.label)
		}
		spans = append(spans, placed{spannerEntry: se, lo: lo, hi: hi})
	}

	// A spanner strictly containing another is the outer (second) level.
	for i := range spans {
		for j := range spans {
			if i == j {
				continue
			}
			if spans[i].lo <= spans[j].lo && spans[i].hi >= spans[j].hi &&
				(spans[i].hi-spans[i].lo) > (spans[j].hi-spans[j].lo) {
				spans[i].outer = true
			}
		}
	}

	var levels [][]placed // levels[0] = outer, levels[1] = inner
	inner := make([]placed, 0, len(spans))
	outer := make([]placed, 0)
	for _, sp := range spans {
		if sp.outer {
			outer = append(outer, sp)
		} else {
			inner = append(inner, sp)
		}
	}
	if len(outer) > 0 {
		levels = append(levels, outer)
	}
	levels = append(levels, inner)

	var rows [][]HeaderCell
	for _, level := range levels {
		// Overlap check within one level.
		claimed := make(map[int]string) // leaf index -> spanner label
		for _, sp := range level {
			for idx := sp.lo; idx <= sp.hi; idx++ {
				if prev, taken := claimed[idx]; taken {
					return nil, &OverlappingSpannerError{Column: b.leaves[idx], First: prev, Second: sp.label}
				}
				claimed[idx] = sp.label
			}
		}

		byStart := make(map[int]placed)
		for _, sp := range level {
			byStart[sp.lo] = sp
		}
		row := make([]HeaderCell, 0, len(b.leaves))
		for i := 0; i < len(b.leaves); {
			if sp, ok := byStart[i]; ok {
				row = append(row, HeaderCell{Text: sp.label, Span: sp.hi - sp.lo + 1})
				i = sp.hi + 1
			} else {
				row = append(row, HeaderCell{Span: 1})
				i++
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *planBuilder) buildLabelRow() []HeaderCell {
	row := make([]HeaderCell, 0, len(b.leaves))
	for _, col := range b.leaves {
		label := col
		if l, ok := b.cfg.labels[col]; ok {
			label = l
		}
		cell := HeaderCell{Text: label, Span: 1, Props: b.res.resolveLabel(col)}
		for _, fe := range b.cfg.footnotes {
			if fe.sel.Scope == ScopeColumnLabels && fe.sel.matchesColumn(col) {
				cell.Markers = append(cell.Markers, fe.marker)
			}
		}
		row = append(row, cell)
	}
	return row
}

// ── Body ────────────────────────────────────────────────────────────────────

func (b *planBuilder) buildGroups() ([]BodyGroup, error) {
	if b.data.Len() == 0 {
		return nil, nil
	}

	outer := partition(b.data, headKey(b.cfg.groupBy))
	outer = reorderGroups(outer, b.cfg.groupOrder)

	groups := make([]BodyGroup, 0, len(outer))
	for _, og := range outer {
		bg := BodyGroup{Label: og.label()}

		subs := []groupSlice{og}
		if len(b.cfg.groupBy) == 2 {
			subs = partition(og.view, b.cfg.groupBy[1:2])
		}
		for _, sg := range subs {
			sub := BodySub{}
			if len(b.cfg.groupBy) == 2 {
				sub.Label = sg.label()
			}
			rows, err := b.buildRows(sg.view)
			if err != nil {
				return nil, err
			}
			sub.Rows = rows
			bg.Subs = append(bg.Subs, sub)
		}

		for _, se := range b.cfg.summaries {
			if se.row.Scope != GroupScope {
				continue
			}
			row, err := b.buildSummaryRow(se, og.view)
			if err != nil {
				return nil, err
			}
			bg.Summary = append(bg.Summary, row)
		}
		groups = append(groups, bg)
	}
	return groups, nil
}

func headKey(groupBy []string) []string {
	if len(groupBy) == 0 {
		return nil
	}
	return groupBy[:1]
}

// reorderGroups moves the named outer groups to the front in the declared
// order; unnamed groups keep their first-seen order behind them.
func reorderGroups(groups []groupSlice, order []string) []groupSlice {
	if len(order) == 0 {
		return groups
	}
	out := make([]groupSlice, 0, len(groups))
	used := make(map[int]bool, len(groups))
	for _, name := range order {
		for i, g := range groups {
			if !used[i] && g.label() == name {
				out = append(out, g)
				used[i] = true
				break
			}
		}
	}
	for i, g := range groups {
		if !used[i] {
			out = append(out, g)
		}
	}
	return out
}

func (b *planBuilder) buildRows(view *SubView) ([]PlanRow, error) {
	rows := make([]PlanRow, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		baseIdx := view.indices[i]
		cells := make([]PlanCell, 0, len(b.leaves))
		for colIdx, col := range b.leaves {
			cell, err := b.buildCell(baseIdx, col, b.resolveViz(colIdx))
			if err != nil {
				return nil, err
			}
			cells = append(cells, cell)
		}
		rows = append(rows, PlanRow{Cells: cells})
	}
	return rows, nil
}

func (b *planBuilder) resolveViz(colIdx int) VizKind {
	// Columns are rebuilt identically in buildColumns; cheap to recompute
	// the viz kind from config here.
	col := b.leaves[colIdx]
	if d, ok := b.cfg.viz[col]; ok {
		if d.kind == dirBar {
			return VizBar
		}
		return VizSpark
	}
	if k, _ := firstKind(b.data, col); k == KindSeries {
		return VizSpark
	}
	return VizNone
}

func (b *planBuilder) buildCell(baseIdx int, col string, viz VizKind) (PlanCell, error) {
	v := b.data.Cell(baseIdx, col)

	text, err := b.cfg.formats[col].Apply(col, v, b.cfg.placeholder)
	if err != nil {
		return PlanCell{}, err
	}

	props, err := b.res.resolve(baseIdx, col)
	if err != nil {
		return PlanCell{}, err
	}

	cell := PlanCell{
		Text:     text,
		Props:    props,
		Markdown: b.cfg.formats[col].IsMarkdown(),
	}

	for _, fe := range b.cfg.footnotes {
		if fe.sel.Scope != ScopeBody || !fe.sel.matchesColumn(col) {
			continue
		}
		match, err := fe.pred.eval(b.res.ctx, baseIdx, col)
		if err != nil {
			return PlanCell{}, err
		}
		if match {
			cell.Markers = append(cell.Markers, fe.marker)
		}
	}

	switch viz {
	case VizBar:
		if v.Kind() == KindNumber {
			cell.Viz = &Viz{Kind: VizBar, Frac: b.barFraction(col, v.Float())}
		}
	case VizSpark:
		if v.Kind() == KindSeries {
			cell.Viz = &Viz{Kind: VizSpark, Points: normalizeSeries(v.Points())}
			cell.Text = "" // the polyline is the cell content
		}
	}
	return cell, nil
}

// barFraction maps a value to 0..1 of the column's observed range. Scaled
// bars span min..max; unscaled bars span 0..max.
func (b *planBuilder) barFraction(col string, v float64) float64 {
	cs := b.stats.Column(col)
	var frac float64
	if d, ok := b.cfg.viz[col]; ok && d.kind == dirBar && !d.scaled {
		if cs.Max > 0 {
			frac = v / cs.Max
		}
	} else {
		span := cs.Max - cs.Min
		if span == 0 {
			frac = 1 // every value equal: full bar
		} else {
			frac = (v - cs.Min) / span
		}
	}
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}

// normalizeSeries maps each point to 0..1 of the series' own range, with no
// smoothing. A flat series sits at the midline.
func normalizeSeries(points []float64) []float64 {
	if len(points) == 0 {
		return nil
	}
	lo, hi := minFloats(points), maxFloats(points)
	out := make([]float64, len(points))
	if hi == lo {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for i, p := range points {
		out[i] = (p - lo) / (hi - lo)
	}
	return out
}

// ── Summary rows ────────────────────────────────────────────────────────────

func (b *planBuilder) buildSummaryRow(se summaryEntry, view *SubView) (PlanRow, error) {
	inSet := make(map[string]bool, len(se.row.Columns))
	for _, c := range se.row.Columns {
		inSet[c] = true
	}

	label := se.row.Label
	if label == "" {
		label = se.row.Reduce.String()
	}

	// The label lands in the first leaf column that is not being summarized.
	labelCol := -1
	for i, col := range b.leaves {
		if !inSet[col] {
			labelCol = i
			break
		}
	}

	cells := make([]PlanCell, 0, len(b.leaves))
	for i, col := range b.leaves {
		cell := PlanCell{Props: Props{Weight: "bold"}}
		switch {
		case inSet[col]:
			out := AggColumn{Source: col, Reduce: se.row.Reduce}
			if err := validateOutputs(b.data, []AggColumn{out}); err != nil {
				return PlanRow{}, err
			}
			v, err := reduceGroup(groupSlice{view: view}, out, map[string]float64{col: b.stats.Sum(col)})
			if err != nil {
				return PlanRow{}, err
			}
			f := b.cfg.formats[col]
			if se.row.Format != nil {
				f = *se.row.Format
			}
			text, err := f.Apply(col, v, b.cfg.placeholder)
			if err != nil {
				return PlanRow{}, err
			}
			cell.Text = text
		case i == labelCol:
			cell.Text = label
		}
		cells = append(cells, cell)
	}
	return PlanRow{Cells: cells, IsSummary: true}, nil
}
