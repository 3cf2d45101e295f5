package table

// ============================================================================
// STYLES — Visual Properties, Selectors, and Predicates
// ============================================================================
// A style rule is a (selector, predicate, properties) triple. Many rules may
// match one cell; their properties merge per-property with the later-declared
// rule winning each conflict. Properties are strings so that "mentioned" and
// "unset" stay distinguishable — a later rule can explicitly reset a weight
// to "normal".
// ============================================================================

// Align is a horizontal cell alignment.
type Align int

const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Props is a set of visual properties for one cell. Empty fields are
// unmentioned and fall through to column-level, then table-level defaults.
type Props struct {
	Fill      string // background color, e.g. "#fde68a" or "red"
	Color     string // text color
	Weight    string // font weight: "bold", "normal"
	FontStyle string // "italic", "normal"
	Size      string // font size, e.g. "13px"
	Border    string // CSS border shorthand, e.g. "1px solid #333"
}

// IsZero reports whether no property is mentioned.
func (p Props) IsZero() bool { return p == Props{} }

// merge overlays src onto dst: every property src mentions wins.
func (p Props) merge(src Props) Props {
	if src.Fill != "" {
		p.Fill = src.Fill
	}
	if src.Color != "" {
		p.Color = src.Color
	}
	if src.Weight != "" {
		p.Weight = src.Weight
	}
	if src.FontStyle != "" {
		p.FontStyle = src.FontStyle
	}
	if src.Size != "" {
		p.Size = src.Size
	}
	if src.Border != "" {
		p.Border = src.Border
	}
	return p
}

// ============================================================================
// SELECTORS
// ============================================================================

// Scope says which cells of the selected columns a rule targets.
type Scope int

const (
	ScopeBody Scope = iota
	ScopeColumnLabels
)

// Selector picks target cells by column and scope. An empty column list
// selects every column.
type Selector struct {
	Columns []string
	Scope   Scope
}

// Cells selects body cells of the given columns (all columns when empty).
func Cells(cols ...string) Selector {
	return Selector{Columns: cols, Scope: ScopeBody}
}

// Labels selects the column-label header cells of the given columns.
func Labels(cols ...string) Selector {
	return Selector{Columns: cols, Scope: ScopeColumnLabels}
}

func (s Selector) matchesColumn(col string) bool {
	if len(s.Columns) == 0 {
		return true
	}
	for _, c := range s.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// ============================================================================
// PREDICATES
// ============================================================================

// Cell is the evaluation context handed to predicate closures: the cell's
// value and coordinates, its siblings in the same row, and the precomputed
// column statistics for the whole table.
type Cell struct {
	Column string
	Value  Value
	Row    Row
	Stats  *Stats
}

// Predicate decides whether a style rule applies to a cell. The zero
// Predicate always matches. Predicates read the rendered row's values and
// may reference sibling columns and column-level aggregates; they never
// mutate anything, so resolution stays deterministic.
type Predicate struct {
	code string
	fn   func(Cell) bool
}

// Where builds a predicate from an expression evaluated per cell. The
// expression sees every column of the row by name, the current cell as
// `value`, and the column aggregate functions mean, min, max, sum, median,
// and count:
//
//	table.Where(`price > mean("price")`)
//	table.Where(`value == max("total") && type != "B"`)
//
// Expressions are compiled once per render pass, against statistics that are
// precomputed before the render walk begins.
func Where(code string) Predicate {
	return Predicate{code: code}
}

// WhereFunc builds a predicate from a Go closure.
func WhereFunc(fn func(Cell) bool) Predicate {
	return Predicate{fn: fn}
}

// Always matches every cell. Same as the zero Predicate.
func Always() Predicate { return Predicate{} }

func (p Predicate) isAlways() bool { return p.code == "" && p.fn == nil }
