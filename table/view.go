package table

// ============================================================================
// DATA VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns consumer data. It reads through this interface.
//
// Implementations:
//   Dataset     — concrete row store (CSV, ad-hoc construction)
//   SubView     — filtered subset (indices into parent, zero-copy)
//   Adapter[T]  — reads typed structs via accessor functions (zero-copy)
//
// Consumers register accessors once; the engine reads many times during
// aggregation, statistics, and rendering.
// ============================================================================

// DataView provides indexed access to tabular data.
// Cell is called in tight loops during grouping and rendering — keep
// implementations fast.
type DataView interface {
	Len() int
	Columns() []string
	Cell(row int, col string) Value
}

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a subset of a parent DataView.
// Holds indices into the parent — no data copy.
type SubView struct {
	parent  DataView
	indices []int
}

// NewSubView creates a view over the given parent row indices.
func NewSubView(parent DataView, indices []int) *SubView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Cell(i int, col string) Value {
	if i < 0 || i >= len(v.indices) {
		return Missing()
	}
	return v.parent.Cell(v.indices[i], col)
}

func (v *SubView) Columns() []string { return v.parent.Columns() }

// ============================================================================
// ADAPTER — Zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := table.NewAdapter[Sale]().
//	    Column("type", func(s Sale) table.Value { return table.String(s.Type) }).
//	    Column("price", func(s Sale) table.Value { return table.Number(s.Price) })
//
//	view := adapter.Bind(sales)
//	spec := table.New(view)
//
// ============================================================================

// Adapter builds a DataView from typed structs.
// Declare once, bind many times.
type Adapter[T any] struct {
	order     []string
	accessors map[string]func(T) Value
}

// NewAdapter creates a new adapter for type T.
func NewAdapter[T any]() *Adapter[T] {
	return &Adapter[T]{accessors: make(map[string]func(T) Value)}
}

// Column registers a column accessor. Registration order is column order.
func (a *Adapter[T]) Column(name string, fn func(T) Value) *Adapter[T] {
	if _, exists := a.accessors[name]; !exists {
		a.order = append(a.order, name)
	}
	a.accessors[name] = fn
	return a
}

// Bind creates a DataView over a data slice. Zero-copy — holds reference.
func (a *Adapter[T]) Bind(data []T) DataView {
	return &typedView[T]{data: data, order: a.order, accessors: a.accessors}
}

type typedView[T any] struct {
	data      []T
	order     []string
	accessors map[string]func(T) Value
}

func (v *typedView[T]) Len() int { return len(v.data) }

func (v *typedView[T]) Cell(i int, col string) Value {
	if i < 0 || i >= len(v.data) {
		return Missing()
	}
	if fn, ok := v.accessors[col]; ok {
		return fn(v.data[i])
	}
	return Missing()
}

func (v *typedView[T]) Columns() []string { return v.order }
