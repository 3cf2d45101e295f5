package table

// ============================================================================
// DATASET — Ordered Rows Over a Fixed Column Set
// ============================================================================
// A Dataset is the concrete row store most consumers start from. All rows
// share the same columns; column order is the declaration order and drives
// header order at render time. Dataset implements DataView so the engine
// never needs to know whether it is reading a Dataset, a SubView, or a
// typed adapter.
// ============================================================================

// Row maps column name to a typed cell.
type Row map[string]Value

// Dataset is an ordered sequence of rows sharing one column set.
type Dataset struct {
	cols []string
	rows []Row
}

// NewDataset creates an empty Dataset with the given column order.
func NewDataset(cols ...string) *Dataset {
	cp := make([]string, len(cols))
	copy(cp, cols)
	return &Dataset{cols: cp}
}

// Append adds one row from positional values, matched to the column order.
// Extra values are dropped; short rows are padded with missing values.
func (d *Dataset) Append(values ...Value) *Dataset {
	row := make(Row, len(d.cols))
	for i, col := range d.cols {
		if i < len(values) {
			row[col] = values[i]
		} else {
			row[col] = Missing()
		}
	}
	d.rows = append(d.rows, row)
	return d
}

// AppendRow adds one row from a column-keyed map. Columns absent from the
// map become missing cells; keys outside the column set are ignored.
func (d *Dataset) AppendRow(r Row) *Dataset {
	row := make(Row, len(d.cols))
	for _, col := range d.cols {
		if v, ok := r[col]; ok {
			row[col] = v
		} else {
			row[col] = Missing()
		}
	}
	d.rows = append(d.rows, row)
	return d
}

// FromRows creates a Dataset from pre-built rows.
func FromRows(cols []string, rows []Row) *Dataset {
	d := NewDataset(cols...)
	for _, r := range rows {
		d.AppendRow(r)
	}
	return d
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Columns returns the column names in declaration order.
func (d *Dataset) Columns() []string { return d.cols }

// Cell returns the value at row i, column col.
func (d *Dataset) Cell(i int, col string) Value {
	if i < 0 || i >= len(d.rows) {
		return Missing()
	}
	return d.rows[i][col]
}

// Row returns the full row at index i.
func (d *Dataset) Row(i int) Row {
	if i < 0 || i >= len(d.rows) {
		return nil
	}
	return d.rows[i]
}
