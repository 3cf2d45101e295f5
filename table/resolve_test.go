package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// STYLE RESOLUTION TESTS
// ============================================================================

func resolveSales(t *testing.T, spec Spec) *Plan {
	t.Helper()
	plan, err := spec.Finalize()
	require.NoError(t, err)
	return plan
}

func stylesData() *Dataset {
	ds := NewDataset("name", "price")
	ds.Append(String("anvil"), Number(10))
	ds.Append(String("rope"), Number(250))
	ds.Append(String("safe"), Number(60))
	return ds
}

func TestLaterRuleWinsPerProperty(t *testing.T) {
	// Rule one paints price cells red and bold; rule two repaints them blue
	// but says nothing about weight. The later rule wins only the property
	// it mentions.
	spec := New(stylesData()).
		Style(Cells("price"), Always(), Props{Color: "red", Weight: "bold"}).
		Style(Cells("price"), Always(), Props{Color: "blue"})

	plan := resolveSales(t, spec)
	got := plan.Groups[0].Subs[0].Rows[0].Cells[1].Props
	assert.Equal(t, "blue", got.Color)
	assert.Equal(t, "bold", got.Weight)
}

func TestExpressionPredicateAgainstColumnAggregate(t *testing.T) {
	spec := New(stylesData()).
		Style(Cells("price"), Where(`value > mean("price")`), Props{Fill: "#ffe"})

	plan := resolveSales(t, spec)
	rows := plan.Groups[0].Subs[0].Rows
	// mean = (10+250+60)/3 ≈ 106.7; only 250 exceeds it.
	assert.Empty(t, rows[0].Cells[1].Props.Fill)
	assert.Equal(t, "#ffe", rows[1].Cells[1].Props.Fill)
	assert.Empty(t, rows[2].Cells[1].Props.Fill)
}

func TestPredicateSeesSiblingColumns(t *testing.T) {
	spec := New(stylesData()).
		Style(Cells("price"), Where(`name == "rope"`), Props{Weight: "bold"})

	plan := resolveSales(t, spec)
	rows := plan.Groups[0].Subs[0].Rows
	assert.Empty(t, rows[0].Cells[1].Props.Weight)
	assert.Equal(t, "bold", rows[1].Cells[1].Props.Weight)
}

func TestAllTiedMaximaHighlighted(t *testing.T) {
	ds := NewDataset("name", "v")
	ds.Append(String("a"), Number(9))
	ds.Append(String("b"), Number(9))
	ds.Append(String("c"), Number(3))

	spec := New(ds).
		Style(Cells("v"), Where(`value == max("v")`), Props{Fill: "gold"})

	plan := resolveSales(t, spec)
	rows := plan.Groups[0].Subs[0].Rows
	assert.Equal(t, "gold", rows[0].Cells[1].Props.Fill)
	assert.Equal(t, "gold", rows[1].Cells[1].Props.Fill)
	assert.Empty(t, rows[2].Cells[1].Props.Fill)
}

func TestClosurePredicate(t *testing.T) {
	spec := New(stylesData()).
		Style(Cells("price"), WhereFunc(func(c Cell) bool {
			return c.Value.Float() < c.Stats.MedianOf("price")
		}), Props{Color: "grey"})

	plan := resolveSales(t, spec)
	rows := plan.Groups[0].Subs[0].Rows
	// median = 60; only 10 is below it.
	assert.Equal(t, "grey", rows[0].Cells[1].Props.Color)
	assert.Empty(t, rows[1].Cells[1].Props.Color)
	assert.Empty(t, rows[2].Cells[1].Props.Color)
}

func TestDefaultsFallThrough(t *testing.T) {
	spec := New(stylesData()).
		Default(Props{Color: "black", Size: "12px"}).
		ColumnDefault("price", Props{Color: "navy"}).
		Style(Cells("price"), Where(`value == 250`), Props{Color: "red"})

	plan := resolveSales(t, spec)
	rows := plan.Groups[0].Subs[0].Rows

	// Unmatched cell: column default beats table default per property.
	assert.Equal(t, "navy", rows[0].Cells[1].Props.Color)
	assert.Equal(t, "12px", rows[0].Cells[1].Props.Size)
	// Matched cell: rule beats both defaults.
	assert.Equal(t, "red", rows[1].Cells[1].Props.Color)
	// Other column gets the table default only.
	assert.Equal(t, "black", rows[0].Cells[0].Props.Color)
}

func TestEmptySelectorTargetsEveryColumn(t *testing.T) {
	spec := New(stylesData()).
		Style(Cells(), Always(), Props{FontStyle: "italic"})

	plan := resolveSales(t, spec)
	for _, cell := range plan.Groups[0].Subs[0].Rows[0].Cells {
		assert.Equal(t, "italic", cell.Props.FontStyle)
	}
}

func TestLabelRulesOnlyHitHeaders(t *testing.T) {
	spec := New(stylesData()).
		Style(Labels("price"), Always(), Props{Weight: "bold"})

	plan := resolveSales(t, spec)
	assert.Equal(t, "bold", plan.LabelRow[1].Props.Weight)
	assert.Empty(t, plan.LabelRow[0].Props.Weight)
	assert.Empty(t, plan.Groups[0].Subs[0].Rows[0].Cells[1].Props.Weight)
}

func TestBadExpressionFailsAtFinalize(t *testing.T) {
	spec := New(stylesData()).
		Style(Cells("price"), Where(`value >`), Props{Color: "red"})

	_, err := spec.Finalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "style directive at position 0")
}

func TestNonBoolExpressionFails(t *testing.T) {
	spec := New(stylesData()).
		Style(Cells("price"), Where(`value + 1`), Props{Color: "red"})

	_, err := spec.Finalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected bool")
}

func TestPredicateNeverMatchesMissingCells(t *testing.T) {
	ds := NewDataset("name", "v")
	ds.Append(String("a"), Number(10))
	ds.Append(String("b"), Missing())

	spec := New(ds).Style(Cells("v"), Where(`value < 15`), Props{Color: "red"})
	plan, err := spec.Finalize()
	require.NoError(t, err)

	rows := plan.Groups[0].Subs[0].Rows
	assert.Equal(t, "red", rows[0].Cells[1].Props.Color)
	// A missing cell renders the placeholder; no comparison matches it and
	// no predicate aborts the render over it.
	assert.Empty(t, rows[1].Cells[1].Props.Color)
}

func TestResolutionIsDeterministic(t *testing.T) {
	spec := New(stylesData()).
		Style(Cells("price"), Where(`value >= median("price")`), Props{Fill: "#eee"}).
		Style(Cells(), Where(`name != "safe"`), Props{Color: "#333"})

	p1, err := spec.Finalize()
	require.NoError(t, err)
	p2, err := spec.Finalize()
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}
