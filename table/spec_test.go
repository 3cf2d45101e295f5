package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// SPEC BUILDER TESTS
// ============================================================================

func TestBuilderVariantsDoNotAlias(t *testing.T) {
	ds := NewDataset("name", "price")
	ds.Append(String("widget"), Number(10))

	base := New(ds).Title("Base")
	a := base.Label("price", "Price (USD)")
	b := base.Label("price", "Cost")

	planBase, err := base.Finalize()
	require.NoError(t, err)
	planA, err := a.Finalize()
	require.NoError(t, err)
	planB, err := b.Finalize()
	require.NoError(t, err)

	// Each variant sees only its own directives.
	assert.Equal(t, "price", planBase.Columns[1].Label)
	assert.Equal(t, "Price (USD)", planA.Columns[1].Label)
	assert.Equal(t, "Cost", planB.Columns[1].Label)
}

func TestUnknownColumnReportsDirectivePosition(t *testing.T) {
	ds := NewDataset("a")
	ds.Append(Number(1))

	spec := New(ds).
		Title("t").                // position 0
		Format("missing", Fixed(2)) // position 1

	_, err := spec.Finalize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownColumn))

	var uce *UnknownColumnError
	require.True(t, errors.As(err, &uce))
	assert.Equal(t, "missing", uce.Column)
	assert.Equal(t, "format", uce.Directive)
	assert.Equal(t, 1, uce.Position)
}

func TestLaterFormatWins(t *testing.T) {
	ds := NewDataset("v")
	ds.Append(Number(1234.5))

	spec := New(ds).
		Format("v", Fixed(0)).
		Format("v", Currency("$", 2))

	plan, err := spec.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "$1,234.50", plan.Groups[0].Subs[0].Rows[0].Cells[0].Text)
}

func TestEmptyTableFailsWithoutAllowEmpty(t *testing.T) {
	spec := New(NewDataset("a"))
	_, err := spec.Finalize()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyTable))

	plan, err := spec.AllowEmpty().Finalize()
	require.NoError(t, err)
	assert.Empty(t, plan.Groups)
	assert.Len(t, plan.Columns, 1)
}

func TestNilDataFails(t *testing.T) {
	_, err := New(nil).Finalize()
	assert.True(t, errors.Is(err, ErrEmptyTable))
}

func TestGroupByThreeLevelsFails(t *testing.T) {
	ds := NewDataset("a", "b", "c", "v")
	ds.Append(String("x"), String("y"), String("z"), Number(1))

	_, err := New(ds).GroupBy("a", "b", "c").Finalize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "two grouping levels")
}

func TestGroupByConsumingEveryColumnFails(t *testing.T) {
	ds := NewDataset("a")
	ds.Append(String("x"))

	_, err := New(ds).GroupBy("a").Finalize()
	require.Error(t, err)
}

func TestFinalizeIsRepeatable(t *testing.T) {
	ds := NewDataset("g", "v")
	ds.Append(String("x"), Number(1))
	ds.Append(String("y"), Number(2))

	spec := New(ds).GroupBy("g").Format("v", Fixed(1))

	p1, err := spec.Finalize()
	require.NoError(t, err)
	p2, err := spec.Finalize()
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestDirectivesBeforeDataColumnsValidateAtRenderTime(t *testing.T) {
	// Directive order is declaration order; validation only happens at
	// Finalize, with the final column set.
	ds := NewDataset("later")
	ds.Append(Number(1))

	spec := New(ds).Align(AlignCenter, "later")
	plan, err := spec.Finalize()
	require.NoError(t, err)
	assert.Equal(t, AlignCenter, plan.Columns[0].Align)
}
