package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// AGGREGATION TESTS
// ============================================================================

func salesView() *Dataset {
	ds := NewDataset("type", "item", "price")
	ds.Append(String("A"), String("a1"), Number(10))
	ds.Append(String("B"), String("b1"), Number(5))
	ds.Append(String("A"), String("a2"), Number(20))
	return ds
}

func TestAggregateSumFirstSeenOrder(t *testing.T) {
	out, err := Aggregate(salesView(), []string{"type"}, []AggColumn{
		{Name: "total", Source: "price", Reduce: Sum},
	})
	require.NoError(t, err)

	require.Equal(t, 2, out.Len())
	assert.Equal(t, []string{"type", "total"}, out.Columns())

	// "A" appears first in the input, so it leads the output.
	assert.Equal(t, "A", out.Cell(0, "type").Text())
	assert.Equal(t, 30.0, out.Cell(0, "total").Float())
	assert.Equal(t, "B", out.Cell(1, "type").Text())
	assert.Equal(t, 5.0, out.Cell(1, "total").Float())
}

func TestAggregateEveryRowInExactlyOneGroup(t *testing.T) {
	out, err := Aggregate(salesView(), []string{"type"}, []AggColumn{
		{Name: "n", Reduce: Count},
	})
	require.NoError(t, err)

	total := 0
	for i := 0; i < out.Len(); i++ {
		total += int(out.Cell(i, "n").Float())
	}
	assert.Equal(t, 3, total)
}

func TestAggregatePercentOfTotal(t *testing.T) {
	ds := NewDataset("region", "revenue")
	ds.Append(String("W"), Number(20))
	ds.Append(String("E"), Number(30))
	ds.Append(String("S"), Number(50))

	out, err := Aggregate(ds, []string{"region"}, []AggColumn{
		{Name: "share", Source: "revenue", Reduce: PercentOfTotal},
	})
	require.NoError(t, err)

	// The denominator is the ungrouped grand total, so the shares sum to 100
	// regardless of group order.
	var sum float64
	for i := 0; i < out.Len(); i++ {
		sum += out.Cell(i, "share").Float()
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
	assert.InDelta(t, 20.0, out.Cell(0, "share").Float(), 1e-9)
	assert.InDelta(t, 50.0, out.Cell(2, "share").Float(), 1e-9)
}

func TestAggregateMedian(t *testing.T) {
	ds := NewDataset("g", "v")
	ds.Append(String("x"), Number(1))
	ds.Append(String("x"), Number(9))
	ds.Append(String("x"), Number(3))
	ds.Append(String("y"), Number(4))
	ds.Append(String("y"), Number(8))

	out, err := Aggregate(ds, []string{"g"}, []AggColumn{
		{Name: "med", Source: "v", Reduce: Median},
	})
	require.NoError(t, err)

	assert.Equal(t, 3.0, out.Cell(0, "med").Float()) // odd count
	assert.Equal(t, 6.0, out.Cell(1, "med").Float()) // even count, midpoint
}

func TestAggregateFirstSkipsMissing(t *testing.T) {
	ds := NewDataset("g", "v")
	ds.Append(String("x"), Missing())
	ds.Append(String("x"), String("hello"))

	out, err := Aggregate(ds, []string{"g"}, []AggColumn{
		{Name: "first", Source: "v", Reduce: First},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Cell(0, "first").Text())
}

func TestAggregateCompositeKey(t *testing.T) {
	ds := NewDataset("a", "b", "v")
	ds.Append(String("x"), String("1"), Number(1))
	ds.Append(String("x"), String("2"), Number(2))
	ds.Append(String("x"), String("1"), Number(3))

	out, err := Aggregate(ds, []string{"a", "b"}, []AggColumn{
		{Name: "total", Source: "v", Reduce: Sum},
	})
	require.NoError(t, err)

	// One row per distinct (a, b) combination.
	require.Equal(t, 2, out.Len())
	assert.Equal(t, 4.0, out.Cell(0, "total").Float())
	assert.Equal(t, 2.0, out.Cell(1, "total").Float())
}

func TestAggregateEmptyKeySingleGroup(t *testing.T) {
	out, err := Aggregate(salesView(), nil, []AggColumn{
		{Name: "total", Source: "price", Reduce: Sum},
	})
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, 35.0, out.Cell(0, "total").Float())
}

func TestAggregateNumericReductionOnTextColumn(t *testing.T) {
	_, err := Aggregate(salesView(), []string{"type"}, []AggColumn{
		{Name: "oops", Source: "item", Reduce: Sum},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidReduction))

	var ire *InvalidReductionError
	require.True(t, errors.As(err, &ire))
	assert.Equal(t, "item", ire.Column)
}

func TestAggregateUnknownSourceColumn(t *testing.T) {
	_, err := Aggregate(salesView(), []string{"type"}, []AggColumn{
		{Name: "oops", Source: "nope", Reduce: Sum},
	})
	assert.True(t, errors.Is(err, ErrInvalidReduction))
}

func TestAggregateEmptyGroupPolicy(t *testing.T) {
	ds := NewDataset("g", "v")
	ds.Append(String("x"), Number(1))
	ds.Append(String("y"), Missing())

	// Default: the empty group survives with a missing cell.
	out, err := Aggregate(ds, []string{"g"}, []AggColumn{
		{Name: "total", Source: "v", Reduce: Sum},
	})
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.True(t, out.Cell(1, "total").IsMissing())

	// ForbidEmptyGroups turns it into an error naming the group.
	_, err = Aggregate(ds, []string{"g"}, []AggColumn{
		{Name: "total", Source: "v", Reduce: Sum},
	}, ForbidEmptyGroups())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyGroup))

	var ege *EmptyGroupError
	require.True(t, errors.As(err, &ege))
	assert.Equal(t, "y", ege.Key)
}

func TestAggregateCountIncludesMissing(t *testing.T) {
	ds := NewDataset("g", "v")
	ds.Append(String("x"), Number(1))
	ds.Append(String("x"), Missing())

	out, err := Aggregate(ds, []string{"g"}, []AggColumn{
		{Name: "n", Reduce: Count},
		{Name: "total", Source: "v", Reduce: Sum},
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.Cell(0, "n").Float())
	assert.Equal(t, 1.0, out.Cell(0, "total").Float())
}

func TestPartitionLabelJoinsCompositeKeys(t *testing.T) {
	ds := NewDataset("a", "b")
	ds.Append(String("x"), String("1"))

	groups := partition(ds, []string{"a", "b"})
	require.Len(t, groups, 1)
	assert.Equal(t, "x / 1", groups[0].label())
}
