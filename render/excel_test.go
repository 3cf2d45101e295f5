package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tabula-org/tabula/table"
)

// ============================================================================
// EXCEL RENDERER TESTS
// ============================================================================

func openWorkbook(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExcelRoundTrip(t *testing.T) {
	ds := table.NewDataset("name", "price")
	ds.Append(table.String("anvil"), table.Number(1250.5))
	ds.Append(table.String("rope"), table.Number(12))

	spec := table.New(ds).Format("price", table.Currency("$", 2))

	var buf bytes.Buffer
	require.NoError(t, Excel(spec, &buf))

	f := openWorkbook(t, &buf)
	require.Contains(t, f.GetSheetList(), "Report")

	// Row 1 is the label row (no title, no spanners).
	got := func(cell string) string {
		v, err := f.GetCellValue("Report", cell)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "name", got("A1"))
	assert.Equal(t, "price", got("B1"))
	assert.Equal(t, "anvil", got("A2"))
	assert.Equal(t, "$1,250.50", got("B2"))
	assert.Equal(t, "$12.00", got("B3"))
}

func TestExcelTitleAndGroupHeadings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Excel(demoSpec(), &buf))

	f := openWorkbook(t, &buf)
	v, err := f.GetCellValue("Report", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Sales", v)

	// Title, label row, then the first group heading.
	v, err = f.GetCellValue("Report", "A3")
	require.NoError(t, err)
	assert.Equal(t, "West", v)
}

func TestExcelSpannerMerge(t *testing.T) {
	ds := table.NewDataset("name", "q1", "q2")
	ds.Append(table.String("a"), table.Number(1), table.Number(2))

	var buf bytes.Buffer
	require.NoError(t, Excel(table.New(ds).Spanner("Quarters", "q1", "q2"), &buf))

	f := openWorkbook(t, &buf)
	v, err := f.GetCellValue("Report", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Quarters", v)

	merged, err := f.GetMergeCells("Report")
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "B1", merged[0].GetStartAxis())
	assert.Equal(t, "C1", merged[0].GetEndAxis())
}

func TestExcelCustomSheetName(t *testing.T) {
	ds := table.NewDataset("a")
	ds.Append(table.Number(1))

	var buf bytes.Buffer
	require.NoError(t, Excel(table.New(ds), &buf, WithSheetName("Q3")))

	f := openWorkbook(t, &buf)
	assert.Contains(t, f.GetSheetList(), "Q3")
}

func TestExcelWritesNothingOnInvalidSpec(t *testing.T) {
	ds := table.NewDataset("a")
	ds.Append(table.Number(1))

	var buf bytes.Buffer
	require.Error(t, Excel(table.New(ds).Bar("a", true).Sparkline("a"), &buf))
	assert.Zero(t, buf.Len())
}
