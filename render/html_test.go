package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabula-org/tabula/table"
)

// ============================================================================
// HTML RENDERER TESTS
// ============================================================================

func demoSpec() table.Spec {
	ds := table.NewDataset("region", "rep", "revenue")
	ds.Append(table.String("West"), table.String("Avery"), table.Number(1000))
	ds.Append(table.String("East"), table.String("Riley"), table.Number(250.5))

	return table.New(ds).
		Title("Quarterly Sales").
		GroupBy("region").
		Format("revenue", table.Currency("$", 2)).
		Style(table.Cells("revenue"), table.Where(`value == max("revenue")`), table.Props{Fill: "#fde68a"}).
		Footnote(table.Labels("revenue"), "Gross, before returns.").
		Summary(table.SummaryRow{Scope: table.TableScope, Reduce: table.Sum, Columns: []string{"revenue"}, Label: "Total"})
}

func TestHTMLRenderIsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, HTML(demoSpec(), &a))
	require.NoError(t, HTML(demoSpec(), &b))
	assert.Equal(t, a.String(), b.String(), "two renders of one spec must be byte-identical")
}

func TestHTMLStructure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(demoSpec(), &buf))
	out := buf.String()

	assert.Contains(t, out, `<caption>Quarterly Sales</caption>`)
	assert.Contains(t, out, `class="tabula-table"`)
	assert.Contains(t, out, `class="tabula-group"`)
	assert.Contains(t, out, "West")
	assert.Contains(t, out, "$1,000.00")
	assert.Contains(t, out, "$250.50")
	// Conditional fill only on the max cell.
	assert.Equal(t, 1, strings.Count(out, "background-color:#fde68a"))
	// Summary row with the subtotal of both groups.
	assert.Contains(t, out, `class="tabula-grand-summary"`)
	assert.Contains(t, out, "$1,250.50")
	// Footnote marker and legend.
	assert.Contains(t, out, `<sup class="tabula-marker">1</sup>`)
	assert.Contains(t, out, "<sup>1</sup> Gross, before returns.")
}

func TestHTMLWritesNothingOnInvalidSpec(t *testing.T) {
	ds := table.NewDataset("a")
	ds.Append(table.Number(1))
	spec := table.New(ds).Format("missing", table.Fixed(2))

	var buf bytes.Buffer
	err := HTML(spec, &buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, table.ErrUnknownColumn))
	assert.Zero(t, buf.Len(), "a failing render must not emit partial output")
}

func TestHTMLEscapesCellContent(t *testing.T) {
	ds := table.NewDataset("note")
	ds.Append(table.String(`<script>alert("x")</script>`))

	var buf bytes.Buffer
	require.NoError(t, HTML(table.New(ds), &buf))
	assert.NotContains(t, buf.String(), "<script>")
	assert.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestHTMLMarkdownLiteColumn(t *testing.T) {
	ds := table.NewDataset("note")
	ds.Append(table.String("a **bold** and *leaning* `call()`"))

	var buf bytes.Buffer
	require.NoError(t, HTML(table.New(ds).Format("note", table.Markdown()), &buf))
	out := buf.String()
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<em>leaning</em>")
	assert.Contains(t, out, "<code>call()</code>")
}

func TestHTMLSparklineSVG(t *testing.T) {
	ds := table.NewDataset("name", "trend")
	ds.Append(table.String("a"), table.Series(1, 3, 2))

	var buf bytes.Buffer
	require.NoError(t, HTML(table.New(ds), &buf))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "<polyline")
}

func TestHTMLBar(t *testing.T) {
	ds := table.NewDataset("name", "v")
	ds.Append(table.String("a"), table.Number(1))
	ds.Append(table.String("b"), table.Number(2))

	var buf bytes.Buffer
	require.NoError(t, HTML(table.New(ds).Bar("v", true), &buf))
	out := buf.String()
	assert.Contains(t, out, `class="tabula-bar-track"`)
	assert.Contains(t, out, `width:0.0%`)
	assert.Contains(t, out, `width:100.0%`)
}

func TestHTMLSpannerHeader(t *testing.T) {
	ds := table.NewDataset("name", "q1", "q2")
	ds.Append(table.String("a"), table.Number(1), table.Number(2))

	var buf bytes.Buffer
	require.NoError(t, HTML(table.New(ds).Spanner("Quarters", "q1", "q2"), &buf))
	assert.Contains(t, buf.String(), `<th colspan="2" class="tabula-spanner">Quarters</th>`)
}

func TestHTMLWithoutCSSAndCustomClass(t *testing.T) {
	ds := table.NewDataset("a")
	ds.Append(table.Number(1))

	var buf bytes.Buffer
	require.NoError(t, HTML(table.New(ds), &buf, WithoutCSS(), WithClass("report")))
	out := buf.String()
	assert.NotContains(t, out, "<style>")
	assert.Contains(t, out, `class="report-table"`)
}

func TestMarkdownLiteEscapesFirst(t *testing.T) {
	out := markdownLite("**<b>**")
	assert.Contains(t, out, "<strong>&lt;b&gt;</strong>")
}
