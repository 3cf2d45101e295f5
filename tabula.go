// Package tabula provides a declarative tabular presentation engine.
// Grammar-of-tables for any dataset.
//
// Usage:
//
//	import (
//	    "github.com/tabula-org/tabula/table"
//	    "github.com/tabula-org/tabula/render"
//	)
//
//	spec := table.New(data).
//	    Title("Quarterly Sales").
//	    GroupBy("region").
//	    Format("revenue", table.Currency("$", 2)).
//	    Style(table.Cells("revenue"), table.Where("value == max('revenue')"),
//	        table.Props{Fill: "#FDE68A"}).
//	    Summary(table.SummaryRow{Scope: table.GroupScope, Reduce: table.Sum,
//	        Columns: []string{"revenue"}, Label: "Subtotal"})
//
//	err := render.HTML(spec, w)
//
// The table package builds an immutable specification from chained
// directives; the render package materializes it to HTML, styled terminal
// text, or a spreadsheet. All validation happens when a renderer finalizes
// the spec, so directive chains never fail mid-build.
package tabula
