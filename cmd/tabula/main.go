package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tabula-org/tabula/helpers"
	"github.com/tabula-org/tabula/render"
	"github.com/tabula-org/tabula/table"
)

// ============================================================================
// TABULA CLI — Grammar-of-tables for any dataset
// ============================================================================

const version = "0.1.0"

func main() {
	// ── Flags ─────────────────────────────────────────────────────────────
	filePath := flag.String("file", "", "Path to CSV data file (omit to render the built-in demo dataset)")
	groupBy := flag.String("group", "", "Column to group rows by")
	title := flag.String("title", "", "Table title")
	format := flag.String("format", "text", "Output format: text, html, xlsx")
	outFile := flag.String("out", "", "Write output to file instead of stdout (required for xlsx)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Tabula — Grammar-of-tables for any dataset

Usage:
  tabula --format text
  tabula --file sales.csv --group region --title "Q3 Sales" --format html --out report.html
  tabula --file sales.csv --format xlsx --out report.xlsx

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Formats:
  text      Styled terminal table (default)
  html      Self-contained HTML document fragment
  xlsx      Excel workbook (requires --out)

Examples:
  # Quick look at a CSV in the terminal
  tabula --file sales.csv --group region

  # HTML report for Sheets/email
  tabula --file sales.csv --group region --format html --out report.html
`)
	}

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *showVersion {
		fmt.Printf("tabula %s\n", version)
		os.Exit(0)
	}

	if *format == "xlsx" && *outFile == "" {
		fmt.Fprintln(os.Stderr, "Error: --out is required for xlsx output")
		flag.Usage()
		os.Exit(1)
	}

	// ── Data ──────────────────────────────────────────────────────────────
	var (
		data *table.Dataset
		err  error
	)
	if *filePath != "" {
		raw, err := os.ReadFile(*filePath)
		if err != nil {
			fatalf("Failed to read file: %v", err)
		}
		data, err = helpers.ParseCSV(raw)
		if err != nil {
			fatalf("Failed to parse CSV: %v", err)
		}
		slog.Debug("parsed CSV", "rows", data.Len(), "columns", len(data.Columns()))
	} else {
		data = demoDataset()
		slog.Debug("using built-in demo dataset", "rows", data.Len())
	}

	// ── Spec ──────────────────────────────────────────────────────────────
	spec := buildSpec(data, *title, *groupBy, *filePath == "")

	// ── Output writer ─────────────────────────────────────────────────────
	writer := os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			fatalf("Failed to create output file: %v", err)
		}
		defer f.Close()
		writer = f
	}

	// ── Render ────────────────────────────────────────────────────────────
	switch *format {
	case "text":
		err = render.Text(spec, writer)
	case "html":
		err = render.HTML(spec, writer)
	case "xlsx":
		err = render.Excel(spec, writer)
	default:
		fatalf("Unknown format %q (want text, html, or xlsx)", *format)
	}
	if err != nil {
		fatalf("Render failed: %v", err)
	}
	if *outFile != "" {
		slog.Info("report written", "path", *outFile, "format", *format)
	}
}

// ============================================================================
// SPEC CONSTRUCTION
// ============================================================================

// buildSpec assembles the directive chain. The demo dataset gets the full
// treatment (currency, styling, summaries, sparkline); CSV input gets a
// plain table with optional grouping.
func buildSpec(data *table.Dataset, title, groupBy string, demo bool) table.Spec {
	spec := table.New(data)
	if title != "" {
		spec = spec.Title(title)
	}
	if groupBy != "" {
		spec = spec.GroupBy(groupBy)
	}
	if !demo {
		return spec
	}

	return spec.
		Title("Quarterly Sales by Region").
		GroupBy("region").
		Label("rep", "Sales Rep").
		Label("revenue", "Revenue").
		Label("units", "Units Sold").
		Label("margin", "Margin").
		Label("trend", "Weekly Trend").
		Format("revenue", table.Currency("$", 2)).
		Format("margin", table.Percent(1)).
		Align(table.AlignLeft, "rep").
		Spanner("Performance", "revenue", "units", "margin").
		Style(table.Cells("revenue"), table.Where("value == max('revenue')"),
			table.Props{Fill: "#FDE68A", Weight: "bold"}).
		Style(table.Cells("margin"), table.Where("value < 15"),
			table.Props{Color: "#DC2626"}).
		Sparkline("trend").
		Summary(table.SummaryRow{
			Scope:   table.GroupScope,
			Reduce:  table.Sum,
			Columns: []string{"revenue", "units"},
			Label:   "Subtotal",
		}).
		Summary(table.SummaryRow{
			Scope:   table.TableScope,
			Reduce:  table.Sum,
			Columns: []string{"revenue", "units"},
			Label:   "Grand Total",
		}).
		Footnote(table.Cells("margin"), "Margin below 15% flagged for review.").
		Placeholder("—")
}

// demoDataset returns a small sales table exercising every column kind.
// Margins are 0..100 scale, matching the as-is percent format.
func demoDataset() *table.Dataset {
	ds := table.NewDataset("region", "rep", "revenue", "units", "margin", "trend")
	ds.Append(table.String("West"), table.String("Avery"), table.Number(53200), table.Int(412), table.Number(22), table.Series(3, 5, 4, 7, 8))
	ds.Append(table.String("West"), table.String("Jordan"), table.Number(47800), table.Int(365), table.Number(19), table.Series(6, 4, 5, 5, 7))
	ds.Append(table.String("West"), table.String("Sam"), table.Number(31950), table.Int(290), table.Number(12), table.Series(4, 4, 3, 5, 4))
	ds.Append(table.String("East"), table.String("Riley"), table.Number(61400), table.Int(488), table.Number(25), table.Series(5, 6, 7, 7, 9))
	ds.Append(table.String("East"), table.String("Casey"), table.Number(28700), table.Int(241), table.Number(14), table.Series(3, 2, 4, 3, 3))
	ds.Append(table.String("South"), table.String("Morgan"), table.Number(45100), table.Int(377), table.Missing(), table.Series(4, 5, 5, 6, 6))
	return ds
}

// ============================================================================
// HELPERS
// ============================================================================

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
