package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tabula-org/tabula/table"
)

// ============================================================================
// EXCEL RENDERER — Spreadsheet Target
// ============================================================================
// Spanners become merged header cells, resolved props become cell styles,
// and column widths carry over. The workbook is assembled fully in memory
// and written to the sink in one call, so a failing render writes nothing.
// ============================================================================

// ExcelOption configures the spreadsheet renderer.
type ExcelOption func(*excelConfig)

type excelConfig struct {
	sheet string
}

// WithSheetName overrides the worksheet name (default "Report").
func WithSheetName(name string) ExcelOption {
	return func(c *excelConfig) { c.sheet = name }
}

// Excel renders the spec as an xlsx workbook.
func Excel(spec table.Spec, w io.Writer, opts ...ExcelOption) error {
	cfg := &excelConfig{sheet: "Report"}
	for _, opt := range opts {
		opt(cfg)
	}

	plan, err := spec.Finalize()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", cfg.sheet); err != nil {
		return err
	}

	x := &excelWriter{f: f, sheet: cfg.sheet, plan: plan, styles: make(map[excelStyleKey]int)}
	if err := x.write(); err != nil {
		return err
	}
	return f.Write(w)
}

type excelStyleKey struct {
	props  table.Props
	align  table.Align
	header bool
}

type excelWriter struct {
	f      *excelize.File
	sheet  string
	plan   *table.Plan
	styles map[excelStyleKey]int
	row    int // current 1-based row
}

func (x *excelWriter) write() error {
	x.row = 1
	width := len(x.plan.Columns)

	if x.plan.Title != "" {
		if err := x.mergedRow(x.plan.Title, width, table.Props{Weight: "bold", Size: "14px"}); err != nil {
			return err
		}
	}

	for _, row := range x.plan.SpannerRows {
		col := 1
		for _, cell := range row {
			if cell.Text != "" {
				if err := x.setCell(col, cell.Text, table.Props{Weight: "bold"}, table.AlignCenter, true); err != nil {
					return err
				}
				if cell.Span > 1 {
					lo, _ := excelize.CoordinatesToCellName(col, x.row)
					hi, _ := excelize.CoordinatesToCellName(col+cell.Span-1, x.row)
					if err := x.f.MergeCell(x.sheet, lo, hi); err != nil {
						return err
					}
				}
			}
			col += cell.Span
		}
		x.row++
	}

	for i, cell := range x.plan.LabelRow {
		colSpec := x.plan.Columns[i]
		text := cell.Text + markerSuffix(cell.Markers)
		if err := x.setCell(i+1, text, cell.Props, colSpec.Align, true); err != nil {
			return err
		}
	}
	x.row++

	for _, group := range x.plan.Groups {
		if group.Label != "" {
			if err := x.mergedRow(group.Label, width, table.Props{Weight: "bold", Fill: "#F1F3F5"}); err != nil {
				return err
			}
		}
		for _, sub := range group.Subs {
			if sub.Label != "" {
				if err := x.mergedRow("  "+sub.Label, width, table.Props{FontStyle: "italic"}); err != nil {
					return err
				}
			}
			for _, row := range sub.Rows {
				if err := x.bodyRow(row); err != nil {
					return err
				}
			}
		}
		for _, row := range group.Summary {
			if err := x.bodyRow(row); err != nil {
				return err
			}
		}
	}
	for _, row := range x.plan.GrandSummary {
		if err := x.bodyRow(row); err != nil {
			return err
		}
	}

	if len(x.plan.Footnotes) > 0 {
		x.row++ // blank separator
		for i, note := range x.plan.Footnotes {
			if err := x.mergedRow(fmt.Sprintf("%d. %s", i+1, note), width, table.Props{Size: "10px", Color: "#6C757D"}); err != nil {
				return err
			}
		}
	}

	return x.setWidths()
}

func (x *excelWriter) bodyRow(row table.PlanRow) error {
	for i, cell := range row.Cells {
		col := x.plan.Columns[i]
		text := cell.Text
		if cell.Viz != nil && cell.Viz.Kind == table.VizSpark {
			text = unicodeSpark(cell.Viz.Points)
		}
		text += markerSuffix(cell.Markers)
		if err := x.setCell(i+1, text, cell.Props, col.Align, false); err != nil {
			return err
		}
	}
	x.row++
	return nil
}

// mergedRow writes one full-width row with a single merged cell.
func (x *excelWriter) mergedRow(text string, width int, props table.Props) error {
	if err := x.setCell(1, text, props, table.AlignLeft, false); err != nil {
		return err
	}
	if width > 1 {
		lo, _ := excelize.CoordinatesToCellName(1, x.row)
		hi, _ := excelize.CoordinatesToCellName(width, x.row)
		if err := x.f.MergeCell(x.sheet, lo, hi); err != nil {
			return err
		}
	}
	x.row++
	return nil
}

func (x *excelWriter) setCell(col int, text string, props table.Props, align table.Align, header bool) error {
	name, err := excelize.CoordinatesToCellName(col, x.row)
	if err != nil {
		return err
	}
	if err := x.f.SetCellValue(x.sheet, name, text); err != nil {
		return err
	}
	styleID, err := x.styleID(props, align, header)
	if err != nil {
		return err
	}
	return x.f.SetCellStyle(x.sheet, name, name, styleID)
}

// styleID builds (and caches) an excelize style for a Props/align pair.
func (x *excelWriter) styleID(props table.Props, align table.Align, header bool) (int, error) {
	key := excelStyleKey{props: props, align: align, header: header}
	if id, ok := x.styles[key]; ok {
		return id, nil
	}

	style := &excelize.Style{
		Font:      &excelize.Font{},
		Alignment: &excelize.Alignment{Horizontal: excelAlign(align), Vertical: "center"},
	}
	if props.Weight == "bold" || header {
		style.Font.Bold = true
	}
	if props.FontStyle == "italic" {
		style.Font.Italic = true
	}
	if props.Color != "" {
		style.Font.Color = strings.TrimPrefix(props.Color, "#")
	}
	if px, ok := parsePx(props.Size); ok {
		style.Font.Size = float64(px) * 0.75 // px → pt
	}
	if props.Fill != "" {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{strings.TrimPrefix(props.Fill, "#")},
		}
	}
	if header {
		style.Border = []excelize.Border{{Type: "bottom", Style: 2, Color: "ADB5BD"}}
	}

	id, err := x.f.NewStyle(style)
	if err != nil {
		return 0, err
	}
	x.styles[key] = id
	return id, nil
}

func (x *excelWriter) setWidths() error {
	for i, col := range x.plan.Columns {
		if col.WidthPx == 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		// Rough px → character-width conversion.
		if err := x.f.SetColWidth(x.sheet, name, name, float64(col.WidthPx)/7.0); err != nil {
			return err
		}
	}
	return nil
}

func excelAlign(a table.Align) string {
	switch a {
	case table.AlignRight:
		return "right"
	case table.AlignCenter:
		return "center"
	default:
		return "left"
	}
}

func parsePx(size string) (int, bool) {
	s := strings.TrimSuffix(size, "px")
	if s == "" {
		return 0, false
	}
	px, err := strconv.Atoi(s)
	if err != nil || px <= 0 {
		return 0, false
	}
	return px, true
}

func markerSuffix(markers []int) string {
	var b strings.Builder
	for _, m := range markers {
		fmt.Fprintf(&b, " [%d]", m)
	}
	return b.String()
}
