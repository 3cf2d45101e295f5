package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/tabula-org/tabula/table"
)

// ============================================================================
// TEXT RENDERER — Secondary Target
// ============================================================================
// Renders the plan as a bordered plain-text table. Styling degrades to
// alignment, weight, and terminal colors; sparklines degrade to unicode
// block runs and bars to the formatted value.
// ============================================================================

// sparkBlocks are the glyphs a normalized point quantizes to.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

type textRowKind int

const (
	rowBody textRowKind = iota
	rowGroup
	rowSubgroup
	rowSummary
)

type textRow struct {
	kind  textRowKind
	props []table.Props
}

// Text renders the spec as plain text. Nothing is written to w unless
// validation and materialization fully succeed.
func Text(spec table.Spec, w io.Writer) error {
	plan, err := spec.Finalize()
	if err != nil {
		return err
	}

	// Header labels keep their footnote markers; the legend below the table
	// is useless without them.
	headers := make([]string, len(plan.Columns))
	for i, col := range plan.Columns {
		headers[i] = col.Label
		if i < len(plan.LabelRow) {
			for _, m := range plan.LabelRow[i].Markers {
				headers[i] += fmt.Sprintf("[%d]", m)
			}
		}
	}

	var rows [][]string
	var meta []textRow

	addRow := func(cells []string, kind textRowKind, props []table.Props) {
		rows = append(rows, cells)
		meta = append(meta, textRow{kind: kind, props: props})
	}

	fullWidth := func(label string) []string {
		cells := make([]string, len(plan.Columns))
		cells[0] = label
		return cells
	}

	for _, group := range plan.Groups {
		if group.Label != "" {
			addRow(fullWidth(group.Label), rowGroup, nil)
		}
		for _, sub := range group.Subs {
			if sub.Label != "" {
				addRow(fullWidth("  "+sub.Label), rowSubgroup, nil)
			}
			for _, row := range sub.Rows {
				addRow(textCells(row, plan), rowBody, rowProps(row))
			}
		}
		for _, row := range group.Summary {
			addRow(textCells(row, plan), rowSummary, rowProps(row))
		}
	}
	for _, row := range plan.GrandSummary {
		addRow(textCells(row, plan), rowSummary, rowProps(row))
	}

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			if col >= 0 && col < len(plan.Columns) {
				st = st.Align(lipglossAlign(plan.Columns[col].Align))
			}
			if row == ltable.HeaderRow {
				return st.Bold(true)
			}
			if row < 0 || row >= len(meta) {
				return st
			}
			m := meta[row]
			switch m.kind {
			case rowGroup:
				return st.Bold(true).Align(lipgloss.Left)
			case rowSubgroup:
				return st.Italic(true).Align(lipgloss.Left)
			case rowSummary:
				return st.Bold(true)
			}
			if m.props != nil && col >= 0 && col < len(m.props) {
				st = propStyle(st, m.props[col])
			}
			return st
		})

	var b strings.Builder
	if plan.Title != "" {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(plan.Title))
		b.WriteByte('\n')
	}
	for _, row := range plan.SpannerRows {
		b.WriteString(spannerLine(row, plan))
	}
	b.WriteString(t.Render())
	b.WriteByte('\n')
	for i, note := range plan.Footnotes {
		fmt.Fprintf(&b, "%d. %s\n", i+1, note)
	}

	_, err = io.WriteString(w, b.String())
	return err
}

// spannerLine degrades one spanner header row to a text line naming each
// spanner and the column labels it covers. Plain text has no colspan, so the
// grouping moves above the table the way the title does.
func spannerLine(row []table.HeaderCell, plan *table.Plan) string {
	var parts []string
	i := 0
	for _, cell := range row {
		if cell.Text != "" {
			labels := make([]string, 0, cell.Span)
			for j := i; j < i+cell.Span && j < len(plan.Columns); j++ {
				labels = append(labels, plan.Columns[j].Label)
			}
			parts = append(parts, fmt.Sprintf("%s: %s",
				lipgloss.NewStyle().Bold(true).Render(cell.Text),
				strings.Join(labels, ", ")))
		}
		i += cell.Span
	}
	return strings.Join(parts, "   ") + "\n"
}

func textCells(row table.PlanRow, plan *table.Plan) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		text := cell.Text
		if cell.Viz != nil && cell.Viz.Kind == table.VizSpark {
			text = unicodeSpark(cell.Viz.Points)
		}
		for _, m := range cell.Markers {
			text += fmt.Sprintf("[%d]", m)
		}
		cells[i] = text
	}
	return cells
}

func rowProps(row table.PlanRow) []table.Props {
	props := make([]table.Props, len(row.Cells))
	for i, cell := range row.Cells {
		props[i] = cell.Props
	}
	return props
}

func propStyle(st lipgloss.Style, p table.Props) lipgloss.Style {
	if p.Weight == "bold" {
		st = st.Bold(true)
	}
	if p.FontStyle == "italic" {
		st = st.Italic(true)
	}
	if p.Color != "" {
		st = st.Foreground(lipgloss.Color(p.Color))
	}
	if p.Fill != "" {
		st = st.Background(lipgloss.Color(p.Fill))
	}
	return st
}

func lipglossAlign(a table.Align) lipgloss.Position {
	switch a {
	case table.AlignRight:
		return lipgloss.Right
	case table.AlignCenter:
		return lipgloss.Center
	default:
		return lipgloss.Left
	}
}

// unicodeSpark quantizes normalized points into block glyphs.
func unicodeSpark(points []float64) string {
	var b strings.Builder
	for _, p := range points {
		idx := int(p * float64(len(sparkBlocks)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}
