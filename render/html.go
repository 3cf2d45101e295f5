// Package render turns a finalized table plan into output documents: styled
// HTML (the reference target), plain text (styling degraded to alignment),
// and xlsx spreadsheets.
//
// Every renderer validates and materializes the spec first and only then
// touches the sink, so a failing render writes nothing.
package render

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/tabula-org/tabula/table"
)

// ============================================================================
// HTML RENDERER — Reference Target
// ============================================================================
// Emits a <table> with inline style attributes computed by the style
// resolver, inline SVG sparklines, scaled div bars, footnote markers, and a
// footnote legend. Output is deterministic: rendering the same spec twice
// yields byte-identical documents.
// ============================================================================

// HTMLOption configures the HTML renderer.
type HTMLOption func(*htmlConfig)

type htmlConfig struct {
	includeCSS  bool
	class       string
	sparkWidth  int
	sparkHeight int
}

// WithoutCSS omits the embedded base stylesheet, for callers that ship their
// own.
func WithoutCSS() HTMLOption {
	return func(c *htmlConfig) { c.includeCSS = false }
}

// WithClass overrides the CSS class prefix (default "tabula").
func WithClass(class string) HTMLOption {
	return func(c *htmlConfig) { c.class = class }
}

// HTML renders the spec as a styled HTML fragment. Nothing is written to w
// unless validation and materialization fully succeed.
func HTML(spec table.Spec, w io.Writer, opts ...HTMLOption) error {
	cfg := &htmlConfig{includeCSS: true, class: "tabula", sparkWidth: 80, sparkHeight: 20}
	for _, opt := range opts {
		opt(cfg)
	}

	plan, err := spec.Finalize()
	if err != nil {
		return err
	}

	doc := buildHTML(plan, cfg)
	_, err = io.WriteString(w, doc)
	return err
}

func buildHTML(plan *table.Plan, cfg *htmlConfig) string {
	var b strings.Builder
	cls := cfg.class

	fmt.Fprintf(&b, "<div class=%q>\n", cls)
	if cfg.includeCSS {
		b.WriteString(baseCSS(cls))
	}
	fmt.Fprintf(&b, "<table class=%q>\n", cls+"-table")

	if plan.Title != "" {
		fmt.Fprintf(&b, "<caption>%s</caption>\n", html.EscapeString(plan.Title))
	}

	writeHead(&b, plan, cfg)
	writeBody(&b, plan, cfg)
	writeFoot(&b, plan, cfg)

	b.WriteString("</table>\n</div>\n")
	return b.String()
}

func writeHead(b *strings.Builder, plan *table.Plan, cfg *htmlConfig) {
	b.WriteString("<thead>\n")
	for _, row := range plan.SpannerRows {
		b.WriteString("<tr>")
		for _, cell := range row {
			if cell.Text == "" {
				fmt.Fprintf(b, "<th colspan=\"%d\"></th>", cell.Span)
				continue
			}
			fmt.Fprintf(b, "<th colspan=\"%d\" class=%q>%s</th>",
				cell.Span, cfg.class+"-spanner", html.EscapeString(cell.Text))
		}
		b.WriteString("</tr>\n")
	}

	b.WriteString("<tr>")
	for i, cell := range plan.LabelRow {
		col := plan.Columns[i]
		style := cellStyle(cell.Props, col.Align, col.WidthPx)
		b.WriteString("<th")
		if style != "" {
			fmt.Fprintf(b, " style=%q", style)
		}
		b.WriteString(">")
		b.WriteString(html.EscapeString(cell.Text))
		writeMarkers(b, cfg, cell.Markers)
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n</thead>\n")
}

func writeBody(b *strings.Builder, plan *table.Plan, cfg *htmlConfig) {
	b.WriteString("<tbody>\n")
	width := len(plan.Columns)

	for _, group := range plan.Groups {
		if group.Label != "" {
			fmt.Fprintf(b, "<tr class=%q><td colspan=\"%d\">%s</td></tr>\n",
				cfg.class+"-group", width, html.EscapeString(group.Label))
		}
		for _, sub := range group.Subs {
			if sub.Label != "" {
				fmt.Fprintf(b, "<tr class=%q><td colspan=\"%d\">%s</td></tr>\n",
					cfg.class+"-subgroup", width, html.EscapeString(sub.Label))
			}
			for _, row := range sub.Rows {
				writeRow(b, plan, cfg, row, "")
			}
		}
		for _, row := range group.Summary {
			writeRow(b, plan, cfg, row, cfg.class+"-summary")
		}
	}

	for _, row := range plan.GrandSummary {
		writeRow(b, plan, cfg, row, cfg.class+"-grand-summary")
	}
	b.WriteString("</tbody>\n")
}

func writeRow(b *strings.Builder, plan *table.Plan, cfg *htmlConfig, row table.PlanRow, class string) {
	if class != "" {
		fmt.Fprintf(b, "<tr class=%q>", class)
	} else {
		b.WriteString("<tr>")
	}
	for i, cell := range row.Cells {
		col := plan.Columns[i]
		style := cellStyle(cell.Props, col.Align, col.WidthPx)
		b.WriteString("<td")
		if style != "" {
			fmt.Fprintf(b, " style=%q", style)
		}
		b.WriteString(">")
		writeCellContent(b, cfg, cell)
		writeMarkers(b, cfg, cell.Markers)
		b.WriteString("</td>")
	}
	b.WriteString("</tr>\n")
}

func writeCellContent(b *strings.Builder, cfg *htmlConfig, cell table.PlanCell) {
	if cell.Viz != nil {
		switch cell.Viz.Kind {
		case table.VizBar:
			fmt.Fprintf(b, "<div class=%q><div class=%q style=\"width:%.1f%%\"></div></div><span class=%q>%s</span>",
				cfg.class+"-bar-track", cfg.class+"-bar", cell.Viz.Frac*100,
				cfg.class+"-bar-value", html.EscapeString(cell.Text))
			return
		case table.VizSpark:
			b.WriteString(sparklineSVG(cell.Viz.Points, cfg.sparkWidth, cfg.sparkHeight))
			return
		}
	}
	if cell.Markdown {
		b.WriteString(markdownLite(cell.Text))
		return
	}
	b.WriteString(html.EscapeString(cell.Text))
}

func writeFoot(b *strings.Builder, plan *table.Plan, cfg *htmlConfig) {
	if len(plan.Footnotes) == 0 {
		return
	}
	b.WriteString("<tfoot>\n")
	for i, note := range plan.Footnotes {
		fmt.Fprintf(b, "<tr><td colspan=\"%d\" class=%q><sup>%d</sup> %s</td></tr>\n",
			len(plan.Columns), cfg.class+"-footnote", i+1, html.EscapeString(note))
	}
	b.WriteString("</tfoot>\n")
}

func writeMarkers(b *strings.Builder, cfg *htmlConfig, markers []int) {
	if len(markers) == 0 {
		return
	}
	parts := make([]string, len(markers))
	for i, m := range markers {
		parts[i] = fmt.Sprintf("%d", m)
	}
	fmt.Fprintf(b, "<sup class=%q>%s</sup>", cfg.class+"-marker", strings.Join(parts, ","))
}

// ============================================================================
// CELL STYLES
// ============================================================================

func cellStyle(p table.Props, align table.Align, widthPx int) string {
	var parts []string
	if p.Fill != "" {
		parts = append(parts, "background-color:"+p.Fill)
	}
	if p.Color != "" {
		parts = append(parts, "color:"+p.Color)
	}
	if p.Weight != "" {
		parts = append(parts, "font-weight:"+p.Weight)
	}
	if p.FontStyle != "" {
		parts = append(parts, "font-style:"+p.FontStyle)
	}
	if p.Size != "" {
		parts = append(parts, "font-size:"+p.Size)
	}
	if p.Border != "" {
		parts = append(parts, "border:"+p.Border)
	}
	switch align {
	case table.AlignRight:
		parts = append(parts, "text-align:right")
	case table.AlignCenter:
		parts = append(parts, "text-align:center")
	case table.AlignLeft:
		parts = append(parts, "text-align:left")
	}
	if widthPx > 0 {
		parts = append(parts, fmt.Sprintf("width:%dpx", widthPx))
	}
	return strings.Join(parts, ";")
}

// ============================================================================
// MINI-VISUALIZATIONS
// ============================================================================

// sparklineSVG draws normalized points as a polyline, no smoothing.
func sparklineSVG(points []float64, w, h int) string {
	if len(points) == 0 {
		return ""
	}
	const pad = 2.0
	innerW := float64(w) - 2*pad
	innerH := float64(h) - 2*pad

	var b strings.Builder
	fmt.Fprintf(&b, "<svg width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\">", w, h, w, h)
	if len(points) == 1 {
		fmt.Fprintf(&b, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"1.5\" fill=\"currentColor\"/>",
			pad+innerW/2, pad+(1-points[0])*innerH)
	} else {
		coords := make([]string, len(points))
		step := innerW / float64(len(points)-1)
		for i, p := range points {
			coords[i] = fmt.Sprintf("%.1f,%.1f", pad+float64(i)*step, pad+(1-p)*innerH)
		}
		fmt.Fprintf(&b, "<polyline points=%q fill=\"none\" stroke=\"currentColor\" stroke-width=\"1.2\"/>",
			strings.Join(coords, " "))
	}
	b.WriteString("</svg>")
	return b.String()
}

// ============================================================================
// MARKDOWN-LITE
// ============================================================================

var (
	mdBold   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	mdItalic = regexp.MustCompile(`\*(.+?)\*`)
	mdCode   = regexp.MustCompile("`(.+?)`")
)

// markdownLite escapes the text, then interprets **bold**, *italic*, and
// `code` spans. Bold runs before italic so ** pairs are not split.
func markdownLite(s string) string {
	out := html.EscapeString(s)
	out = mdBold.ReplaceAllString(out, "<strong>$1</strong>")
	out = mdItalic.ReplaceAllString(out, "<em>$1</em>")
	out = mdCode.ReplaceAllString(out, "<code>$1</code>")
	return out
}

// ============================================================================
// BASE STYLESHEET
// ============================================================================

func baseCSS(cls string) string {
	return strings.ReplaceAll(`<style>
.$C-table { border-collapse: collapse; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; font-size: 13px; }
.$C-table caption { font-weight: 700; padding: 6px; text-align: left; }
.$C-table th, .$C-table td { padding: 4px 10px; border-bottom: 1px solid #dee2e6; }
.$C-table thead th { border-bottom: 2px solid #adb5bd; }
.$C-spanner { text-align: center; border-bottom: 1px solid #adb5bd; }
.$C-group td { font-weight: 700; background: #f1f3f5; }
.$C-subgroup td { font-style: italic; padding-left: 20px; }
.$C-summary td, .$C-grand-summary td { border-top: 1px solid #adb5bd; }
.$C-grand-summary td { border-top: 2px solid #495057; }
.$C-bar-track { display: inline-block; width: 80px; height: 10px; background: #f1f3f5; vertical-align: middle; }
.$C-bar { height: 10px; background: #4f46e5; }
.$C-bar-value { margin-left: 6px; }
.$C-marker { color: #6c757d; }
.$C-footnote { font-size: 11px; color: #6c757d; border-bottom: none; }
</style>
`, "$C", cls)
}
