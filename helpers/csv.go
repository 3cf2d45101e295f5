// Package helpers converts raw tabular sources into table.Dataset values.
package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tabula-org/tabula/table"
)

// ============================================================================
// CSV HELPER — Parses CSV data into a table.Dataset
// ============================================================================
// Consumer reads the CSV from wherever it lives (file, S3, Sheets).
// This helper converts the raw bytes into typed rows: each column's kind
// is inferred by scanning its values (number, date, or string), and empty
// fields become missing cells.
// ============================================================================

// CSVOption configures ParseCSV.
type CSVOption func(*csvConfig)

type csvConfig struct {
	comma       rune
	dateLayouts []string
}

// WithComma sets the field delimiter (default ',').
func WithComma(c rune) CSVOption {
	return func(cfg *csvConfig) { cfg.comma = c }
}

// WithDateLayouts sets the layouts tried when inferring date columns.
func WithDateLayouts(layouts ...string) CSVOption {
	return func(cfg *csvConfig) { cfg.dateLayouts = layouts }
}

var defaultDateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006", time.RFC3339}

// ParseCSV parses CSV bytes into a Dataset. The header row names the
// columns; a column is numeric or date only when every non-empty value
// parses as one, so a single stray string demotes it to text.
func ParseCSV(data []byte, opts ...CSVOption) (*table.Dataset, error) {
	cfg := &csvConfig{comma: ',', dateLayouts: defaultDateLayouts}
	for _, opt := range opts {
		opt(cfg)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = cfg.comma
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	cols := make([]string, len(headers))
	for i, h := range headers {
		cols[i] = toSnakeCase(strings.TrimSpace(h))
	}

	var raw [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(raw)+2, err)
		}
		row := make([]string, len(cols))
		for i := range cols {
			if i < len(rec) {
				row[i] = strings.TrimSpace(rec[i])
			}
		}
		raw = append(raw, row)
	}

	kinds := inferKinds(raw, len(cols), cfg.dateLayouts)

	ds := table.NewDataset(cols...)
	for _, rec := range raw {
		values := make([]table.Value, len(cols))
		for i, s := range rec {
			values[i] = parseValue(s, kinds[i], cfg.dateLayouts)
		}
		ds.Append(values...)
	}
	return ds, nil
}

// inferKinds classifies each column by scanning its non-empty values.
func inferKinds(rows [][]string, ncol int, layouts []string) []table.Kind {
	kinds := make([]table.Kind, ncol)
	for col := 0; col < ncol; col++ {
		numeric, dated, seen := true, true, false
		for _, row := range rows {
			s := row[col]
			if s == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				numeric = false
			}
			if !parsesAsDate(s, layouts) {
				dated = false
			}
			if !numeric && !dated {
				break
			}
		}
		switch {
		case !seen:
			kinds[col] = table.KindString
		case numeric:
			kinds[col] = table.KindNumber
		case dated:
			kinds[col] = table.KindTime
		default:
			kinds[col] = table.KindString
		}
	}
	return kinds
}

func parseValue(s string, kind table.Kind, layouts []string) table.Value {
	if s == "" {
		return table.Missing()
	}
	switch kind {
	case table.KindNumber:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return table.Missing()
		}
		return table.Number(f)
	case table.KindTime:
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return table.Date(t)
			}
		}
		return table.Missing()
	default:
		return table.String(s)
	}
}

func parsesAsDate(s string, layouts []string) bool {
	for _, layout := range layouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// toSnakeCase converts "Column Name" → "column_name".
func toSnakeCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
