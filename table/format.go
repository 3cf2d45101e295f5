package table

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ============================================================================
// COLUMN FORMATS — Raw Value → Display String
// ============================================================================
// At most one format is active per column at render time; later-declared
// formats override earlier ones. Missing values never fail a format — they
// render the spec's placeholder instead, since one absent value should not
// abort a whole report.
// ============================================================================

type formatKind int

const (
	fmtNone formatKind = iota
	fmtNumber
	fmtCurrency
	fmtPercent
	fmtDate
	fmtMarkdown
)

// Format is a per-column display rule.
type Format struct {
	kind     formatKind
	decimals int
	symbol   string
	layout   string
}

// Currency formats numbers as "$1,234.50". Negative values render as
// "-$1,234.50".
func Currency(symbol string, decimals int) Format {
	return Format{kind: fmtCurrency, symbol: symbol, decimals: decimals}
}

// Fixed formats numbers with a fixed number of decimals and thousands
// separators.
func Fixed(decimals int) Format {
	return Format{kind: fmtNumber, decimals: decimals}
}

// Percent formats numbers as "12.5%". The value is used as-is: 12.5 renders
// "12.5%", not "1250%".
func Percent(decimals int) Format {
	return Format{kind: fmtPercent, decimals: decimals}
}

// DateLayout formats dates with the given time layout.
func DateLayout(layout string) Format {
	return Format{kind: fmtDate, layout: layout}
}

// Markdown marks a text column as markdown-lite: renderers that support it
// interpret **bold**, *italic*, and `code` spans.
func Markdown() Format {
	return Format{kind: fmtMarkdown}
}

// IsZero reports whether the Format is unset.
func (f Format) IsZero() bool { return f.kind == fmtNone }

// IsMarkdown reports whether the Format requests markdown-lite rendering.
func (f Format) IsMarkdown() bool { return f.kind == fmtMarkdown }

func (f Format) name() string {
	switch f.kind {
	case fmtNumber:
		return "number"
	case fmtCurrency:
		return "currency"
	case fmtPercent:
		return "percent"
	case fmtDate:
		return "date"
	case fmtMarkdown:
		return "markdown"
	default:
		return "none"
	}
}

// Apply renders a value as display text. Missing values render the
// placeholder. A value incompatible with the format returns a
// TypeMismatchError naming the column.
func (f Format) Apply(col string, v Value, placeholder string) (string, error) {
	if v.IsMissing() {
		return placeholder, nil
	}

	switch f.kind {
	case fmtCurrency, fmtNumber, fmtPercent:
		if v.Kind() != KindNumber {
			return "", &TypeMismatchError{Column: col, Format: f.name(), Got: v.Kind()}
		}
		return f.formatNumber(v.Float()), nil

	case fmtDate:
		if v.Kind() != KindTime {
			return "", &TypeMismatchError{Column: col, Format: f.name(), Got: v.Kind()}
		}
		return v.Time().Format(f.layout), nil

	default:
		// Unformatted and markdown columns display the raw representation.
		return v.String(), nil
	}
}

func (f Format) formatNumber(x float64) string {
	d := decimal.NewFromFloat(x).Round(int32(f.decimals))
	neg := d.IsNegative()
	body := groupThousands(d.Abs().StringFixed(int32(f.decimals)))

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if f.kind == fmtCurrency {
		b.WriteString(f.symbol)
	}
	b.WriteString(body)
	if f.kind == fmtPercent {
		b.WriteByte('%')
	}
	return b.String()
}

// Parse recovers the numeric value from a displayed string. Only numeric
// formats are reversible; the result matches the original within the
// format's decimal precision.
func (f Format) Parse(s string) (float64, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSuffix(raw, "%")
	if f.symbol != "" {
		raw = strings.ReplaceAll(raw, f.symbol, "")
	}
	raw = strings.ReplaceAll(raw, ",", "")
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

// groupThousands inserts commas into the integer part of a fixed-point
// string, e.g. "1234567.89" → "1,234,567.89".
func groupThousands(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) > 3 {
		var parts []string
		for len(intPart) > 3 {
			parts = append([]string{intPart[len(intPart)-3:]}, parts...)
			intPart = intPart[:len(intPart)-3]
		}
		parts = append([]string{intPart}, parts...)
		intPart = strings.Join(parts, ",")
	}
	if hasFrac {
		return intPart + "." + frac
	}
	return intPart
}
