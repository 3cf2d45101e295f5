package table

// ============================================================================
// COLUMN STATISTICS CACHE
// ============================================================================
// Predicates may reference whole-column aggregates (mean, max, ...). Those
// are computed exactly once per render pass, before the render walk begins,
// and handed to the resolver — never recomputed inside a predicate, which
// would turn resolution into O(rows² × rules).
// ============================================================================

// ColumnStats holds the aggregates of one numeric column. Missing and
// non-numeric cells are excluded.
type ColumnStats struct {
	Count  int
	Sum    float64
	Mean   float64
	Min    float64
	Max    float64
	Median float64
}

// Stats is the per-render cache of column aggregates.
type Stats struct {
	byColumn map[string]ColumnStats
}

// computeStats builds the cache for every numeric column of the view.
func computeStats(view DataView) *Stats {
	s := &Stats{byColumn: make(map[string]ColumnStats)}
	for _, col := range view.Columns() {
		vals := numericValues(view, col)
		if len(vals) == 0 {
			continue
		}
		sum := sumFloats(vals)
		s.byColumn[col] = ColumnStats{
			Count:  len(vals),
			Sum:    sum,
			Mean:   sum / float64(len(vals)),
			Min:    minFloats(vals),
			Max:    maxFloats(vals),
			Median: medianFloats(vals),
		}
	}
	return s
}

// Column returns the stats for one column. The zero ColumnStats is returned
// for non-numeric or unknown columns.
func (s *Stats) Column(col string) ColumnStats {
	if s == nil {
		return ColumnStats{}
	}
	return s.byColumn[col]
}

// Mean returns the column mean, or 0 for non-numeric columns.
func (s *Stats) Mean(col string) float64 { return s.Column(col).Mean }

// Min returns the column minimum.
func (s *Stats) Min(col string) float64 { return s.Column(col).Min }

// Max returns the column maximum.
func (s *Stats) Max(col string) float64 { return s.Column(col).Max }

// Sum returns the column sum.
func (s *Stats) Sum(col string) float64 { return s.Column(col).Sum }

// MedianOf returns the column median.
func (s *Stats) MedianOf(col string) float64 { return s.Column(col).Median }

// CountOf returns the number of numeric cells in the column.
func (s *Stats) CountOf(col string) int { return s.Column(col).Count }
