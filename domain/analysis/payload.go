// Package analysis holds the analysis payload returned by the external CSV analysis
// service. Every group is optional: a nil pointer means the service did not send it.
package analysis

// Payload is the analysis result for one uploaded dataset. It is read-only once decoded.
type Payload struct {
	RowCount            int
	NullsByColumn       *ColumnCounts
	NumericStats        *NumericStats
	StatsTable          *StatsTable
	DuplicatesByColumn  *DuplicateColumns
	DuplicateRowSummary *DuplicateRowSummary

	// Legacy is the flat "otras" series sent by first-generation services in place of
	// DuplicatesByColumn.
	Legacy *LabeledValues
}

// ColumnCounts holds a per-column count, Labels[i] pairs with Counts[i].
type ColumnCounts struct {
	Labels []string
	Counts []float64
}

// NumericStats holds the mean of every numeric column.
type NumericStats struct {
	Labels []string
	Means  []float64
}

// Cell is one statsTable entry. Valid is false for null or non-numeric values.
type Cell struct {
	Value float64
	Valid bool
}

// StatsTable is a metrics x columns matrix: Values[metric][column].
// A nil slice field means the service did not send that field.
type StatsTable struct {
	Columns []string
	Metrics []string
	Values  [][]Cell
}

// Complete reports whether columns, metrics and values were all present.
func (t *StatsTable) Complete() bool {
	return t != nil && t.Columns != nil && t.Metrics != nil && t.Values != nil
}

// DuplicateColumns holds per-column duplicate-value counts and their share of rows.
// Percent is trusted as sent, it is never re-derived from RowCount.
type DuplicateColumns struct {
	Labels  []string
	Counts  []float64
	Percent []float64
}

// DuplicateRowSummary counts fully duplicated rows.
type DuplicateRowSummary struct {
	DuplicateCount int
}

// LabeledValues is the generic {labels, values} shape used by legacy payloads.
type LabeledValues struct {
	Labels []string
	Values []float64
}

// IsEmpty reports whether the payload carries no group at all.
func (p *Payload) IsEmpty() bool {
	return p == nil || (p.RowCount == 0 &&
		p.NullsByColumn == nil &&
		p.NumericStats == nil &&
		p.StatsTable == nil &&
		p.DuplicatesByColumn == nil &&
		p.DuplicateRowSummary == nil &&
		p.Legacy == nil)
}
