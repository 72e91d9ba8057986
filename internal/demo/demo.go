// Package demo provides the sample payload shown before the first upload.
package demo

import "csvdash/domain/analysis"

// Labels are the placeholder column names of the demo dataset
var Labels = []string{"A", "B", "C", "D", "E"}

// Payload returns a fresh copy of the demo payload. It uses the first-generation shape
// (flat duplicates series) so the legacy rendering path is visible too.
func Payload() *analysis.Payload {
	return &analysis.Payload{
		RowCount:      100,
		NullsByColumn: &analysis.ColumnCounts{Labels: labels(), Counts: []float64{5, 3, 0, 2, 1}},
		NumericStats:  &analysis.NumericStats{Labels: labels(), Means: []float64{2, 4, 3, 5, 1}},
		Legacy:        &analysis.LabeledValues{Labels: labels(), Values: []float64{10, 20, 30, 25, 15}},
	}
}

func labels() []string {
	out := make([]string, len(Labels))
	copy(out, Labels)
	return out
}
