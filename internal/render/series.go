package render

import (
	"gonum.org/v1/gonum/floats"

	"csvdash/domain/analysis"
	"csvdash/domain/dashboard"
)

// DefaultThreshold is the duplicate percentage at which a column becomes a cleaning highlight.
const DefaultThreshold = 75.0

// Series is a renderable (labels, values) pair. len(Values) == len(Labels) always.
type Series struct {
	Labels    []string
	Values    []float64
	IsPercent bool
}

// DuplicatesSource tells which payload group fed the duplicates chart
type DuplicatesSource int

const (
	SourceNone DuplicatesSource = iota
	SourceByColumn
	SourceLegacy
)

type DuplicatesSeries struct {
	Series
	Source DuplicatesSource
}

// Availability separates "the payload had no duplicate data" from "nothing crossed the
// threshold"; the cleaning chart treats both as informational but reports them apart.
type Availability int

const (
	Absent Availability = iota
	Empty
	Present
)

func (a Availability) String() string {
	switch a {
	case Empty:
		return "empty"
	case Present:
		return "present"
	default:
		return "absent"
	}
}

// Highlights are the columns whose duplicate percentage meets the threshold.
type Highlights struct {
	Availability Availability
	Labels       []string
	Values       []float64
}

// DeriveNullsSeries converts null counts into counts or percentages of RowCount.
// RowCount is floored to 1 so an empty dataset cannot divide by zero.
func DeriveNullsSeries(p *analysis.Payload, mode dashboard.DisplayMode) Series {
	s := Series{Labels: []string{}, Values: []float64{}, IsPercent: mode == dashboard.ModePercent}
	if p == nil || p.NullsByColumn == nil {
		return s
	}

	s.Labels = copyLabels(p.NullsByColumn.Labels)
	s.Values = align(p.NullsByColumn.Counts, len(s.Labels))
	if s.IsPercent {
		floats.Scale(100/float64(max(1, p.RowCount)), s.Values)
	}
	return s
}

// DeriveMeansSeries returns the mean of every numeric column.
func DeriveMeansSeries(p *analysis.Payload) Series {
	s := Series{Labels: []string{}, Values: []float64{}}
	if p == nil || p.NumericStats == nil {
		return s
	}
	s.Labels = copyLabels(p.NumericStats.Labels)
	s.Values = align(p.NumericStats.Means, len(s.Labels))
	return s
}

// DeriveDuplicatesSeries prefers DuplicatesByColumn and uses its Percent as sent.
// Without it, the legacy flat series is returned with count semantics whatever the mode.
func DeriveDuplicatesSeries(p *analysis.Payload, mode dashboard.DisplayMode) DuplicatesSeries {
	if p != nil && p.DuplicatesByColumn != nil {
		d := p.DuplicatesByColumn
		labels := copyLabels(d.Labels)
		values := d.Counts
		if mode == dashboard.ModePercent {
			values = d.Percent
		}
		return DuplicatesSeries{
			Series: Series{Labels: labels, Values: align(values, len(labels)), IsPercent: mode == dashboard.ModePercent},
			Source: SourceByColumn,
		}
	}
	if p != nil && p.Legacy != nil {
		labels := copyLabels(p.Legacy.Labels)
		return DuplicatesSeries{
			Series: Series{Labels: labels, Values: align(p.Legacy.Values, len(labels))},
			Source: SourceLegacy,
		}
	}
	return DuplicatesSeries{Series: Series{Labels: []string{}, Values: []float64{}}, Source: SourceNone}
}

// DeriveCleaningHighlights keeps, in payload order, the columns with percent >= threshold.
func DeriveCleaningHighlights(p *analysis.Payload, threshold float64) Highlights {
	if p == nil || p.DuplicatesByColumn == nil {
		return Highlights{Availability: Absent}
	}
	d := p.DuplicatesByColumn
	percent := align(d.Percent, len(d.Labels))

	h := Highlights{Availability: Empty, Labels: []string{}, Values: []float64{}}
	for i, label := range d.Labels {
		if percent[i] >= threshold {
			h.Labels = append(h.Labels, label)
			h.Values = append(h.Values, percent[i])
		}
	}
	if len(h.Labels) > 0 {
		h.Availability = Present
	}
	return h
}

// align copies values into a slice of exactly n entries, truncating or padding with 0.
func align(values []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, values)
	return out
}

func copyLabels(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}
