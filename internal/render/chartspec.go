package render

import (
	"math"

	"github.com/montanaflynn/stats"

	"csvdash/domain/dashboard"
)

// NoColumnsAboveThreshold labels the informational slice drawn when no column qualifies
// as a cleaning highlight.
const NoColumnsAboveThreshold = "no columns above threshold"

// percentOptions pins the value axis to [0,100] with % ticks.
func percentOptions() dashboard.ChartOptions {
	return dashboard.ChartOptions{
		IsPercent:  true,
		AxisMin:    0,
		AxisMax:    100,
		TickFormat: PercentTick,
	}
}

// countOptions auto-scales the value axis to the data with grouped tick labels.
func countOptions(values []float64, f *NumberFormatter) dashboard.ChartOptions {
	lo, hi := 0.0, 0.0
	if m, err := stats.Min(values); err == nil && m < 0 {
		lo = m
	}
	if m, err := stats.Max(values); err == nil && m > 0 {
		hi = m
	}
	lo, hi = niceAxisBounds(lo, hi)
	return dashboard.ChartOptions{
		AxisMin:    lo,
		AxisMax:    hi,
		TickFormat: f.Format,
	}
}

// niceAxisBounds rounds [lo,hi] outward to the order of magnitude of the span, with a
// 5% headroom above hi. A zero lower bound stays on the baseline.
func niceAxisBounds(lo, hi float64) (float64, float64) {
	if hi <= lo {
		hi = lo + 1
	}
	span := hi - lo
	pad := span * 0.05
	a := lo
	if lo < 0 {
		a = lo - pad
	}
	b := hi + pad
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	return a, b
}

func optionsFor(s Series, f *NumberFormatter) dashboard.ChartOptions {
	if s.IsPercent {
		return percentOptions()
	}
	return countOptions(s.Values, f)
}

func nullsChartSpec(s Series, f *NumberFormatter) dashboard.ChartSpec {
	title := "Nulls per column"
	if s.IsPercent {
		title = "Nulls per column (%)"
	}
	return dashboard.ChartSpec{
		Kind:        dashboard.KindBar,
		Title:       title,
		SeriesLabel: "Nulls",
		Labels:      s.Labels,
		Values:      s.Values,
		Options:     optionsFor(s, f),
	}
}

func meansChartSpec(s Series, kind dashboard.ChartKind, f *NumberFormatter) dashboard.ChartSpec {
	if kind != dashboard.KindLine {
		kind = dashboard.KindBar
	}
	return dashboard.ChartSpec{
		Kind:        kind,
		Title:       "Mean of numeric columns",
		SeriesLabel: "Mean",
		Labels:      s.Labels,
		Values:      s.Values,
		Options:     optionsFor(s, f),
	}
}

func duplicatesChartSpec(d DuplicatesSeries, f *NumberFormatter) dashboard.ChartSpec {
	if d.Source == SourceLegacy {
		return dashboard.ChartSpec{
			Kind:        dashboard.KindPie,
			Title:       "Duplicates",
			SeriesLabel: "Duplicates",
			Labels:      d.Labels,
			Values:      d.Values,
			Options:     dashboard.ChartOptions{TickFormat: f.Format},
		}
	}
	title := "Duplicated values per column"
	if d.IsPercent {
		title = "Duplicated values per column (%)"
	}
	return dashboard.ChartSpec{
		Kind:        dashboard.KindBar,
		Title:       title,
		SeriesLabel: "Duplicates",
		Labels:      d.Labels,
		Values:      d.Values,
		Options:     optionsFor(d.Series, f),
	}
}

// cleaningChartSpec draws qualifying columns as horizontal percentage bars, or a single
// informational slice when the source is absent or nothing crossed the threshold.
func cleaningChartSpec(h Highlights, threshold float64) dashboard.ChartSpec {
	if h.Availability == Present {
		return dashboard.ChartSpec{
			Kind:        dashboard.KindHorizontalBar,
			Title:       "Columns with duplicates >= " + formatThreshold(threshold) + "%",
			SeriesLabel: "Duplicated %",
			Labels:      h.Labels,
			Values:      h.Values,
			Options:     percentOptions(),
		}
	}
	return dashboard.ChartSpec{
		Kind:        dashboard.KindDoughnut,
		Title:       "Cleaning highlights",
		SeriesLabel: h.Availability.String(),
		Labels:      []string{NoColumnsAboveThreshold},
		Values:      []float64{1},
	}
}
