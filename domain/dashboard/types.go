package dashboard

import (
	"fmt"
	"strings"
)

// Section is a named dashboard panel
type Section string

const (
	SectionAll        Section = "all"
	SectionHome       Section = "inicio"
	SectionNulls      Section = "nulos"
	SectionStatistics Section = "estadisticas"
	SectionOther      Section = "otras"
)

// Sections lists the navigable panels in display order
var Sections = []Section{SectionHome, SectionNulls, SectionStatistics, SectionOther}

// ParseSection accepts a section name; "" and "all" both mean every section.
func ParseSection(name string) (Section, error) {
	switch s := Section(strings.ToLower(strings.TrimSpace(name))); s {
	case "", SectionAll:
		return SectionAll, nil
	case SectionHome, SectionNulls, SectionStatistics, SectionOther:
		return s, nil
	default:
		return "", fmt.Errorf("unknown section %q", name)
	}
}

// Includes reports whether rendering s covers the given concrete section.
func (s Section) Includes(other Section) bool {
	return s == SectionAll || s == "" || s == other
}

// DisplayMode selects absolute counts or percentages for a chart that supports both
type DisplayMode string

const (
	ModeCount   DisplayMode = "count"
	ModePercent DisplayMode = "percent"
)

func ParseDisplayMode(v string) (DisplayMode, error) {
	switch m := DisplayMode(strings.ToLower(strings.TrimSpace(v))); m {
	case ModeCount, ModePercent:
		return m, nil
	default:
		return "", fmt.Errorf("unknown display mode %q", v)
	}
}

// ModeSelector names a per-chart mode toggle
type ModeSelector string

const (
	SelectorNulls      ModeSelector = "nulls-mode"
	SelectorDuplicates ModeSelector = "dupes-mode"
)

// Selectors lists every mode toggle
var Selectors = []ModeSelector{SelectorNulls, SelectorDuplicates}

// Target returns the render target driven by the selector, or "" if unknown.
func (m ModeSelector) Target() TargetID {
	switch m {
	case SelectorNulls:
		return TargetNulls
	case SelectorDuplicates:
		return TargetDuplicates
	}
	return ""
}

// TargetID is the stable identifier of a drawing surface
type TargetID string

const (
	TargetNulls      TargetID = "nulosChart"
	TargetMeans      TargetID = "estadisticasChart"
	TargetDuplicates TargetID = "otrasChart"
	TargetCleaning   TargetID = "limpiezaChart"
)

// Targets lists every render target
var Targets = []TargetID{TargetNulls, TargetMeans, TargetDuplicates, TargetCleaning}

// Section returns the panel that hosts the target.
func (t TargetID) Section() Section {
	switch t {
	case TargetNulls:
		return SectionNulls
	case TargetMeans:
		return SectionStatistics
	case TargetDuplicates, TargetCleaning:
		return SectionOther
	}
	return ""
}

// ChartKind is the visual representation requested from the chart library
type ChartKind string

const (
	KindBar           ChartKind = "bar"
	KindHorizontalBar ChartKind = "horizontalBar"
	KindLine          ChartKind = "line"
	KindPie           ChartKind = "pie"
	KindDoughnut      ChartKind = "doughnut"
)

// ChartOptions are the kind-appropriate display options for one chart.
type ChartOptions struct {
	IsPercent bool
	// AxisMin/AxisMax bound the value axis. AxisMax is 0 for pie-like kinds.
	AxisMin float64
	AxisMax float64
	// TickFormat renders value-axis tick labels.
	TickFormat func(float64) string
}

// ChartSpec is everything the chart library needs to draw one chart.
type ChartSpec struct {
	Kind        ChartKind
	Title       string
	SeriesLabel string
	Labels      []string
	Values      []float64
	Options     ChartOptions
}
