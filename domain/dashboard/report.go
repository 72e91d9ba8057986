package dashboard

import "time"

// TableProjection is the statistics table as rendered: a header row plus one row per
// metric, or a single placeholder message when the table could not be built.
type TableProjection struct {
	Placeholder string
	Header      []string
	Rows        [][]string
}

// HasRows reports whether the projection carries a real table.
func (t TableProjection) HasRows() bool {
	return t.Placeholder == "" && len(t.Header) > 0
}

// ChartImage is a rendered chart exported alongside a report.
type ChartImage struct {
	Target TargetID
	Title  string
	PNG    []byte
}

// Report is the exportable snapshot of the dashboard for the loaded payload.
type Report struct {
	Title         string
	GeneratedAt   time.Time
	PayloadHash   string
	RowCount      int
	DuplicateRows int
	Threshold     float64
	Summary       string // Markdown
	Suggestions   []string
	Table         TableProjection
	NullsLabels   []string
	NullsCounts   []float64
	DupesLabels   []string
	DupesPercent  []float64
	Charts        []ChartImage
}
