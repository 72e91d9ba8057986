// Package report turns the engine state into the home-section summary and the exportable
// Report model.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"csvdash/domain/analysis"
	"csvdash/domain/core"
	"csvdash/domain/dashboard"
	"csvdash/internal/render"
)

// ChartSource yields the image currently shown on a target
type ChartSource interface {
	Image(target dashboard.TargetID) ([]byte, bool)
	Title(target dashboard.TargetID) string
}

// EmptySummary is shown on the home section before any dataset was loaded.
const EmptySummary = "Upload a CSV file to start the analysis."

// SummaryMarkdown describes the loaded dataset in a few Markdown bullets.
func SummaryMarkdown(s *render.Summary, threshold float64, f *render.NumberFormatter) string {
	if s == nil || !s.Loaded {
		return EmptySummary
	}
	var b strings.Builder
	b.WriteString("### Dataset overview\n\n")
	fmt.Fprintf(&b, "- **Rows:** %s\n", f.Format(float64(s.RowCount)))
	fmt.Fprintf(&b, "- **Duplicate rows:** %s\n", f.Format(float64(s.DuplicateRows)))
	fmt.Fprintf(&b, "- **Columns with nulls:** %d\n", s.NullColumns)
	fmt.Fprintf(&b, "- **Numeric columns:** %d\n", s.NumericColumns)
	fmt.Fprintf(&b, "- **Columns with ≥%g%% duplicated values:** %d\n", threshold, s.Highlighted)
	return b.String()
}

// ToHTML renders Markdown with the common extensions
func ToHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(md), p, r))
}

// PayloadHash fingerprints a payload through its canonical encoding.
func PayloadHash(p *analysis.Payload) core.Hash {
	if p == nil {
		return ""
	}
	raw, err := analysis.Encode(p)
	if err != nil {
		return ""
	}
	return core.NewHash(raw)
}

// Build snapshots the engine into a Report. It renders the summary and every section's
// data itself, so it does not depend on which section the UI last showed.
func Build(e *render.Engine, charts ChartSource, title string, now time.Time) *dashboard.Report {
	p := e.Payload()
	f := e.Formatter()
	r := &dashboard.Report{
		Title:       title,
		GeneratedAt: now,
		Threshold:   e.Threshold(),
		Table:       render.ProjectStatsTable(p, f),
		Suggestions: render.GenerateSuggestions(p, e.Threshold()),
	}
	if p == nil {
		r.Summary = EmptySummary
		return r
	}

	r.PayloadHash = PayloadHash(p).Short()
	r.RowCount = p.RowCount
	if p.DuplicateRowSummary != nil {
		r.DuplicateRows = p.DuplicateRowSummary.DuplicateCount
	}
	result := e.Reconcile(dashboard.SectionHome)
	r.Summary = SummaryMarkdown(result.Summary, e.Threshold(), f)

	nulls := render.DeriveNullsSeries(p, dashboard.ModeCount)
	r.NullsLabels, r.NullsCounts = nulls.Labels, nulls.Values
	if p.DuplicatesByColumn != nil {
		dupes := render.DeriveDuplicatesSeries(p, dashboard.ModePercent)
		r.DupesLabels, r.DupesPercent = dupes.Labels, dupes.Values
	}

	if charts != nil {
		for _, target := range dashboard.Targets {
			if png, ok := charts.Image(target); ok {
				r.Charts = append(r.Charts, dashboard.ChartImage{Target: target, Title: charts.Title(target), PNG: png})
			}
		}
	}
	return r
}
