// Package pdf exports dashboard reports as A4 PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"csvdash/domain/dashboard"
	"csvdash/internal/errors"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
	chartHeight  = 85.0
)

// Exporter writes a Report as PDF. It implements ports.ReportExporter.
type Exporter struct{}

func NewExporter() *Exporter { return &Exporter{} }

func (e *Exporter) ContentType() string { return "application/pdf" }

func (e *Exporter) Extension() string { return ".pdf" }

// Export lays the report out on A4 pages and writes the document to w
func (e *Exporter) Export(w io.Writer, report *dashboard.Report) error {
	if report == nil {
		return errors.InvalidInput("no report to export")
	}

	doc := &document{pdf: fpdf.New("P", "mm", "A4", ""), report: report}
	doc.pdf.SetMargins(marginLeft, marginTop, marginRight)
	doc.pdf.SetAutoPageBreak(true, marginBottom)
	doc.tr = doc.pdf.UnicodeTranslatorFromDescriptor("")

	doc.addOverview()
	doc.addSuggestions()
	doc.addStatsTable()
	doc.addCharts()

	var buf bytes.Buffer
	if err := doc.pdf.Output(&buf); err != nil {
		return errors.Wrap(err, "render pdf")
	}
	if _, err := buf.WriteTo(w); err != nil {
		return errors.Wrap(err, "write pdf")
	}
	return nil
}

type document struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	report *dashboard.Report
}

// text converts UTF-8 to the cp1252 encoding of the core fonts
func (d *document) text(s string) string {
	s = strings.ReplaceAll(s, "≥", ">=")
	return d.tr(s)
}

func (d *document) addOverview() {
	r := d.report
	d.pdf.AddPage()

	d.pdf.SetFont("Arial", "B", 22)
	d.pdf.SetTextColor(0, 51, 102)
	d.pdf.CellFormat(contentWidth, 12, d.text("CSV analysis report"), "", 1, "C", false, 0, "")
	d.pdf.SetFont("Arial", "", 12)
	d.pdf.SetTextColor(80, 80, 80)
	d.pdf.CellFormat(contentWidth, 8, d.text(r.Title), "", 1, "C", false, 0, "")
	d.pdf.SetFont("Arial", "I", 9)
	d.pdf.CellFormat(contentWidth, 6, fmt.Sprintf("Generated: %s", r.GeneratedAt.Format("2 January 2006 15:04")), "", 1, "C", false, 0, "")
	d.pdf.Ln(8)

	d.drawSectionHeader("Overview")
	d.pdf.SetFillColor(245, 247, 250)
	rows := [][2]string{
		{"Rows", fmt.Sprintf("%d", r.RowCount)},
		{"Duplicate rows", fmt.Sprintf("%d", r.DuplicateRows)},
		{"Columns with nulls", fmt.Sprintf("%d", countPositive(r.NullsCounts))},
		{"Cleaning threshold", fmt.Sprintf("%g%%", r.Threshold)},
		{"Payload", r.PayloadHash},
	}
	for i, row := range rows {
		fill := i%2 == 0
		d.pdf.SetFont("Arial", "B", 10)
		d.pdf.SetTextColor(50, 50, 50)
		d.pdf.CellFormat(60, 7, d.text(row[0]), "", 0, "L", fill, 0, "")
		d.pdf.SetFont("Arial", "", 10)
		d.pdf.CellFormat(contentWidth-60, 7, d.text(row[1]), "", 1, "L", fill, 0, "")
	}
	d.pdf.Ln(6)
}

func (d *document) addSuggestions() {
	d.drawSectionHeader("Cleaning suggestions")
	d.pdf.SetFont("Arial", "", 10)
	d.pdf.SetTextColor(50, 50, 50)
	for _, s := range d.report.Suggestions {
		d.pdf.CellFormat(5, 6, "-", "", 0, "L", false, 0, "")
		d.pdf.MultiCell(contentWidth-5, 6, d.text(s), "", "L", false)
	}
	d.pdf.Ln(6)
}

func (d *document) addStatsTable() {
	d.drawSectionHeader("Descriptive statistics")
	t := d.report.Table
	if !t.HasRows() {
		d.pdf.SetFont("Arial", "I", 10)
		d.pdf.SetTextColor(120, 120, 120)
		d.pdf.CellFormat(contentWidth, 7, d.text(t.Placeholder), "", 1, "L", false, 0, "")
		d.pdf.Ln(6)
		return
	}

	colWidth := contentWidth / float64(len(t.Header))
	d.drawTableHeader(t.Header, colWidth)
	d.pdf.SetFont("Arial", "", 8)
	d.pdf.SetTextColor(50, 50, 50)
	for i, row := range t.Rows {
		if d.pdf.GetY() > 260 {
			d.pdf.AddPage()
			d.drawTableHeader(t.Header, colWidth)
			d.pdf.SetFont("Arial", "", 8)
			d.pdf.SetTextColor(50, 50, 50)
		}
		d.pdf.SetFillColor(245, 247, 250)
		for j := range t.Header {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			align := "R"
			if j == 0 {
				align = "L"
			}
			d.pdf.CellFormat(colWidth, 6, d.text(cell), "1", 0, align, i%2 == 1, 0, "")
		}
		d.pdf.Ln(-1)
	}
	d.pdf.Ln(6)
}

func (d *document) drawTableHeader(header []string, colWidth float64) {
	d.pdf.SetFillColor(0, 51, 102)
	d.pdf.SetTextColor(255, 255, 255)
	d.pdf.SetFont("Arial", "B", 8)
	for _, h := range header {
		d.pdf.CellFormat(colWidth, 7, d.text(h), "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)
}

func (d *document) addCharts() {
	if len(d.report.Charts) == 0 {
		return
	}
	d.pdf.AddPage()
	d.drawSectionHeader("Charts")
	for _, c := range d.report.Charts {
		if len(c.PNG) == 0 {
			continue
		}
		if d.pdf.GetY()+chartHeight+10 > 297-marginBottom {
			d.pdf.AddPage()
		}
		name := string(c.Target)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		d.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(c.PNG))
		d.pdf.SetFont("Arial", "B", 10)
		d.pdf.SetTextColor(0, 51, 102)
		d.pdf.CellFormat(contentWidth, 6, d.text(c.Title), "", 1, "L", false, 0, "")
		d.pdf.ImageOptions(name, marginLeft, d.pdf.GetY(), contentWidth, chartHeight, false, opts, 0, "")
		d.pdf.SetY(d.pdf.GetY() + chartHeight + 4)
	}
}

func (d *document) drawSectionHeader(title string) {
	d.pdf.SetFont("Arial", "B", 14)
	d.pdf.SetTextColor(0, 51, 102)
	d.pdf.CellFormat(contentWidth, 9, d.text(title), "", 1, "L", false, 0, "")
	d.pdf.SetDrawColor(0, 51, 102)
	d.pdf.Line(marginLeft, d.pdf.GetY(), marginLeft+contentWidth, d.pdf.GetY())
	d.pdf.Ln(4)
}

func countPositive(values []float64) int {
	n := 0
	for _, v := range values {
		if v > 0 {
			n++
		}
	}
	return n
}
