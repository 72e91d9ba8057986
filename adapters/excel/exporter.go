// Package excel exports dashboard reports as XLSX workbooks.
package excel

import (
	"io"

	"github.com/xuri/excelize/v2"

	"csvdash/domain/dashboard"
	"csvdash/internal/errors"
)

const (
	sheetSummary     = "Summary"
	sheetStats       = "Stats"
	sheetNulls       = "Nulls"
	sheetDuplicates  = "Duplicates"
	sheetSuggestions = "Suggestions"
	sheetCharts      = "Charts"
)

// Exporter writes a Report as an XLSX workbook. It implements ports.ReportExporter.
type Exporter struct {
	// IncludeCharts embeds the rendered chart images on a Charts sheet
	IncludeCharts bool
}

// NewExporter creates an exporter that embeds charts
func NewExporter() *Exporter {
	return &Exporter{IncludeCharts: true}
}

func (e *Exporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *Exporter) Extension() string { return ".xlsx" }

// Export builds the workbook and writes it to w
func (e *Exporter) Export(w io.Writer, report *dashboard.Report) error {
	if report == nil {
		return errors.InvalidInput("no report to export")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return errors.Wrap(err, "rename summary sheet")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "create header style")
	}

	wb := &workbook{f: f, bold: bold}
	wb.rows(sheetSummary, [][]interface{}{
		{"Report", report.Title},
		{"Generated", report.GeneratedAt.UTC().Format("2006-01-02 15:04:05 MST")},
		{"Payload", report.PayloadHash},
		{"Rows", report.RowCount},
		{"Duplicate rows", report.DuplicateRows},
		{"Cleaning threshold (%)", report.Threshold},
	}, false)

	wb.add(sheetStats)
	if report.Table.HasRows() {
		rows := make([][]interface{}, 0, len(report.Table.Rows)+1)
		rows = append(rows, cells(report.Table.Header))
		for _, r := range report.Table.Rows {
			rows = append(rows, cells(r))
		}
		wb.rows(sheetStats, rows, true)
	} else {
		wb.rows(sheetStats, [][]interface{}{{report.Table.Placeholder}}, false)
	}

	wb.add(sheetNulls)
	wb.rows(sheetNulls, series("Column", "Nulls", report.NullsLabels, report.NullsCounts), true)

	wb.add(sheetDuplicates)
	wb.rows(sheetDuplicates, series("Column", "Duplicated %", report.DupesLabels, report.DupesPercent), true)

	wb.add(sheetSuggestions)
	suggestions := [][]interface{}{{"Suggestion"}}
	for _, s := range report.Suggestions {
		suggestions = append(suggestions, []interface{}{s})
	}
	wb.rows(sheetSuggestions, suggestions, true)

	if e.IncludeCharts && len(report.Charts) > 0 {
		wb.add(sheetCharts)
		row := 1
		for _, c := range report.Charts {
			if len(c.PNG) == 0 {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			wb.set(sheetCharts, cell, c.Title)
			cell, _ = excelize.CoordinatesToCellName(1, row+1)
			if wb.err == nil {
				wb.err = f.AddPictureFromBytes(sheetCharts, cell, &excelize.Picture{
					Extension: ".png",
					File:      c.PNG,
					Format:    &excelize.GraphicOptions{ScaleX: 0.6, ScaleY: 0.6, AltText: string(c.Target)},
				})
			}
			row += 16
		}
	}

	if wb.err != nil {
		return errors.Wrap(wb.err, "build workbook")
	}
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

// workbook keeps the first error so sheet building reads top to bottom
type workbook struct {
	f    *excelize.File
	bold int
	err  error
}

func (wb *workbook) add(sheet string) {
	if wb.err != nil {
		return
	}
	_, wb.err = wb.f.NewSheet(sheet)
}

func (wb *workbook) set(sheet, cell string, v interface{}) {
	if wb.err != nil {
		return
	}
	wb.err = wb.f.SetCellValue(sheet, cell, v)
}

func (wb *workbook) rows(sheet string, rows [][]interface{}, header bool) {
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			wb.set(sheet, cell, v)
		}
	}
	if header && len(rows) > 0 && len(rows[0]) > 0 && wb.err == nil {
		last, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
		wb.err = wb.f.SetCellStyle(sheet, "A1", last, wb.bold)
	}
}

func cells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func series(labelHeader, valueHeader string, labels []string, values []float64) [][]interface{} {
	rows := [][]interface{}{{labelHeader, valueHeader}}
	for i, l := range labels {
		var v interface{} = ""
		if i < len(values) {
			v = values[i]
		}
		rows = append(rows, []interface{}{l, v})
	}
	return rows
}

// SheetNames lists the sheets Export always writes, in order
func SheetNames() []string {
	return []string{sheetSummary, sheetStats, sheetNulls, sheetDuplicates, sheetSuggestions}
}
