package ports

import (
	"io"

	"csvdash/domain/dashboard"
)

// ReportExporter writes a dashboard report in one file format
type ReportExporter interface {
	ContentType() string
	Extension() string
	Export(w io.Writer, report *dashboard.Report) error
}
