package render

import (
	"csvdash/domain/analysis"
	"csvdash/domain/dashboard"
)

// TablePlaceholder is shown instead of the statistics table when the payload lacks
// columns, metrics or values.
const TablePlaceholder = "No statistics table available for this dataset"

// ProjectStatsTable lays statsTable out positionally: one row per metric, one cell per
// column. Missing or non-numeric cells are blank.
func ProjectStatsTable(p *analysis.Payload, f *NumberFormatter) dashboard.TableProjection {
	if p == nil || !p.StatsTable.Complete() {
		return dashboard.TableProjection{Placeholder: TablePlaceholder}
	}
	t := p.StatsTable

	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, "Metric")
	header = append(header, t.Columns...)

	rows := make([][]string, len(t.Metrics))
	for i, metric := range t.Metrics {
		row := make([]string, len(t.Columns)+1)
		row[0] = metric
		if i < len(t.Values) {
			for j, c := range t.Values[i] {
				if j >= len(t.Columns) {
					break
				}
				if c.Valid {
					row[j+1] = f.Format(c.Value)
				}
			}
		}
		rows[i] = row
	}

	return dashboard.TableProjection{Header: header, Rows: rows}
}
