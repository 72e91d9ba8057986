package analysis

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"

	"csvdash/internal/errors"
)

// Decode parses a service response leniently. Only an unparseable body is an error:
// groups with the wrong shape are dropped (left nil) and bad array elements become 0.
func Decode(body []byte) (*Payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &Payload{}, nil
	}
	if !gjson.ValidBytes(trimmed) {
		return nil, errors.InvalidInput("analysis payload is not valid JSON")
	}

	root := gjson.ParseBytes(trimmed)
	p := &Payload{}
	if !root.IsObject() {
		return p, nil
	}

	if rc := root.Get("rowCount"); rc.Type == gjson.Number && rc.Int() > 0 {
		p.RowCount = int(rc.Int())
	}

	if labels, counts, ok := labeledNumbers(root.Get("nullsByColumn"), "counts"); ok {
		p.NullsByColumn = &ColumnCounts{Labels: labels, Counts: counts}
	} else if labels, values, ok := labeledNumbers(root.Get("nulos"), "values"); ok {
		p.NullsByColumn = &ColumnCounts{Labels: labels, Counts: values}
	}

	if labels, means, ok := labeledNumbers(root.Get("numericStats"), "means"); ok {
		p.NumericStats = &NumericStats{Labels: labels, Means: means}
	} else if labels, values, ok := labeledNumbers(root.Get("stats"), "values"); ok {
		p.NumericStats = &NumericStats{Labels: labels, Means: values}
	}

	p.StatsTable = decodeStatsTable(root.Get("statsTable"))
	p.DuplicatesByColumn = decodeDuplicateColumns(root.Get("duplicatesByColumn"))

	if s := root.Get("duplicateRowSummary"); s.IsObject() {
		summary := &DuplicateRowSummary{}
		if dc := s.Get("duplicateCount"); dc.Type == gjson.Number && dc.Int() > 0 {
			summary.DuplicateCount = int(dc.Int())
		}
		p.DuplicateRowSummary = summary
	}

	if labels, values, ok := labeledNumbers(root.Get("otras"), "values"); ok {
		p.Legacy = &LabeledValues{Labels: labels, Values: values}
	}

	return p, nil
}

// labeledNumbers reads {labels: [...], <valuesKey>: [...]}. Both arrays must be present.
func labeledNumbers(group gjson.Result, valuesKey string) ([]string, []float64, bool) {
	if !group.IsObject() {
		return nil, nil, false
	}
	labels, ok := stringArray(group.Get("labels"))
	if !ok {
		return nil, nil, false
	}
	values, ok := numberArray(group.Get(valuesKey))
	if !ok {
		return nil, nil, false
	}
	return labels, values, true
}

func decodeDuplicateColumns(group gjson.Result) *DuplicateColumns {
	if !group.IsObject() {
		return nil
	}
	labels, ok := stringArray(group.Get("labels"))
	if !ok {
		return nil
	}
	counts, _ := numberArray(group.Get("counts"))
	percent, _ := numberArray(group.Get("percent"))
	if counts == nil {
		counts = []float64{}
	}
	if percent == nil {
		percent = []float64{}
	}
	return &DuplicateColumns{Labels: labels, Counts: counts, Percent: percent}
}

func decodeStatsTable(group gjson.Result) *StatsTable {
	// First-generation services sent [{metric, value}, ...]; fold it into a one-column table.
	if group.IsArray() {
		rows := group.Array()
		t := &StatsTable{
			Columns: []string{"value"},
			Metrics: make([]string, 0, len(rows)),
			Values:  make([][]Cell, 0, len(rows)),
		}
		for _, r := range rows {
			if !r.IsObject() {
				continue
			}
			t.Metrics = append(t.Metrics, r.Get("metric").String())
			t.Values = append(t.Values, []Cell{cell(r.Get("value"))})
		}
		return t
	}
	if !group.IsObject() {
		return nil
	}

	t := &StatsTable{}
	t.Columns, _ = stringArray(group.Get("columns"))
	t.Metrics, _ = stringArray(group.Get("metrics"))
	if v := group.Get("values"); v.IsArray() {
		rows := v.Array()
		t.Values = make([][]Cell, len(rows))
		for i, row := range rows {
			if !row.IsArray() {
				t.Values[i] = []Cell{}
				continue
			}
			elems := row.Array()
			cells := make([]Cell, len(elems))
			for j, e := range elems {
				cells[j] = cell(e)
			}
			t.Values[i] = cells
		}
	}
	return t
}

func cell(r gjson.Result) Cell {
	if r.Type == gjson.Number {
		return Cell{Value: r.Float(), Valid: true}
	}
	return Cell{}
}

func stringArray(r gjson.Result) ([]string, bool) {
	if !r.IsArray() {
		return nil, false
	}
	elems := r.Array()
	out := make([]string, len(elems))
	for i, e := range elems {
		if e.Type == gjson.String {
			out[i] = e.String()
		} else {
			out[i] = e.Raw
		}
	}
	return out, true
}

func numberArray(r gjson.Result) ([]float64, bool) {
	if !r.IsArray() {
		return nil, false
	}
	elems := r.Array()
	out := make([]float64, len(elems))
	for i, e := range elems {
		switch e.Type {
		case gjson.Number, gjson.String:
			out[i] = e.Float()
		}
	}
	return out, true
}

// Encode writes the payload with the canonical field names understood by Decode.
func Encode(p *Payload) ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	w := wirePayload{RowCount: p.RowCount}
	if g := p.NullsByColumn; g != nil {
		w.NullsByColumn = &wireCounts{Labels: g.Labels, Counts: g.Counts}
	}
	if g := p.NumericStats; g != nil {
		w.NumericStats = &wireMeans{Labels: g.Labels, Means: g.Means}
	}
	if g := p.StatsTable; g != nil {
		wt := &wireTable{Columns: g.Columns, Metrics: g.Metrics}
		if g.Values != nil {
			wt.Values = make([][]*float64, len(g.Values))
			for i, row := range g.Values {
				wt.Values[i] = make([]*float64, len(row))
				for j, c := range row {
					if c.Valid {
						v := c.Value
						wt.Values[i][j] = &v
					}
				}
			}
		}
		w.StatsTable = wt
	}
	if g := p.DuplicatesByColumn; g != nil {
		w.DuplicatesByColumn = &wireDuplicates{Labels: g.Labels, Counts: g.Counts, Percent: g.Percent}
	}
	if g := p.DuplicateRowSummary; g != nil {
		w.DuplicateRowSummary = &wireRowSummary{DuplicateCount: g.DuplicateCount}
	}
	if g := p.Legacy; g != nil {
		w.Otras = &wireLabeled{Labels: g.Labels, Values: g.Values}
	}
	return json.Marshal(w)
}

type wirePayload struct {
	RowCount            int             `json:"rowCount"`
	NullsByColumn       *wireCounts     `json:"nullsByColumn,omitempty"`
	NumericStats        *wireMeans      `json:"numericStats,omitempty"`
	StatsTable          *wireTable      `json:"statsTable,omitempty"`
	DuplicatesByColumn  *wireDuplicates `json:"duplicatesByColumn,omitempty"`
	DuplicateRowSummary *wireRowSummary `json:"duplicateRowSummary,omitempty"`
	Otras               *wireLabeled    `json:"otras,omitempty"`
}

type wireCounts struct {
	Labels []string  `json:"labels"`
	Counts []float64 `json:"counts"`
}

type wireMeans struct {
	Labels []string  `json:"labels"`
	Means  []float64 `json:"means"`
}

type wireTable struct {
	Columns []string     `json:"columns"`
	Metrics []string     `json:"metrics"`
	Values  [][]*float64 `json:"values"`
}

type wireDuplicates struct {
	Labels  []string  `json:"labels"`
	Counts  []float64 `json:"counts"`
	Percent []float64 `json:"percent"`
}

type wireRowSummary struct {
	DuplicateCount int `json:"duplicateCount"`
}

type wireLabeled struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}
