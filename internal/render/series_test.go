package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdash/domain/analysis"
	"csvdash/domain/dashboard"
)

func TestDeriveNullsSeriesCountIsPassthrough(t *testing.T) {
	p := &analysis.Payload{
		RowCount:      10,
		NullsByColumn: &analysis.ColumnCounts{Labels: []string{"a", "b", "c"}, Counts: []float64{2, 0, 7}},
	}

	s := DeriveNullsSeries(p, dashboard.ModeCount)
	assert.Equal(t, p.NullsByColumn.Counts, s.Values)
	assert.Equal(t, p.NullsByColumn.Labels, s.Labels)
	assert.False(t, s.IsPercent)

	// the payload must not be mutated by percent scaling
	DeriveNullsSeries(p, dashboard.ModePercent)
	assert.Equal(t, []float64{2, 0, 7}, p.NullsByColumn.Counts)
}

func TestDeriveNullsSeriesPercent(t *testing.T) {
	p := &analysis.Payload{
		RowCount:      10,
		NullsByColumn: &analysis.ColumnCounts{Labels: []string{"a", "b"}, Counts: []float64{2, 0}},
	}

	s := DeriveNullsSeries(p, dashboard.ModePercent)
	assert.True(t, s.IsPercent)
	require.Len(t, s.Values, 2)
	assert.InDelta(t, 20, s.Values[0], 1e-9)
	assert.InDelta(t, 0, s.Values[1], 1e-9)
}

func TestDeriveNullsSeriesZeroRowsFloorsDenominator(t *testing.T) {
	p := &analysis.Payload{
		RowCount:      0,
		NullsByColumn: &analysis.ColumnCounts{Labels: []string{"a"}, Counts: []float64{3}},
	}

	s := DeriveNullsSeries(p, dashboard.ModePercent)
	assert.Equal(t, []float64{300}, s.Values)
}

func TestDeriveNullsSeriesAbsent(t *testing.T) {
	for _, mode := range []dashboard.DisplayMode{dashboard.ModeCount, dashboard.ModePercent} {
		s := DeriveNullsSeries(&analysis.Payload{}, mode)
		assert.Empty(t, s.Labels)
		assert.Empty(t, s.Values)
		assert.NotNil(t, s.Values)
		assert.Equal(t, mode == dashboard.ModePercent, s.IsPercent)
	}
	s := DeriveNullsSeries(nil, dashboard.ModeCount)
	assert.Empty(t, s.Values)
}

func TestDeriveNullsSeriesAlignsLengths(t *testing.T) {
	p := &analysis.Payload{
		NullsByColumn: &analysis.ColumnCounts{Labels: []string{"a", "b", "c"}, Counts: []float64{1}},
	}
	s := DeriveNullsSeries(p, dashboard.ModeCount)
	assert.Equal(t, []float64{1, 0, 0}, s.Values)

	p.NullsByColumn = &analysis.ColumnCounts{Labels: []string{"a"}, Counts: []float64{1, 2, 3}}
	s = DeriveNullsSeries(p, dashboard.ModeCount)
	assert.Equal(t, []float64{1}, s.Values)
}

func TestDeriveDuplicatesSeries(t *testing.T) {
	byColumn := &analysis.DuplicateColumns{
		Labels:  []string{"x", "y"},
		Counts:  []float64{8, 1},
		Percent: []float64{80, 10},
	}
	legacy := &analysis.LabeledValues{Labels: []string{"dup", "uniq"}, Values: []float64{3, 97}}

	tests := []struct {
		name        string
		payload     *analysis.Payload
		mode        dashboard.DisplayMode
		wantSource  DuplicatesSource
		wantValues  []float64
		wantPercent bool
	}{
		{"by column count", &analysis.Payload{DuplicatesByColumn: byColumn, Legacy: legacy}, dashboard.ModeCount, SourceByColumn, []float64{8, 1}, false},
		{"by column percent uses payload percent", &analysis.Payload{RowCount: 1000, DuplicatesByColumn: byColumn}, dashboard.ModePercent, SourceByColumn, []float64{80, 10}, true},
		{"legacy count", &analysis.Payload{Legacy: legacy}, dashboard.ModeCount, SourceLegacy, []float64{3, 97}, false},
		{"legacy ignores percent", &analysis.Payload{Legacy: legacy}, dashboard.ModePercent, SourceLegacy, []float64{3, 97}, false},
		{"nothing", &analysis.Payload{}, dashboard.ModePercent, SourceNone, []float64{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DeriveDuplicatesSeries(tt.payload, tt.mode)
			assert.Equal(t, tt.wantSource, d.Source)
			assert.Equal(t, tt.wantValues, d.Values)
			assert.Equal(t, tt.wantPercent, d.IsPercent)
			assert.Len(t, d.Values, len(d.Labels))
		})
	}
}

func TestDeriveCleaningHighlights(t *testing.T) {
	p := &analysis.Payload{DuplicatesByColumn: &analysis.DuplicateColumns{
		Labels:  []string{"id", "city", "code", "note"},
		Counts:  []float64{0, 90, 75, 99},
		Percent: []float64{0, 90, 75, 99},
	}}

	h := DeriveCleaningHighlights(p, 75)
	assert.Equal(t, Present, h.Availability)
	assert.Equal(t, []string{"city", "code", "note"}, h.Labels)
	assert.Equal(t, []float64{90, 75, 99}, h.Values)

	assert.LessOrEqual(t, len(h.Values), len(p.DuplicatesByColumn.Labels))
	for _, v := range h.Values {
		assert.GreaterOrEqual(t, v, 75.0)
	}
}

func TestDeriveCleaningHighlightsEmptyVersusAbsent(t *testing.T) {
	absent := DeriveCleaningHighlights(&analysis.Payload{}, 75)
	assert.Equal(t, Absent, absent.Availability)

	empty := DeriveCleaningHighlights(&analysis.Payload{DuplicatesByColumn: &analysis.DuplicateColumns{
		Labels:  []string{"a", "b"},
		Percent: []float64{10, 74.9},
	}}, 75)
	assert.Equal(t, Empty, empty.Availability)
	assert.Empty(t, empty.Labels)

	noLabels := DeriveCleaningHighlights(&analysis.Payload{DuplicatesByColumn: &analysis.DuplicateColumns{
		Labels: []string{},
	}}, 75)
	assert.Equal(t, Empty, noLabels.Availability)
}

func TestAvailabilityString(t *testing.T) {
	assert.Equal(t, "absent", Absent.String())
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "present", Present.String())
}
