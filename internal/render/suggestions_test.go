package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdash/domain/analysis"
)

func TestGenerateSuggestionsOrdering(t *testing.T) {
	p := &analysis.Payload{
		DuplicateRowSummary: &analysis.DuplicateRowSummary{DuplicateCount: 5},
		DuplicatesByColumn: &analysis.DuplicateColumns{
			Labels:  []string{"x", "y", "z"},
			Percent: []float64{80, 10, 75},
		},
	}

	got := GenerateSuggestions(p, 75)
	require.Len(t, got, 3)
	assert.Contains(t, got[0], "5 duplicate rows")
	assert.Contains(t, got[1], "column x")
	assert.Contains(t, got[1], "≥75%")
	assert.Contains(t, got[2], "column z")
}

func TestGenerateSuggestionsFallback(t *testing.T) {
	tests := []struct {
		name    string
		payload *analysis.Payload
	}{
		{"nil payload", nil},
		{"empty payload", &analysis.Payload{}},
		{"zero duplicate rows", &analysis.Payload{DuplicateRowSummary: &analysis.DuplicateRowSummary{}}},
		{"all below threshold", &analysis.Payload{DuplicatesByColumn: &analysis.DuplicateColumns{
			Labels: []string{"a"}, Percent: []float64{74},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{FallbackSuggestion}, GenerateSuggestions(tt.payload, 75))
		})
	}
}

func TestGenerateSuggestionsCustomThreshold(t *testing.T) {
	p := &analysis.Payload{DuplicatesByColumn: &analysis.DuplicateColumns{
		Labels: []string{"a"}, Percent: []float64{60},
	}}
	got := GenerateSuggestions(p, 50.5)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "≥50.5%")
}
