package render

import (
	"fmt"

	"csvdash/domain/analysis"
)

// FallbackSuggestion is emitted when no other advisory applies.
const FallbackSuggestion = "no high-duplication columns detected; review outliers and type consistency"

// GenerateSuggestions lists cleaning advisories: duplicate rows first, then every column
// at or above threshold in payload order, else the single fallback.
func GenerateSuggestions(p *analysis.Payload, threshold float64) []string {
	var out []string
	if p != nil && p.DuplicateRowSummary != nil && p.DuplicateRowSummary.DuplicateCount > 0 {
		out = append(out, fmt.Sprintf("%d duplicate rows detected; remove them before analysis",
			p.DuplicateRowSummary.DuplicateCount))
	}

	h := DeriveCleaningHighlights(p, threshold)
	for _, label := range h.Labels {
		out = append(out, fmt.Sprintf("column %s ≥%s%% duplicated values; check whether it is a constant or should be dropped",
			label, formatThreshold(threshold)))
	}

	if len(out) == 0 {
		out = append(out, FallbackSuggestion)
	}
	return out
}
