package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdash/domain/dashboard"
)

func tinyPNG(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestExportProducesPDF(t *testing.T) {
	report := &dashboard.Report{
		Title:       "sales.csv",
		GeneratedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		RowCount:    100,
		Threshold:   75,
		Suggestions: []string{"column x ≥75% duplicated values; check whether it is a constant or should be dropped"},
		Table: dashboard.TableProjection{
			Header: []string{"Metric", "age", "income"},
			Rows:   [][]string{{"mean", "34.5", "52,000"}},
		},
		NullsCounts: []float64{1, 0},
		Charts: []dashboard.ChartImage{
			{Target: dashboard.TargetNulls, Title: "Nulls per column", PNG: tinyPNG(t)},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewExporter().Export(&buf, report))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestExportWithoutTableOrCharts(t *testing.T) {
	report := &dashboard.Report{
		Title: "empty.csv",
		Table: dashboard.TableProjection{Placeholder: "No statistics table available for this dataset"},
	}
	var buf bytes.Buffer
	require.NoError(t, NewExporter().Export(&buf, report))
	assert.NotZero(t, buf.Len())
}

func TestExportNilReport(t *testing.T) {
	assert.Error(t, NewExporter().Export(&bytes.Buffer{}, nil))
}

func TestCountPositive(t *testing.T) {
	assert.Equal(t, 2, countPositive([]float64{1, 0, 3, -1}))
}
