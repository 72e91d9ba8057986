package charts

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvdash/domain/dashboard"
	"csvdash/internal"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testLibrary(canvas *Canvas) *Library {
	return NewLibrary(canvas, 400, 300, internal.NewLoggerTo(io.Discard, internal.LogLevelError))
}

func percentTick(v float64) string { return "x" }

func TestRenderEveryKind(t *testing.T) {
	lib := testLibrary(NewCanvas())
	tests := []struct {
		name string
		spec dashboard.ChartSpec
	}{
		{"bar", dashboard.ChartSpec{Kind: dashboard.KindBar, Title: "Nulls", Labels: []string{"a", "b"}, Values: []float64{20, 0},
			Options: dashboard.ChartOptions{AxisMin: 0, AxisMax: 30}}},
		{"percent bar", dashboard.ChartSpec{Kind: dashboard.KindBar, Labels: []string{"a"}, Values: []float64{50},
			Options: dashboard.ChartOptions{IsPercent: true, AxisMax: 100, TickFormat: percentTick}}},
		{"line", dashboard.ChartSpec{Kind: dashboard.KindLine, Labels: []string{"a", "b", "c"}, Values: []float64{1, 5, 2},
			Options: dashboard.ChartOptions{AxisMax: 10}}},
		{"single point line", dashboard.ChartSpec{Kind: dashboard.KindLine, Labels: []string{"a"}, Values: []float64{3},
			Options: dashboard.ChartOptions{AxisMax: 10}}},
		{"pie", dashboard.ChartSpec{Kind: dashboard.KindPie, Labels: []string{"dup", "uniq"}, Values: []float64{3, 97}}},
		{"doughnut", dashboard.ChartSpec{Kind: dashboard.KindDoughnut, Labels: []string{"no columns above threshold"}, Values: []float64{1}}},
		{"horizontal bar", dashboard.ChartSpec{Kind: dashboard.KindHorizontalBar, Title: "Highlights", Labels: []string{"city", "code"},
			Values: []float64{90, 75}, Options: dashboard.ChartOptions{IsPercent: true, AxisMax: 100, TickFormat: percentTick}}},
		{"empty bar becomes placeholder", dashboard.ChartSpec{Kind: dashboard.KindBar, Title: "Nothing"}},
		{"zero pie becomes placeholder", dashboard.ChartSpec{Kind: dashboard.KindPie, Labels: []string{"a"}, Values: []float64{0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			png, err := lib.Render(tt.spec)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(png, pngMagic))
		})
	}
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := testLibrary(NewCanvas()).Render(dashboard.ChartSpec{Kind: "radar", Values: []float64{1}})
	assert.Error(t, err)
}

func TestCreateAndDestroy(t *testing.T) {
	canvas := NewCanvas(dashboard.TargetNulls)
	lib := testLibrary(canvas)
	spec := dashboard.ChartSpec{Kind: dashboard.KindBar, Title: "Nulls", Labels: []string{"a"}, Values: []float64{1},
		Options: dashboard.ChartOptions{AxisMax: 2}}

	h, err := lib.Create(dashboard.TargetNulls, spec)
	require.NoError(t, err)
	img, ok := canvas.Image(dashboard.TargetNulls)
	require.True(t, ok)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
	assert.Equal(t, "Nulls", canvas.Title(dashboard.TargetNulls))

	require.NoError(t, h.Destroy())
	_, ok = canvas.Image(dashboard.TargetNulls)
	assert.False(t, ok)
	assert.True(t, canvas.Has(dashboard.TargetNulls))
}

func TestStaleHandleDoesNotClearNewerChart(t *testing.T) {
	canvas := NewCanvas(dashboard.TargetMeans)
	lib := testLibrary(canvas)
	spec := dashboard.ChartSpec{Kind: dashboard.KindPie, Labels: []string{"a"}, Values: []float64{1}}

	old, err := lib.Create(dashboard.TargetMeans, spec)
	require.NoError(t, err)
	_, err = lib.Create(dashboard.TargetMeans, spec)
	require.NoError(t, err)

	require.NoError(t, old.Destroy())
	_, ok := canvas.Image(dashboard.TargetMeans)
	assert.True(t, ok)
}

func TestCreateOnUnregisteredTarget(t *testing.T) {
	lib := testLibrary(NewCanvas())
	_, err := lib.Create(dashboard.TargetCleaning, dashboard.ChartSpec{Kind: dashboard.KindPie, Values: []float64{1}})
	assert.Error(t, err)
}

func TestCanvasRegistry(t *testing.T) {
	canvas := NewCanvas(dashboard.TargetNulls, dashboard.TargetCleaning)
	assert.Equal(t, []dashboard.TargetID{dashboard.TargetCleaning, dashboard.TargetNulls}, canvas.Targets())
	assert.False(t, canvas.Has(dashboard.TargetMeans))

	canvas.Unregister(dashboard.TargetNulls)
	assert.False(t, canvas.Has(dashboard.TargetNulls))
	_, ok := canvas.Image(dashboard.TargetNulls)
	assert.False(t, ok)
}
