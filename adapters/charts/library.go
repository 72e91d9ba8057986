package charts

import (
	"bytes"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"csvdash/domain/dashboard"
	"csvdash/internal"
	"csvdash/internal/errors"
	"csvdash/ports"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 400
)

var palette = []drawing.Color{
	drawing.ColorFromHex("36a2eb"),
	drawing.ColorFromHex("ff6384"),
	drawing.ColorFromHex("ffce56"),
	drawing.ColorFromHex("4bc0c0"),
	drawing.ColorFromHex("9966ff"),
	drawing.ColorFromHex("ff9f40"),
}

var placeholderColor = drawing.ColorFromHex("c9cbcf")

func paletteColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

// Library renders chart specs to PNG and shows them on a Canvas. It implements
// ports.ChartLibrary.
type Library struct {
	canvas *Canvas
	width  int
	height int
	log    *internal.Logger
}

// NewLibrary creates a library drawing width x height images onto canvas. Sizes below
// 100 fall back to the defaults.
func NewLibrary(canvas *Canvas, width, height int, logger *internal.Logger) *Library {
	if width < 100 {
		width = DefaultWidth
	}
	if height < 100 {
		height = DefaultHeight
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Library{canvas: canvas, width: width, height: height, log: logger.With("Charts")}
}

// handle is one chart shown on the canvas
type handle struct {
	canvas     *Canvas
	target     dashboard.TargetID
	generation uint64
}

// Destroy removes the chart unless a newer one replaced it already
func (h *handle) Destroy() error {
	h.canvas.clear(h.target, h.generation)
	return nil
}

// Create renders spec and shows it on target
func (l *Library) Create(target dashboard.TargetID, spec dashboard.ChartSpec) (ports.ChartHandle, error) {
	png, err := l.Render(spec)
	if err != nil {
		return nil, err
	}
	gen, ok := l.canvas.put(target, spec.Title, png)
	if !ok {
		return nil, errors.NotFound("surface " + string(target))
	}
	l.log.Debug("drew %s on %s (%d bytes)", spec.Kind, target, len(png))
	return &handle{canvas: l.canvas, target: target, generation: gen}, nil
}

// Render draws spec as a PNG image without touching the canvas.
func (l *Library) Render(spec dashboard.ChartSpec) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	if !drawable(spec) {
		err = l.renderPlaceholder(&buf, spec.Title, "No data")
	} else {
		switch spec.Kind {
		case dashboard.KindBar:
			err = l.renderBar(&buf, spec)
		case dashboard.KindHorizontalBar:
			err = l.renderHorizontalBar(&buf, spec)
		case dashboard.KindLine:
			err = l.renderLine(&buf, spec)
		case dashboard.KindPie:
			err = l.renderPie(&buf, spec, false)
		case dashboard.KindDoughnut:
			err = l.renderPie(&buf, spec, true)
		default:
			return nil, errors.InvalidInput(fmt.Sprintf("unsupported chart kind %q", spec.Kind))
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "render %s chart %q", spec.Kind, spec.Title)
	}
	return buf.Bytes(), nil
}

// drawable rejects series go-chart cannot draw: no points, or slices summing to zero.
func drawable(spec dashboard.ChartSpec) bool {
	if len(spec.Values) == 0 {
		return false
	}
	if spec.Kind == dashboard.KindPie || spec.Kind == dashboard.KindDoughnut {
		total := 0.0
		for _, v := range spec.Values {
			if v > 0 {
				total += v
			}
		}
		return total > 0
	}
	return true
}

func valueFormatter(tick func(float64) string) chart.ValueFormatter {
	if tick == nil {
		return nil
	}
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return tick(f)
		}
		return fmt.Sprintf("%v", v)
	}
}

func yAxis(spec dashboard.ChartSpec) chart.YAxis {
	axis := chart.YAxis{ValueFormatter: valueFormatter(spec.Options.TickFormat)}
	if spec.Options.AxisMax > spec.Options.AxisMin {
		axis.Range = &chart.ContinuousRange{Min: spec.Options.AxisMin, Max: spec.Options.AxisMax}
	}
	return axis
}

func labelAt(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return ""
}

func (l *Library) renderBar(buf *bytes.Buffer, spec dashboard.ChartSpec) error {
	bars := make([]chart.Value, len(spec.Values))
	for i, v := range spec.Values {
		bars[i] = chart.Value{
			Label: labelAt(spec.Labels, i),
			Value: v,
			Style: chart.Style{FillColor: paletteColor(0), StrokeColor: paletteColor(0)},
		}
	}
	bc := chart.BarChart{
		Title:      spec.Title,
		Width:      l.width,
		Height:     l.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:   max(8, min(60, l.width/(2*len(bars)+1))),
		YAxis:      yAxis(spec),
		Bars:       bars,
	}
	return bc.Render(chart.PNG, buf)
}

func (l *Library) renderLine(buf *bytes.Buffer, spec dashboard.ChartSpec) error {
	n := len(spec.Values)
	xs := make([]float64, n)
	// go-chart takes the x range from the ticks when they are set, so unlabeled ticks
	// half a step outside the points keep the range wider than zero.
	ticks := make([]chart.Tick, 0, n+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i := range xs {
		xs[i] = float64(i)
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labelAt(spec.Labels, i)})
	}
	ticks = append(ticks, chart.Tick{Value: float64(n) - 0.5})
	ys := spec.Values
	// go-chart needs two distinct x values to build a range
	if n == 1 {
		xs = []float64{0, 0.0001}
		ys = []float64{spec.Values[0], spec.Values[0]}
	}

	st := chart.Style{StrokeColor: paletteColor(0), StrokeWidth: 2, DotWidth: 4, DotColor: paletteColor(0)}
	ch := chart.Chart{
		Title:      spec.Title,
		Width:      l.width,
		Height:     l.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			Ticks: ticks,
		},
		YAxis: yAxis(spec),
		Series: []chart.Series{
			chart.ContinuousSeries{Name: spec.SeriesLabel, XValues: xs, YValues: ys, Style: st},
		},
	}
	return ch.Render(chart.PNG, buf)
}

func (l *Library) renderPie(buf *bytes.Buffer, spec dashboard.ChartSpec, donut bool) error {
	values := make([]chart.Value, 0, len(spec.Values))
	single := len(spec.Values) == 1
	for i, v := range spec.Values {
		if v <= 0 {
			continue
		}
		color := paletteColor(i)
		if single && donut {
			color = placeholderColor
		}
		values = append(values, chart.Value{
			Label: labelAt(spec.Labels, i),
			Value: v,
			Style: chart.Style{FillColor: color},
		})
	}
	if donut {
		dc := chart.DonutChart{Title: spec.Title, Width: l.width, Height: l.height, Values: values}
		return dc.Render(chart.PNG, buf)
	}
	pc := chart.PieChart{Title: spec.Title, Width: l.width, Height: l.height, Values: values}
	return pc.Render(chart.PNG, buf)
}

// renderHorizontalBar draws one bar per label growing to the right. go-chart has no
// horizontal bar chart, so the bars are drawn directly on a PNG renderer.
func (l *Library) renderHorizontalBar(buf *bytes.Buffer, spec dashboard.ChartSpec) error {
	r, err := chart.PNG(l.width, l.height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(font)
	fillRect(r, 0, 0, l.width, l.height, chart.ColorWhite)

	r.SetFontColor(chart.ColorBlack)
	r.SetFontSize(14)
	tb := r.MeasureText(spec.Title)
	r.Text(spec.Title, (l.width-tb.Width())/2, 24)

	r.SetFontSize(10)
	labelWidth := 0
	for _, label := range spec.Labels {
		labelWidth = max(labelWidth, r.MeasureText(label).Width())
	}

	lo, hi := spec.Options.AxisMin, spec.Options.AxisMax
	if hi <= lo {
		lo, hi = 0, 1
		for _, v := range spec.Values {
			hi = math.Max(hi, v)
		}
	}
	tick := spec.Options.TickFormat
	if tick == nil {
		tick = func(v float64) string { return fmt.Sprintf("%g", v) }
	}

	left, top := labelWidth+24, 44
	right, bottom := l.width-48, l.height-32
	plotW := right - left
	rowH := float64(bottom-top) / float64(len(spec.Values))
	scale := func(v float64) int {
		v = math.Min(math.Max(v, lo), hi)
		return left + int(float64(plotW)*(v-lo)/(hi-lo))
	}

	// vertical grid with ticks at quarters of the axis
	r.SetFontColor(chart.ColorAlternateGray)
	for i := 0; i <= 4; i++ {
		v := lo + (hi-lo)*float64(i)/4
		x := scale(v)
		r.SetStrokeColor(chart.ColorAlternateLightGray)
		r.SetStrokeWidth(1)
		r.MoveTo(x, top)
		r.LineTo(x, bottom)
		r.Stroke()
		label := tick(v)
		r.Text(label, x-r.MeasureText(label).Width()/2, bottom+16)
	}

	for i, v := range spec.Values {
		y0 := top + int(rowH*float64(i)+rowH*0.15)
		y1 := top + int(rowH*float64(i+1)-rowH*0.15)
		x1 := scale(v)
		if x1 > left {
			fillRect(r, left, y0, x1, y1, paletteColor(1))
		}

		label := labelAt(spec.Labels, i)
		mid := (y0+y1)/2 + 4
		r.SetFontColor(chart.ColorBlack)
		r.Text(label, left-8-r.MeasureText(label).Width(), mid)
		r.Text(tick(v), x1+4, mid)
	}

	return r.Save(buf)
}

// renderPlaceholder draws an empty chart carrying only a title and a message.
func (l *Library) renderPlaceholder(buf *bytes.Buffer, title, message string) error {
	r, err := chart.PNG(l.width, l.height)
	if err != nil {
		return err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return err
	}
	r.SetFont(font)
	fillRect(r, 0, 0, l.width, l.height, chart.ColorWhite)

	r.SetFontColor(chart.ColorBlack)
	r.SetFontSize(14)
	tb := r.MeasureText(title)
	r.Text(title, (l.width-tb.Width())/2, 24)

	r.SetFontColor(chart.ColorAlternateGray)
	r.SetFontSize(12)
	mb := r.MeasureText(message)
	r.Text(message, (l.width-mb.Width())/2, l.height/2)
	return r.Save(buf)
}

func fillRect(r chart.Renderer, x0, y0, x1, y1 int, color drawing.Color) {
	r.SetFillColor(color)
	r.SetStrokeColor(color)
	r.SetStrokeWidth(0)
	r.MoveTo(x0, y0)
	r.LineTo(x1, y0)
	r.LineTo(x1, y1)
	r.LineTo(x0, y1)
	r.Close()
	r.Fill()
}
