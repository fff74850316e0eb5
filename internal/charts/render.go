package charts

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const maxTicks = 12

// Renderer rasterizes chart configs to PNG.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer returns a renderer with the default image size.
func NewRenderer() *Renderer {
	return &Renderer{Width: 1024, Height: 512}
}

// Render draws cfg and returns the PNG bytes.
func (r *Renderer) Render(cfg ChartConfig) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch cfg.Type {
	case ChartLine:
		err = r.line(cfg).Render(chart.PNG, &buf)
	case ChartPie:
		err = r.pie(cfg).Render(chart.PNG, &buf)
	default:
		return nil, fmt.Errorf("unsupported chart type %q", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s chart: %w", cfg.Type, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) line(cfg ChartConfig) *chart.Chart {
	axis := YAxis{Max: 1}
	if cfg.YAxis != nil {
		axis = *cfg.YAxis
	}
	if axis.Max <= axis.Min {
		axis.Max = axis.Min + 1
	}

	series := make([]chart.Series, 0, len(cfg.Series))
	var first, last time.Time
	for i, s := range cfg.Series {
		ts := chart.TimeSeries{
			Name:    s.Label,
			XValues: make([]time.Time, len(s.Points)),
			YValues: make([]float64, len(s.Points)),
			Style:   seriesStyle(cfg.Colors, i),
		}
		for j, p := range s.Points {
			ts.XValues[j] = p.X
			ts.YValues[j] = p.Y
			if first.IsZero() || p.X.Before(first) {
				first = p.X
			}
			if p.X.After(last) {
				last = p.X
			}
		}
		series = append(series, ts)
	}

	graph := &chart.Chart{
		Title:  cfg.Title,
		Width:  r.Width,
		Height: r.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("02/01/2006"),
		},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: axis.Min, Max: axis.Max},
			Ticks:          ticks(axis),
			ValueFormatter: formatCount,
		},
		Series: series,
	}

	// A single date has no horizontal extent; widen it by a day each side.
	if !first.IsZero() && first.Equal(last) {
		graph.XAxis.Range = &chart.ContinuousRange{
			Min: chart.TimeToFloat64(first.AddDate(0, 0, -1)),
			Max: chart.TimeToFloat64(last.AddDate(0, 0, 1)),
		}
	}
	if len(series) > 1 {
		graph.Elements = []chart.Renderable{chart.LegendLeft(graph)}
	}
	return graph
}

func (r *Renderer) pie(cfg ChartConfig) *chart.PieChart {
	values := make([]chart.Value, 0, len(cfg.Slices))
	for i, s := range cfg.Slices {
		values = append(values, chart.Value{
			Label: s.Label + " (" + formatCount(s.Value) + ")",
			Value: s.Value,
			Style: chart.Style{FillColor: color(cfg.Colors, i)},
		})
	}
	return &chart.PieChart{
		Title:  cfg.Title,
		Width:  r.Height,
		Height: r.Height,
		Values: values,
	}
}

// ticks lays out Y ticks every axis.Step, widening the stride so no more
// than maxTicks are drawn.
func ticks(axis YAxis) []chart.Tick {
	step := axis.Step
	span := axis.Max - axis.Min
	if step <= 0 || span/step > maxTicks {
		step = span / maxTicks
	}
	if step > 1 {
		step = math.Ceil(step)
	}

	out := make([]chart.Tick, 0, maxTicks+2)
	for v := axis.Min; v < axis.Max; v += step {
		out = append(out, chart.Tick{Value: v, Label: formatCount(v)})
	}
	return append(out, chart.Tick{Value: axis.Max, Label: formatCount(axis.Max)})
}

func seriesStyle(colors []string, i int) chart.Style {
	c := color(colors, i)
	return chart.Style{
		StrokeColor: c,
		StrokeWidth: 2,
		DotColor:    c,
		DotWidth:    3,
	}
}

func color(colors []string, i int) drawing.Color {
	if i < len(colors) {
		return drawing.ColorFromHex(strings.TrimPrefix(colors[i], "#"))
	}
	return chart.GetDefaultColor(i)
}

// formatCount prints whole values with thousands separators.
func formatCount(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprint(v)
	}
	if f != math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}

	s := strconv.FormatInt(int64(f), 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
