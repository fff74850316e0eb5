package charts

import "fmt"

// ChartType is the kind of chart a config describes.
type ChartType string

const (
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
)

// Slice is one labelled value of a pie chart.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartConfig is a declarative chart description. Line charts use Series
// and YAxis; pie charts use Slices.
type ChartConfig struct {
	Type   ChartType `json:"type"`
	Title  string    `json:"title"`
	Series []Series  `json:"series,omitempty"`
	Slices []Slice   `json:"slices,omitempty"`
	YAxis  *YAxis    `json:"yAxis,omitempty"`
	Colors []string  `json:"colors"`
}

var palette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

func assignColors(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = palette[i%len(palette)]
	}
	return colors
}

// BuildLineConfig describes a line chart of one or more series sharing a
// padded Y axis.
func BuildLineConfig(title string, series []Series) (ChartConfig, error) {
	axis, err := ComputeYAxis(series...)
	if err != nil {
		return ChartConfig{}, fmt.Errorf("%s: %w", title, err)
	}
	return ChartConfig{
		Type:   ChartLine,
		Title:  title,
		Series: series,
		YAxis:  &axis,
		Colors: assignColors(len(series)),
	}, nil
}

// BuildPieConfig describes a pie chart. Slices with a non-positive value
// cannot be drawn and are dropped.
func BuildPieConfig(title string, slices []Slice) (ChartConfig, error) {
	kept := make([]Slice, 0, len(slices))
	for _, s := range slices {
		if s.Value > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return ChartConfig{}, fmt.Errorf("%s: %w", title, ErrEmptyDataset)
	}
	return ChartConfig{
		Type:   ChartPie,
		Title:  title,
		Slices: kept,
		Colors: assignColors(len(kept)),
	}, nil
}
