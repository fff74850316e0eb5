// Package charts turns account histories into chart datasets and renders
// them as PNG images.
package charts

import (
	"time"

	"github.com/socialpulse/socialpulse/internal/models"
)

// Point is one dated value of a series.
type Point struct {
	X time.Time `json:"x"`
	Y float64   `json:"y"`
}

// Series is the history of one metric of one account.
type Series struct {
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

// BuildSeries projects the history of account onto metric. Points follow
// history order. Samples without the metric or without a date are skipped.
func BuildSeries(account *models.Account, metric string) Series {
	s := Series{Label: account.Name, Points: make([]Point, 0, len(account.History))}
	for _, sample := range account.History {
		v, ok := sample.Value(metric)
		if !ok || sample.Date == nil {
			continue
		}
		s.Points = append(s.Points, Point{X: *sample.Date, Y: float64(v)})
	}
	return s
}
