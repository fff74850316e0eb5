package charts

import (
	"errors"
	"math"
)

// ErrEmptyDataset is returned when there is no point to scale or draw.
var ErrEmptyDataset = errors.New("dataset has no points")

// YAxis is the value range of a chart padded by one standard deviation.
type YAxis struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// ComputeYAxis scales the axis over every point of every series:
// Max = ceil(max) + ceil(σ), Min = floor(min) - ceil(σ) clamped at zero and
// Step = (Max - Min) / (2 * points), with σ the population standard deviation.
func ComputeYAxis(series ...Series) (YAxis, error) {
	var (
		n      int
		sum    float64
		lo, hi = math.Inf(1), math.Inf(-1)
	)
	for _, s := range series {
		for _, p := range s.Points {
			n++
			sum += p.Y
			lo = math.Min(lo, p.Y)
			hi = math.Max(hi, p.Y)
		}
	}
	if n == 0 {
		return YAxis{}, ErrEmptyDataset
	}

	mean := sum / float64(n)
	var sq float64
	for _, s := range series {
		for _, p := range s.Points {
			d := p.Y - mean
			sq += d * d
		}
	}
	pad := math.Ceil(math.Sqrt(sq / float64(n)))

	axis := YAxis{
		Max: math.Ceil(hi) + pad,
		Min: math.Max(0, math.Floor(lo)-pad),
	}
	axis.Step = (axis.Max - axis.Min) / float64(2*n)
	return axis, nil
}
