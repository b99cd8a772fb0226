package solar

import "math"

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

func sind(d float64) float64 { return math.Sin(d * deg2rad) }
func cosd(d float64) float64 { return math.Cos(d * deg2rad) }
func tand(d float64) float64 { return math.Tan(d * deg2rad) }

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
