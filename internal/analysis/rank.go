package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Objective picks the metric a sweep is ranked by.
type Objective string

const (
	ObjectiveEnergy     Objective = "energy"
	ObjectiveROI        Objective = "roi"
	ObjectiveLCOE       Objective = "lcoe"
	ObjectiveCropImpact Objective = "crop_impact"
)

func ParseObjective(s string) (Objective, error) {
	switch o := Objective(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return ObjectiveROI, nil
	case ObjectiveEnergy, ObjectiveROI, ObjectiveLCOE, ObjectiveCropImpact:
		return o, nil
	default:
		return "", fmt.Errorf("unknown objective %q", s)
	}
}

// Value returns the point's metric oriented so that larger is better:
// LCOE is negated, crop impact is already <= 0 on a grid.
func (o Objective) Value(p Point) float64 {
	switch o {
	case ObjectiveEnergy:
		return p.MeanEnergyKWh
	case ObjectiveLCOE:
		return -p.LCOE
	case ObjectiveCropImpact:
		return p.MeanCropImpact
	default:
		return p.ROI
	}
}

type RankedPoint struct {
	Rank int `json:"rank"`
	Point
}

// Rank sorts points best first by objective. Failed points go last in grid
// order.
func Rank(points []Point, o Objective) []RankedPoint {
	out := make([]RankedPoint, 0, len(points))
	for _, p := range points {
		out = append(out, RankedPoint{Point: p})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Point, out[j].Point
		if a.OK() != b.OK() {
			return a.OK()
		}
		if !a.OK() {
			return false
		}
		return o.Value(a) > o.Value(b)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Summary describes the spread of one objective over a grid.
type Summary struct {
	Objective Objective `json:"objective"`
	Count     int       `json:"count"`
	Failed    int       `json:"failed"`

	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	P05  float64 `json:"p05"`
	P95  float64 `json:"p95"`

	Best *Point `json:"best,omitempty"`
}

// Summarize reports raw metric values (LCOE is not negated).
func Summarize(points []Point, o Objective) Summary {
	s := Summary{Objective: o}
	vals := make([]float64, 0, len(points))
	sum := 0.0
	s.Min, s.Max = math.Inf(1), math.Inf(-1)
	for i := range points {
		p := points[i]
		if !p.OK() {
			s.Failed++
			continue
		}
		v := o.Value(p)
		if o == ObjectiveLCOE {
			v = -v
		}
		vals = append(vals, v)
		sum += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		if s.Best == nil || o.Value(p) > o.Value(*s.Best) {
			s.Best = &points[i]
		}
	}
	s.Count = len(vals)
	if s.Count == 0 {
		s.Min, s.Max = 0, 0
		return s
	}
	sort.Float64s(vals)
	s.Mean = sum / float64(s.Count)
	s.P05 = stat.Quantile(0.05, stat.LinInterp, vals, nil)
	s.P95 = stat.Quantile(0.95, stat.LinInterp, vals, nil)
	return s
}
