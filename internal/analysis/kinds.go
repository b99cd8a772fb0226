package analysis

import (
	"fmt"
	"strings"

	"agrivoltaics/internal/model"
)

// Kind selects one of the standard sweeps.
type Kind string

const (
	KindArea        Kind = "area"
	KindTiltAzimuth Kind = "tilt-azimuth"
	KindTiltPitch   Kind = "tilt-pitch"
)

// DefaultPoints is the number of values per axis when none is given.
const DefaultPoints = 10

func Kinds() []Kind { return []Kind{KindArea, KindTiltAzimuth, KindTiltPitch} }

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-")))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sweep %q (want area, tilt-azimuth or tilt-pitch)", s)
}

// Axes returns the axes of the standard sweep for site with n values per
// axis. y is nil for the one-dimensional area sweep.
//
//	area:         10 .. 200000 m^2
//	tilt-azimuth: tilt 10 .. 50 deg, azimuth 120 .. 240 deg
//	tilt-pitch:   tilt 10 .. 50 deg, pitch row_width+1 .. row_width+10 m
func (k Kind) Axes(site model.Site, n int) (x Axis, y *Axis, err error) {
	if n <= 0 {
		n = DefaultPoints
	}
	switch k {
	case KindArea:
		return Axis{Param: ParamArea, Values: Linspace(10, 2e5, n)}, nil, nil
	case KindTiltAzimuth:
		return Axis{Param: ParamTilt, Values: Linspace(10, 50, n)},
			&Axis{Param: ParamAzimuth, Values: Linspace(120, 240, n)}, nil
	case KindTiltPitch:
		return Axis{Param: ParamTilt, Values: Linspace(10, 50, n)},
			&Axis{Param: ParamPitch, Values: Linspace(site.RowWidth+1, site.RowWidth+10, n)}, nil
	default:
		return Axis{}, nil, fmt.Errorf("unknown sweep %q", string(k))
	}
}
