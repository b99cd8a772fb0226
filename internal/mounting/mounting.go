package mounting

import (
	"fmt"

	"agrivoltaics/internal/model"
)

// Context is the per-timestep input to a mount.
type Context struct {
	Index int

	// Apparent solar position in degrees; azimuth clockwise from north.
	Zenith  float64
	Azimuth float64
}

// Orientation is the resulting panel plane, in degrees.
type Orientation struct {
	Tilt    float64
	Azimuth float64
}

type Mount interface {
	Name() string
	Orient(ctx Context) Orientation
}

// TrackerParams configures single-axis trackers. Zero values take defaults.
type TrackerParams struct {
	MaxAngle  float64
	Backtrack bool
}

const DefaultMaxAngle = 60.0

// New builds the mount described by the site's mounting mode.
func New(site model.Site, tp TrackerParams) (Mount, error) {
	switch site.Mounting {
	case model.MountingFixed, "":
		return &FixedMount{Tilt: site.Tilt, Azimuth: site.Azimuth}, nil
	case model.MountingSingleAxis:
		maxAngle := tp.MaxAngle
		if maxAngle <= 0 {
			maxAngle = DefaultMaxAngle
		}
		return &SingleAxisMount{
			AxisAzimuth: site.Azimuth,
			MaxAngle:    maxAngle,
			Backtrack:   tp.Backtrack,
			GCR:         site.GCR(),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported mounting: %q", site.Mounting)
	}
}
