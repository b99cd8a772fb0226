package mounting

import "math"

// SingleAxisMount is a horizontal single-axis tracker. The rotation axis points
// along AxisAzimuth; positive rotation tilts the panels towards AxisAzimuth+90.
//
// With Backtrack set, the rotation is reduced so that neighbouring rows never
// shade each other (true-tracking angle corrected by acos(cos(theta)/GCR)).
type SingleAxisMount struct {
	AxisAzimuth float64
	MaxAngle    float64
	Backtrack   bool
	GCR         float64
}

func (m *SingleAxisMount) Name() string { return "single_axis" }

func (m *SingleAxisMount) Orient(ctx Context) Orientation {
	theta := m.Rotation(ctx.Zenith, ctx.Azimuth)
	az := m.AxisAzimuth + 90
	if theta < 0 {
		az = m.AxisAzimuth - 90
	}
	return Orientation{Tilt: math.Abs(theta), Azimuth: normalizeAzimuth(az)}
}

// Rotation returns the signed tracker angle in degrees. Night stows flat.
func (m *SingleAxisMount) Rotation(zenith, azimuth float64) float64 {
	if zenith >= 90 {
		return 0
	}
	sz := sind(zenith)
	x := sz * sind(azimuth)
	y := sz * cosd(azimuth)
	z := cosd(zenith)

	// Sun vector in the tracker frame: y along the axis, x 90 deg clockwise.
	xp := x*cosd(m.AxisAzimuth) - y*sind(m.AxisAzimuth)
	zp := z
	theta := math.Atan2(xp, zp) * rad2deg

	if m.Backtrack && m.GCR > 0 {
		c := math.Min(math.Cos(theta*deg2rad)/m.GCR, 1)
		wid := math.Acos(c) * rad2deg
		if theta < 0 {
			theta += wid
		} else {
			theta -= wid
		}
	}

	return math.Max(-m.MaxAngle, math.Min(m.MaxAngle, theta))
}

func normalizeAzimuth(az float64) float64 {
	az = math.Mod(az, 360)
	if az < 0 {
		az += 360
	}
	return az
}

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

func sind(d float64) float64 { return math.Sin(d * deg2rad) }
func cosd(d float64) float64 { return math.Cos(d * deg2rad) }
