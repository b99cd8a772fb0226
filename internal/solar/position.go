package solar

import (
	"math"
	"time"
)

// Position is the apparent sun position at one instant, in degrees.
type Position struct {
	Zenith    float64
	Azimuth   float64 // clockwise from north
	DayOfYear int
}

// Elevation is 90 - zenith.
func (p Position) Elevation() float64 { return 90 - p.Zenith }

// SunPosition uses Spencer's declination and equation of time with the
// analytical zenith/azimuth formulation. Accuracy is well under a degree,
// which is below the resolution of hourly clear-sky modelling.
func SunPosition(t time.Time, latitude, longitude float64) Position {
	t = t.UTC()
	doy := t.YearDay()
	g := dayAngle(doy)

	decl := declinationSpencer(g)
	eot := equationOfTimeSpencer(g)

	minutes := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60
	hourAngle := (minutes+eot+4*longitude)/4 - 180

	lat := latitude * deg2rad
	ha := hourAngle * deg2rad

	cz := math.Sin(lat)*math.Sin(decl) + math.Cos(lat)*math.Cos(decl)*math.Cos(ha)
	cz = clamp(cz, -1, 1)
	zen := math.Acos(cz)

	az := math.Pi
	if den := math.Sin(zen) * math.Cos(lat); den != 0 {
		c := clamp((cz*math.Sin(lat)-math.Sin(decl))/den, -1, 1)
		az = math.Copysign(1, hourAngle)*math.Abs(math.Acos(c)) + math.Pi
	}

	return Position{
		Zenith:    zen * rad2deg,
		Azimuth:   az * rad2deg,
		DayOfYear: doy,
	}
}

func dayAngle(doy int) float64 {
	return 2 * math.Pi * float64(doy-1) / 365
}

// declinationSpencer returns radians.
func declinationSpencer(g float64) float64 {
	return 0.006918 -
		0.399912*math.Cos(g) + 0.070257*math.Sin(g) -
		0.006758*math.Cos(2*g) + 0.000907*math.Sin(2*g) -
		0.002697*math.Cos(3*g) + 0.00148*math.Sin(3*g)
}

// equationOfTimeSpencer returns minutes.
func equationOfTimeSpencer(g float64) float64 {
	return (1440 / (2 * math.Pi)) * (0.0000075 +
		0.001868*math.Cos(g) - 0.032077*math.Sin(g) -
		0.014615*math.Cos(2*g) - 0.040849*math.Sin(2*g))
}
