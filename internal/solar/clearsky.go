package solar

import "math"

// SolarConstant in W/m^2.
const SolarConstant = 1367.0

// Irradiance components in W/m^2.
type Irradiance struct {
	GHI float64
	DNI float64
	DHI float64
}

// ExtraterrestrialDNI is the Spencer (1971) correction of the solar constant
// for the earth-sun distance.
func ExtraterrestrialDNI(doy int) float64 {
	b := dayAngle(doy)
	return SolarConstant * (1.00011 + 0.034221*math.Cos(b) + 0.00128*math.Sin(b) +
		0.000719*math.Cos(2*b) + 0.000077*math.Sin(2*b))
}

// RelativeAirmass is Kasten and Young (1989). NaN below the horizon.
func RelativeAirmass(zenith float64) float64 {
	if zenith >= 90 {
		return math.NaN()
	}
	return 1 / (cosd(zenith) + 0.50572*math.Pow(96.07995-zenith, -1.6364))
}

// PressureAtAltitude in Pa for the standard atmosphere.
func PressureAtAltitude(elevation float64) float64 {
	return 100 * math.Pow((44331.514-elevation)/11880.516, 1/0.1902632)
}

// Ineichen is the Ineichen-Perez clear-sky model with Linke turbidity tl.
func Ineichen(zenith, elevation float64, doy int, tl float64) Irradiance {
	if zenith >= 90 {
		return Irradiance{}
	}
	am := RelativeAirmass(zenith) * PressureAtAltitude(elevation) / 101325
	ext := ExtraterrestrialDNI(doy)

	fh1 := math.Exp(-elevation / 8000)
	fh2 := math.Exp(-elevation / 1250)
	cg1 := 5.09e-5*elevation + 0.868
	cg2 := 3.92e-5*elevation + 0.0387
	cz := math.Max(cosd(zenith), 0)

	ghi := math.Exp(-cg2 * am * (fh1 + fh2*(tl-1)))
	ghi *= math.Exp(0.01 * math.Pow(am, 1.8))
	ghi = cg1 * ext * cz * math.Max(ghi, 0)

	b := 0.664 + 0.163/fh1
	bnci := ext * math.Max(b*math.Exp(-0.09*am*(tl-1)), 0)

	bnci2 := 0.0
	if cz > 0 {
		f := (1 - (0.1-0.2*math.Exp(-tl))/(0.1+0.882/fh1)) / cz
		bnci2 = ghi * clamp(f, 0, 1e20)
	}
	dni := math.Min(bnci, bnci2)

	return Irradiance{
		GHI: ghi,
		DNI: dni,
		DHI: ghi - dni*cz,
	}
}
