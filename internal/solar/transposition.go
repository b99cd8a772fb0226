package solar

import "math"

// PlaneOfArray splits the irradiance on a tilted plane, W/m^2.
type PlaneOfArray struct {
	Direct float64
	Sky    float64
	Ground float64
}

func (p PlaneOfArray) Global() float64 { return p.Direct + p.Sky + p.Ground }

// AOIProjection is cos(angle of incidence), possibly negative.
func AOIProjection(tilt, surfaceAzimuth, zenith, solarAzimuth float64) float64 {
	return cosd(tilt)*cosd(zenith) + sind(tilt)*sind(zenith)*cosd(solarAzimuth-surfaceAzimuth)
}

// HayDavies transposes clear-sky components onto a plane using the Hay-Davies
// sky model plus isotropic ground reflection.
func HayDavies(tilt, surfaceAzimuth float64, pos Position, irr Irradiance, dniExtra, albedo float64) PlaneOfArray {
	proj := AOIProjection(tilt, surfaceAzimuth, pos.Zenith, pos.Azimuth)
	out := PlaneOfArray{
		Direct: math.Max(irr.DNI*proj, 0),
		Ground: irr.GHI * albedo * (1 - cosd(tilt)) / 2,
	}
	if irr.GHI <= 0 || dniExtra <= 0 {
		return out
	}
	rb := math.Max(proj, 0) / math.Max(cosd(pos.Zenith), 0.01745)
	ai := irr.DNI / dniExtra
	isotropic := math.Max(irr.DHI*(1-ai)*0.5*(1+cosd(tilt)), 0)
	circumsolar := math.Max(irr.DHI*ai*rb, 0)
	out.Sky = isotropic + circumsolar
	return out
}
