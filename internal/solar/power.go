package solar

import "math"

// SAPM open-rack glass/glass coefficients.
const (
	sapmA      = -3.47
	sapmB      = -0.0594
	sapmDeltaT = 3.0
)

// PVWatts inverter reference efficiency.
const inverterRefEfficiency = 0.9637

// CellTemperature is the Sandia module temperature model, degC.
func CellTemperature(poa, airTemp, windSpeed float64) float64 {
	module := poa*math.Exp(sapmA+sapmB*windSpeed) + airTemp
	return module + poa/1000*sapmDeltaT
}

// ASHRAEIAM is the incidence angle modifier 1 - b0 (1/cos(aoi) - 1) for the
// given cos(aoi). Zero at and beyond grazing incidence.
func ASHRAEIAM(aoiProjection, b0 float64) float64 {
	if aoiProjection <= 0 {
		return 0
	}
	return math.Max(1-b0*(1/aoiProjection-1), 0)
}

// PVWattsDC returns DC power in W for nameplate pdc0 (W) at the given plane of
// array irradiance and cell temperature. gamma is per degC.
func PVWattsDC(poa, cellTemp, pdc0, gamma float64) float64 {
	return math.Max(poa/1000*pdc0*(1+gamma*(cellTemp-25)), 0)
}

// PVWattsAC converts DC power to AC for an inverter rated at pdc0 W DC input
// with nominal efficiency etaNom. Output is clipped at etaNom*pdc0.
func PVWattsAC(pdc, pdc0, etaNom float64) float64 {
	if pdc <= 0 || pdc0 <= 0 {
		return 0
	}
	zeta := pdc / pdc0
	eta := etaNom / inverterRefEfficiency * (-0.0162*zeta - 0.0059/zeta + 0.9858)
	return math.Max(0, math.Min(etaNom*pdc0, math.Max(eta, 0)*pdc))
}
