package pipeline

import (
	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/economics"
	"agrivoltaics/internal/model"
	"agrivoltaics/internal/usage"
)

// Inputs is everything one evaluation needs.
type Inputs struct {
	Site        model.Site
	Crop        string
	SubsidyEUR  float64
	Usage       usage.Profile
	Assumptions economics.Assumptions

	// DeficitOnly reports only light deficits; surpluses become zero.
	DeficitOnly bool
}

// MonthlyRow is one row of the monthly table.
// Units: energies kWh, irradiances W/m^2 (monthly mean), crop columns kW/m^2.
type MonthlyRow struct {
	Month string

	EnergyOutputKWh float64
	PanelIrradiance float64
	CropIrradiance  float64
	EnergyUsageKWh  float64
	EnergyExportKWh float64

	CropImpact  float64
	CropMinimum float64
	CropMaximum float64
	Stage       agriculture.Stage
}

type Result struct {
	Monthly   []MonthlyRow
	Economics model.Economics
}

// Column extracts one monthly series from the table.
func (r *Result) Column(get func(MonthlyRow) float64) model.Monthly {
	var out model.Monthly
	for i, row := range r.Monthly {
		if i >= model.MonthsPerYear {
			break
		}
		out[i] = get(row)
	}
	return out
}

// AnnualOutputKWh sums the energy output column.
func (r *Result) AnnualOutputKWh() float64 {
	return r.Column(func(row MonthlyRow) float64 { return row.EnergyOutputKWh }).Sum()
}

// MeanCropImpact is the twelve-month mean of the impact column, kW/m^2.
func (r *Result) MeanCropImpact() float64 {
	return r.Column(func(row MonthlyRow) float64 { return row.CropImpact }).Mean()
}

// MeanEnergyOutputKWh is the twelve-month mean of the output column.
func (r *Result) MeanEnergyOutputKWh() float64 {
	return r.Column(func(row MonthlyRow) float64 { return row.EnergyOutputKWh }).Mean()
}
