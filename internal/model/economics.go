package model

// Economics is the one-row lifetime summary of an evaluation.
// Units:
// - LCOE: EUR/MWh
// - ROI: percent
// - OMCostPerYear, CapexEUR, SubsidyEUR: EUR (O&M per year)
// - EnergyPrice: EUR/kWh
type Economics struct {
	LCOE          float64 `json:"lcoe_eur_per_mwh"`
	ROI           float64 `json:"roi_percent"`
	OMCostPerYear float64 `json:"om_eur_per_year"`
	EnergyPrice   float64 `json:"energy_price_eur_per_kwh"`

	CapexEUR        float64 `json:"capex_eur"`
	SubsidyEUR      float64 `json:"subsidy_eur"`
	CapacityKW      float64 `json:"capacity_kw"`
	PanelCount      float64 `json:"panel_count"`
	AnnualExportKWh float64 `json:"annual_export_kwh"`
	CapitalRecovery float64 `json:"capital_recovery_factor"`
	LifetimeYears   float64 `json:"lifetime_years"`
}
