package economics

// Cost and finance assumptions for a utility-scale agrivoltaic plant in Italy.
const (
	PanelCostEUR        = 499.0     // EUR per panel, list price
	PanelDiscount       = 0.8       // volume discount on the list price
	MountingCostRatio   = 1.0 / 250 // mounting as a fraction of panel cost
	InstallationPerKW   = 100.0     // EUR/kW
	BalanceOfPlantPerKW = 1048.5    // EUR/kW (inverters, cabling, grid connection)
	OMPerKWYear         = 35.0      // EUR/kW/y

	DiscountRate = 0.0215 // real, per year
	EnergyPrice  = 0.1301 // EUR/kWh
)
