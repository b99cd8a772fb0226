package economics

import (
	"errors"
	"math"

	"agrivoltaics/internal/model"
)

// ErrZeroExport is returned when there is no exported energy to levelize over.
var ErrZeroExport = errors.New("undefined LCOE: zero annual export")

// Assumptions are the cost and finance coefficients. Zero fields take the
// package defaults.
type Assumptions struct {
	PanelCostEUR        float64 `yaml:"panel_cost_eur" json:"panel_cost_eur,omitempty"`
	PanelDiscount       float64 `yaml:"panel_discount" json:"panel_discount,omitempty"`
	MountingCostRatio   float64 `yaml:"mounting_cost_ratio" json:"mounting_cost_ratio,omitempty"`
	InstallationPerKW   float64 `yaml:"installation_per_kw" json:"installation_per_kw,omitempty"`
	BalanceOfPlantPerKW float64 `yaml:"balance_of_plant_per_kw" json:"balance_of_plant_per_kw,omitempty"`
	OMPerKWYear         float64 `yaml:"om_per_kw_year" json:"om_per_kw_year,omitempty"`
	DiscountRate        float64 `yaml:"discount_rate" json:"discount_rate,omitempty"`
	EnergyPrice         float64 `yaml:"energy_price" json:"energy_price,omitempty"`
}

func DefaultAssumptions() Assumptions {
	return Assumptions{
		PanelCostEUR:        PanelCostEUR,
		PanelDiscount:       PanelDiscount,
		MountingCostRatio:   MountingCostRatio,
		InstallationPerKW:   InstallationPerKW,
		BalanceOfPlantPerKW: BalanceOfPlantPerKW,
		OMPerKWYear:         OMPerKWYear,
		DiscountRate:        DiscountRate,
		EnergyPrice:         EnergyPrice,
	}
}

// WithDefaults fills zero fields from DefaultAssumptions.
func (a Assumptions) WithDefaults() Assumptions {
	d := DefaultAssumptions()
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&a.PanelCostEUR, d.PanelCostEUR)
	fill(&a.PanelDiscount, d.PanelDiscount)
	fill(&a.MountingCostRatio, d.MountingCostRatio)
	fill(&a.InstallationPerKW, d.InstallationPerKW)
	fill(&a.BalanceOfPlantPerKW, d.BalanceOfPlantPerKW)
	fill(&a.OMPerKWYear, d.OMPerKWYear)
	fill(&a.DiscountRate, d.DiscountRate)
	fill(&a.EnergyPrice, d.EnergyPrice)
	return a
}

// Inputs for one economic evaluation.
type Inputs struct {
	Area          float64 // m^2
	Coverage      float64 // row width / pitch
	PanelArea     float64 // m^2
	RatedPower    float64 // W per panel
	Export        model.Monthly
	SubsidyEUR    float64
	LifetimeYears float64
}

// InputsForSite derives the sizing inputs from a site layout.
func InputsForSite(site model.Site, export model.Monthly, subsidy float64) Inputs {
	return Inputs{
		Area:          site.Area,
		Coverage:      site.GCR(),
		PanelArea:     site.PanelArea,
		RatedPower:    site.RatedPower,
		Export:        export,
		SubsidyEUR:    subsidy,
		LifetimeYears: site.LifetimeYears,
	}
}

func (in Inputs) Validate() error {
	switch {
	case in.Area <= 0:
		return model.Invalid("area", "must be > 0")
	case in.Coverage <= 0 || in.Coverage > 1:
		return model.Invalid("coverage", "must be in (0, 1]")
	case in.PanelArea <= 0:
		return model.Invalid("panel_area", "must be > 0")
	case in.RatedPower <= 0:
		return model.Invalid("rated_power", "must be > 0")
	case in.LifetimeYears <= 0:
		return model.Invalid("lifetime", "must be > 0")
	case in.SubsidyEUR < 0:
		return model.Invalid("subsidy", "must be >= 0")
	}
	return nil
}

// Sizing is the plant size implied by the layout.
type Sizing struct {
	CoveredArea float64 // m^2
	PanelCount  float64
	CapacityKW  float64
}

func Size(in Inputs) Sizing {
	covered := in.Area * in.Coverage
	panels := covered / in.PanelArea
	return Sizing{
		CoveredArea: covered,
		PanelCount:  panels,
		CapacityKW:  panels * in.RatedPower / 1000,
	}
}

// Capex breaks the capital cost into its components, EUR.
type Capex struct {
	Panels         float64
	Mounting       float64
	Installation   float64
	BalanceOfPlant float64
}

func (c Capex) Total() float64 {
	return c.Panels + c.Mounting + c.Installation + c.BalanceOfPlant
}

func CapitalCost(s Sizing, a Assumptions) Capex {
	panels := a.PanelCostEUR * s.PanelCount * a.PanelDiscount
	return Capex{
		Panels:         panels,
		Mounting:       panels * a.MountingCostRatio,
		Installation:   a.InstallationPerKW * s.CapacityKW,
		BalanceOfPlant: a.BalanceOfPlantPerKW * s.CapacityKW,
	}
}

// CapitalRecoveryFactor is r(1+r)^n / ((1+r)^n - 1); 1/n when r is zero.
func CapitalRecoveryFactor(r, n float64) float64 {
	if r == 0 {
		return 1 / n
	}
	g := math.Pow(1+r, n)
	return r * g / (g - 1)
}

// Evaluate computes the lifetime economics record. LCOE is reported in
// EUR/MWh; ROI compares the annual margin at the energy price with CAPEX.
func Evaluate(in Inputs, a Assumptions) (*model.Economics, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	a = a.WithDefaults()

	annual := in.Export.Sum()
	if annual <= 0 {
		return nil, ErrZeroExport
	}

	size := Size(in)
	capex := CapitalCost(size, a).Total()
	om := a.OMPerKWYear * size.CapacityKW
	alpha := CapitalRecoveryFactor(a.DiscountRate, in.LifetimeYears)

	lcoe := (alpha*(capex-in.SubsidyEUR) + om) / annual // EUR/kWh
	roi := annual * (a.EnergyPrice - lcoe) / capex * 100

	return &model.Economics{
		LCOE:            lcoe * 1000,
		ROI:             roi,
		OMCostPerYear:   om,
		EnergyPrice:     a.EnergyPrice,
		CapexEUR:        capex,
		SubsidyEUR:      in.SubsidyEUR,
		CapacityKW:      size.CapacityKW,
		PanelCount:      size.PanelCount,
		AnnualExportKWh: annual,
		CapitalRecovery: alpha,
		LifetimeYears:   in.LifetimeYears,
	}, nil
}
