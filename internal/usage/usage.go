// Package usage estimates the energy consumed on site each month.
//
// Nothing is consumed by default: the installation has no metered loads yet.
// A Profile can carry known monthly loads (cleaning, irrigation pumps) which
// are subtracted from the output before export.
package usage

import "agrivoltaics/internal/model"

// Profile is the optional on-site load, kWh per month.
type Profile struct {
	MonthlyKWh []float64 `yaml:"monthly_kwh" json:"monthly_kwh,omitempty"`
}

func (p Profile) Validate() error {
	if len(p.MonthlyKWh) == 0 {
		return nil
	}
	if len(p.MonthlyKWh) != model.MonthsPerYear {
		return model.Invalid("usage.monthly_kwh", "must have 12 values")
	}
	for _, v := range p.MonthlyKWh {
		if v < 0 {
			return model.Invalid("usage.monthly_kwh", "must be >= 0")
		}
	}
	return nil
}

// Estimate returns the monthly usage series; zeros for an empty profile.
func Estimate(p Profile) (model.Monthly, error) {
	if err := p.Validate(); err != nil {
		return model.Monthly{}, err
	}
	if len(p.MonthlyKWh) == 0 {
		return model.Monthly{}, nil
	}
	return model.MonthlyFromSlice(p.MonthlyKWh)
}
