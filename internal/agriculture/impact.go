package agriculture

import "agrivoltaics/internal/model"

// Impact is the monthly comparison of crop irradiance against the crop's
// light requirements. All values in kW/m^2; dormant months carry zeros.
type Impact struct {
	Crop    string
	Stages  [model.MonthsPerYear]Stage
	Impact  model.Monthly
	Minimum model.Monthly
	Maximum model.Monthly
}

// Evaluate looks up the crop and scores the monthly crop-plane irradiance
// (W/m^2, monthly means).
func Evaluate(crop string, cropIrradiance model.Monthly) (*Impact, error) {
	p, err := Lookup(crop)
	if err != nil {
		return nil, err
	}
	return p.Evaluate(cropIrradiance)
}

// Evaluate scores irradiance against this profile. Impact is the signed
// deviation outside [min, max]: negative for a deficit, positive for a surplus.
func (p Profile) Evaluate(cropIrradiance model.Monthly) (*Impact, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	out := &Impact{Crop: p.Name, Stages: p.Stages}
	for m, st := range p.Stages {
		if st == StageDormant {
			continue
		}
		r := p.Ranges[st]
		lo, hi := r.MinKW(), r.MaxKW()
		out.Minimum[m] = lo
		out.Maximum[m] = hi

		irr := cropIrradiance[m] / 1000
		switch {
		case irr < lo:
			out.Impact[m] = irr - lo
		case irr > hi:
			out.Impact[m] = irr - hi
		}
	}
	return out, nil
}

// DeficitOnly clips surpluses to zero, keeping only months where the crop
// lacks light.
func DeficitOnly(impact model.Monthly) model.Monthly {
	for m, v := range impact {
		if v > 0 {
			impact[m] = 0
		}
	}
	return impact
}
