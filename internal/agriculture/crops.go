package agriculture

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"agrivoltaics/internal/model"
)

// PPFDToKWm2 converts photosynthetic photon flux density (umol/m^2/s) of
// sunlight to irradiance in kW/m^2.
const PPFDToKWm2 = 0.000217

// ErrUnsupportedCrop is returned for crop names outside the registry.
var ErrUnsupportedCrop = errors.New("unsupported crop")

// Stage is a phenological growth stage.
type Stage string

const (
	StageDormant         Stage = "dormant"
	StageSprouting       Stage = "sprouting"
	StageVegetative      Stage = "vegetative"
	StageTuberInitiation Stage = "tuber_initiation"
	StageTuberBulking    Stage = "tuber_bulking"
	StageMaturation      Stage = "maturation"
)

// LightRange is the acceptable light intensity for a stage, umol/m^2/s.
type LightRange struct {
	MinPPFD float64 `json:"min_ppfd"`
	MaxPPFD float64 `json:"max_ppfd"`
}

// MinKW and MaxKW convert the range to kW/m^2.
func (r LightRange) MinKW() float64 { return r.MinPPFD * PPFDToKWm2 }
func (r LightRange) MaxKW() float64 { return r.MaxPPFD * PPFDToKWm2 }

// Profile is the monthly stage calendar of a crop plus the light range per
// non-dormant stage.
type Profile struct {
	Name   string                     `json:"name"`
	Stages [model.MonthsPerYear]Stage `json:"stages"`
	Ranges map[Stage]LightRange       `json:"ranges"`
}

func (p Profile) Validate() error {
	for m, st := range p.Stages {
		if st == StageDormant {
			continue
		}
		r, ok := p.Ranges[st]
		if !ok {
			return fmt.Errorf("crop %s: no light range for stage %q (%s)", p.Name, st, model.MonthNames[m])
		}
		if r.MinPPFD < 0 || r.MaxPPFD < r.MinPPFD {
			return fmt.Errorf("crop %s: invalid light range for stage %q", p.Name, st)
		}
	}
	return nil
}

func (p Profile) clone() Profile {
	out := p
	out.Ranges = make(map[Stage]LightRange, len(p.Ranges))
	for k, v := range p.Ranges {
		out.Ranges[k] = v
	}
	return out
}

// Spring-planted early potatoes in a Mediterranean climate: sprouting in
// December, harvest in June, fallow over the summer.
var potatoes = Profile{
	Name: "potatoes",
	Stages: [model.MonthsPerYear]Stage{
		StageVegetative,      // Jan
		StageVegetative,      // Feb
		StageTuberInitiation, // Mar
		StageTuberBulking,    // Apr
		StageTuberBulking,    // May
		StageMaturation,      // Jun
		StageDormant,         // Jul
		StageDormant,         // Aug
		StageDormant,         // Sep
		StageDormant,         // Oct
		StageDormant,         // Nov
		StageSprouting,       // Dec
	},
	Ranges: map[Stage]LightRange{
		StageSprouting:       {MinPPFD: 200, MaxPPFD: 800},
		StageVegetative:      {MinPPFD: 500, MaxPPFD: 1200},
		StageTuberInitiation: {MinPPFD: 600, MaxPPFD: 1300},
		StageTuberBulking:    {MinPPFD: 700, MaxPPFD: 1400},
		StageMaturation:      {MinPPFD: 400, MaxPPFD: 1000},
	},
}

var registry = map[string]Profile{
	potatoes.Name: potatoes,
}

// SupportedCrops lists registry keys in sorted order.
func SupportedCrops() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Lookup returns a copy of the named profile; names are case-insensitive.
func Lookup(name string) (Profile, error) {
	p, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedCrop, name, strings.Join(SupportedCrops(), ", "))
	}
	return p.clone(), nil
}
