package solar

import (
	"context"
	"fmt"
	"math"
	"time"

	"agrivoltaics/internal/model"
	"agrivoltaics/internal/mounting"
)

// Options are the model assumptions behind an estimate. Start from
// DefaultOptions; zero Year, LinkeTurbidity, MaxRows and GroundSamples are
// replaced by defaults, other zeros are taken literally. A zero
// InverterEfficiency reports DC energy.
type Options struct {
	Year int

	// MonthlyLinkeTurbidity overrides LinkeTurbidity when it holds exactly
	// twelve values.
	LinkeTurbidity        float64
	MonthlyLinkeTurbidity []float64

	Albedo             float64
	AirTemperature     float64 // degC
	WindSpeed          float64 // m/s
	TempCoefficient    float64 // 1/degC
	IAMCoefficient     float64 // ASHRAE b0
	Soiling            float64 // fraction of effective irradiance
	SystemLosses       float64 // fraction of DC
	InverterEfficiency float64 // nominal, PVWatts

	Tracker mounting.TrackerParams

	MaxRows       int
	GroundSamples int
}

// ReferenceLinkeTurbidity is the monthly Linke turbidity climatology of the
// central Mediterranean, January first.
var ReferenceLinkeTurbidity = []float64{3.5, 3.5, 3.9, 4.4, 4.8, 5.0, 5.2, 5.1, 4.6, 4.1, 3.7, 3.5}

func DefaultOptions() Options {
	return Options{
		Year:                  2023,
		LinkeTurbidity:        3.0,
		MonthlyLinkeTurbidity: append([]float64(nil), ReferenceLinkeTurbidity...),
		Albedo:                0.25,
		AirTemperature:        25,
		WindSpeed:             1,
		TempCoefficient:       -0.004,
		IAMCoefficient:        0.05,
		Soiling:               0.02,
		SystemLosses:          0.14,
		InverterEfficiency:    0.96,
		Tracker: mounting.TrackerParams{
			MaxAngle:  mounting.DefaultMaxAngle,
			Backtrack: true,
		},
		MaxRows:       10,
		GroundSamples: 100,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Year == 0 {
		o.Year = d.Year
	}
	if o.LinkeTurbidity == 0 {
		o.LinkeTurbidity = d.LinkeTurbidity
	}
	if o.MaxRows <= 0 {
		o.MaxRows = d.MaxRows
	}
	if o.GroundSamples <= 0 {
		o.GroundSamples = d.GroundSamples
	}
	return o
}

// Validate checks ranges that would silently produce nonsense.
func (o Options) Validate() error {
	if n := len(o.MonthlyLinkeTurbidity); n != 0 && n != model.MonthsPerYear {
		return model.Invalid("monthly_linke_turbidity", "must have 12 values")
	}
	if o.LinkeTurbidity < 0 {
		return model.Invalid("linke_turbidity", "must be >= 0")
	}
	if o.Albedo < 0 || o.Albedo > 1 {
		return model.Invalid("albedo", "must be in [0, 1]")
	}
	if o.IAMCoefficient < 0 || o.IAMCoefficient > 1 {
		return model.Invalid("iam_coefficient", "must be in [0, 1]")
	}
	if o.Soiling < 0 || o.Soiling >= 1 {
		return model.Invalid("soiling", "must be in [0, 1)")
	}
	if o.SystemLosses < 0 || o.SystemLosses >= 1 {
		return model.Invalid("system_losses", "must be in [0, 1)")
	}
	if o.InverterEfficiency < 0 || o.InverterEfficiency > 1 {
		return model.Invalid("inverter_efficiency", "must be in [0, 1]")
	}
	return nil
}

func (o Options) turbidity(month int) float64 {
	if len(o.MonthlyLinkeTurbidity) == model.MonthsPerYear {
		return o.MonthlyLinkeTurbidity[month]
	}
	return o.LinkeTurbidity
}

// Estimate is the monthly output of the irradiance/power model.
// Energy is a monthly sum; irradiances are monthly means over all hours.
type Estimate struct {
	EnergyKWh        model.Monthly
	PanelIrradiance  model.Monthly // W/m^2
	CropIrradiance   model.Monthly // W/m^2
	GlobalHorizontal model.Monthly // W/m^2

	CapacityKW float64
}

// Estimator runs the hourly clear-sky model for one site at a time. It holds no
// per-site state and may be shared between goroutines.
type Estimator struct {
	opts Options
}

func NewEstimator(opts Options) *Estimator {
	return &Estimator{opts: opts.withDefaults()}
}

func (e *Estimator) Options() Options { return e.opts }

// Estimate simulates one representative year on an hourly UTC grid, sampling
// each hour at its midpoint.
func (e *Estimator) Estimate(ctx context.Context, site model.Site) (*Estimate, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}
	if err := e.opts.Validate(); err != nil {
		return nil, err
	}
	mount, err := mounting.New(site, e.opts.Tracker)
	if err != nil {
		return nil, err
	}

	gcr := site.GCR()
	pdc0 := site.CapacityKW() * 1000
	lossFactor := 1 - e.opts.SystemLosses
	soilingFactor := 1 - e.opts.Soiling

	// The view factor depends only on tilt for a given layout; trackers revisit
	// the same rotations many times a year.
	viewFactors := map[int]float64{}
	skyView := func(tilt float64) float64 {
		key := int(math.Round(tilt * 10))
		if vf, ok := viewFactors[key]; ok {
			return vf
		}
		vf := SkyViewFactor(float64(key)/10, gcr, site.Pitch, site.Height, e.opts.MaxRows, e.opts.GroundSamples)
		viewFactors[key] = vf
		return vf
	}

	var out Estimate
	var hours [model.MonthsPerYear]int

	start := time.Date(e.opts.Year, time.January, 1, 0, 30, 0, 0, time.UTC)
	for idx, t := 0, start; t.Year() == e.opts.Year; idx, t = idx+1, t.Add(time.Hour) {
		if idx%24 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("solar estimate cancelled: %w", err)
			}
		}
		m := int(t.Month()) - 1
		hours[m]++

		pos := SunPosition(t, site.Latitude, site.Longitude)
		irr := Ineichen(pos.Zenith, site.Elevation, pos.DayOfYear, e.opts.turbidity(m))
		if irr.GHI <= 0 {
			continue
		}

		o := mount.Orient(mounting.Context{Index: idx, Zenith: pos.Zenith, Azimuth: pos.Azimuth})
		plane := HayDavies(o.Tilt, o.Azimuth, pos, irr, ExtraterrestrialDNI(pos.DayOfYear), e.opts.Albedo)
		poa := plane.Global()

		// Reflection losses apply to the beam only; soiling to everything.
		iam := ASHRAEIAM(AOIProjection(o.Tilt, o.Azimuth, pos.Zenith, pos.Azimuth), e.opts.IAMCoefficient)
		effective := (plane.Direct*iam + plane.Sky + plane.Ground) * soilingFactor

		tc := CellTemperature(poa, e.opts.AirTemperature, e.opts.WindSpeed)
		power := PVWattsDC(effective, tc, pdc0, e.opts.TempCoefficient) * lossFactor
		if e.opts.InverterEfficiency > 0 {
			power = PVWattsAC(power, pdc0, e.opts.InverterEfficiency)
		}

		unshaded := UnshadedGroundFraction(o.Tilt, o.Azimuth, pos.Zenith, pos.Azimuth, gcr)
		crop := CropIrradiance(unshaded, skyView(o.Tilt), pos, irr)

		out.EnergyKWh[m] += power / 1000 // one hour
		out.PanelIrradiance[m] += poa
		out.CropIrradiance[m] += crop
		out.GlobalHorizontal[m] += irr.GHI
	}

	for m, n := range hours {
		if n == 0 {
			continue
		}
		out.PanelIrradiance[m] /= float64(n)
		out.CropIrradiance[m] /= float64(n)
		out.GlobalHorizontal[m] /= float64(n)
	}
	out.CapacityKW = pdc0 / 1000
	return &out, nil
}
