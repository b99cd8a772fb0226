package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/economics"
	"agrivoltaics/internal/model"
	"agrivoltaics/internal/pipeline"
	"agrivoltaics/internal/solar"
	"agrivoltaics/internal/usage"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load the site from a separate YAML (e.g. examples/sites/*.yaml).
	// Keys given under site override the file.
	SiteFile  string          `yaml:"site_file" json:"site_file,omitempty"`
	Site      SiteConfig      `yaml:"site" json:"site"`
	Crop      string          `yaml:"crop" json:"crop"`
	Financial FinancialConfig `yaml:"financial" json:"financial"`
	Model     ModelConfig     `yaml:"model" json:"model"`
	Usage     usage.Profile   `yaml:"usage" json:"usage"`
	Output    OutputConfig    `yaml:"output" json:"output"`
}

type SiteConfig struct {
	Name          string  `yaml:"name" json:"name,omitempty"`
	Latitude      float64 `yaml:"latitude" json:"latitude"`
	Longitude     float64 `yaml:"longitude" json:"longitude"`
	Elevation     float64 `yaml:"elevation" json:"elevation"`
	Height        float64 `yaml:"height" json:"height"`
	Azimuth       float64 `yaml:"azimuth" json:"azimuth"`
	Tilt          float64 `yaml:"tilt" json:"tilt"`
	RowWidth      float64 `yaml:"row_width" json:"row_width"`
	Pitch         float64 `yaml:"pitch" json:"pitch"`
	Area          float64 `yaml:"area" json:"area"`
	PanelArea     float64 `yaml:"panel_area" json:"panel_area"`
	RatedPower    float64 `yaml:"rated_power" json:"rated_power"`
	LifetimeYears float64 `yaml:"lifetime" json:"lifetime"`
	Mounting      string  `yaml:"mounting" json:"mounting,omitempty"`
}

type FinancialConfig struct {
	SubsidyEUR  float64               `yaml:"subsidy" json:"subsidy"`
	Assumptions economics.Assumptions `yaml:",inline" json:"assumptions"`
}

// ModelConfig tunes the irradiance model. Zero fields keep solar.DefaultOptions.
type ModelConfig struct {
	Year                  int       `yaml:"year" json:"year,omitempty"`
	LinkeTurbidity        float64   `yaml:"linke_turbidity" json:"linke_turbidity,omitempty"`
	MonthlyLinkeTurbidity []float64 `yaml:"monthly_linke_turbidity" json:"monthly_linke_turbidity,omitempty"`
	Albedo                *float64  `yaml:"albedo" json:"albedo,omitempty"`
	AirTemperature        *float64  `yaml:"air_temperature" json:"air_temperature,omitempty"`
	WindSpeed             *float64  `yaml:"wind_speed" json:"wind_speed,omitempty"`
	TempCoefficient       *float64  `yaml:"temp_coefficient" json:"temp_coefficient,omitempty"`
	SystemLosses          *float64  `yaml:"system_losses" json:"system_losses,omitempty"`
	IAMCoefficient        *float64  `yaml:"iam_coefficient" json:"iam_coefficient,omitempty"`
	Soiling               *float64  `yaml:"soiling" json:"soiling,omitempty"`
	InverterEfficiency    *float64  `yaml:"inverter_efficiency" json:"inverter_efficiency,omitempty"`
	TrackerMaxAngle       float64   `yaml:"tracker_max_angle" json:"tracker_max_angle,omitempty"`
	Backtrack             *bool     `yaml:"backtrack" json:"backtrack,omitempty"`
	MaxRows               int       `yaml:"max_rows" json:"max_rows,omitempty"`
	GroundSamples         int       `yaml:"ground_samples" json:"ground_samples,omitempty"`
}

type OutputConfig struct {
	Dir         string `yaml:"dir" json:"dir,omitempty"`
	Name        string `yaml:"name" json:"name,omitempty"`
	DeficitOnly bool   `yaml:"deficit_only" json:"deficit_only,omitempty"`
	MeasureTime bool   `yaml:"measure_time" json:"measure_time,omitempty"`
}

// Default is the reference scenario: potatoes on 10 ha near Malta.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Name:          "default",
			Latitude:      36,
			Longitude:     14.5,
			Elevation:     10,
			Height:        3,
			Azimuth:       180,
			Tilt:          30,
			RowWidth:      4,
			Pitch:         9,
			Area:          100000,
			PanelArea:     2.42,
			RatedPower:    580,
			LifetimeYears: 30,
			Mounting:      string(model.MountingFixed),
		},
		Crop:      "potatoes",
		Financial: FinancialConfig{Assumptions: economics.DefaultAssumptions()},
		Output:    OutputConfig{Dir: "output", Name: "default"},
	}
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Layers, lowest first: Default, the site file, then the keys present in path.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var head struct {
		SiteFile string `yaml:"site_file"`
	}
	if err := yaml.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	c := Default()
	c.Site.Name = ""
	c.Output.Name = ""
	if head.SiteFile != "" {
		sitePath := head.SiteFile
		if !filepath.IsAbs(sitePath) {
			// Relative to the config file first, then to the working directory.
			cand := filepath.Join(filepath.Dir(path), sitePath)
			if _, err := os.Stat(cand); err == nil {
				sitePath = cand
			}
		}
		preset, err := LoadSiteFile(sitePath)
		if err != nil {
			return nil, err
		}
		c.Site = preset.Apply(c.Site)
	}
	// Decoding over the defaults only touches keys present in the file.
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	if c.Crop == "" {
		c.Crop = Default().Crop
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	site, err := c.Site.ToModel()
	if err != nil {
		return fmt.Errorf("site config invalid: %w", err)
	}
	if err := site.Validate(); err != nil {
		return fmt.Errorf("site config invalid: %w", err)
	}
	if _, err := agriculture.Lookup(c.Crop); err != nil {
		return err
	}
	if c.Financial.SubsidyEUR < 0 {
		return model.Invalid("subsidy", "must be >= 0")
	}
	if err := c.Usage.Validate(); err != nil {
		return err
	}
	return c.SolarOptions().Validate()
}

func (s SiteConfig) ToModel() (model.Site, error) {
	mode, err := model.ParseMountingMode(s.Mounting)
	if err != nil {
		return model.Site{}, err
	}
	return model.Site{
		Latitude:      s.Latitude,
		Longitude:     s.Longitude,
		Elevation:     s.Elevation,
		Height:        s.Height,
		Azimuth:       s.Azimuth,
		Tilt:          s.Tilt,
		RowWidth:      s.RowWidth,
		Pitch:         s.Pitch,
		Area:          s.Area,
		PanelArea:     s.PanelArea,
		RatedPower:    s.RatedPower,
		LifetimeYears: s.LifetimeYears,
		Mounting:      mode,
	}, nil
}

// SolarOptions overlays the model section on solar.DefaultOptions.
func (c *Config) SolarOptions() solar.Options {
	o := solar.DefaultOptions()
	m := c.Model
	if m.Year != 0 {
		o.Year = m.Year
	}
	switch {
	case len(m.MonthlyLinkeTurbidity) > 0:
		o.MonthlyLinkeTurbidity = m.MonthlyLinkeTurbidity
	case m.LinkeTurbidity != 0:
		// A single value replaces the monthly climatology.
		o.LinkeTurbidity = m.LinkeTurbidity
		o.MonthlyLinkeTurbidity = nil
	}
	setIf(&o.Albedo, m.Albedo)
	setIf(&o.AirTemperature, m.AirTemperature)
	setIf(&o.WindSpeed, m.WindSpeed)
	setIf(&o.TempCoefficient, m.TempCoefficient)
	setIf(&o.SystemLosses, m.SystemLosses)
	setIf(&o.IAMCoefficient, m.IAMCoefficient)
	setIf(&o.Soiling, m.Soiling)
	setIf(&o.InverterEfficiency, m.InverterEfficiency)
	if m.TrackerMaxAngle != 0 {
		o.Tracker.MaxAngle = m.TrackerMaxAngle
	}
	if m.Backtrack != nil {
		o.Tracker.Backtrack = *m.Backtrack
	}
	if m.MaxRows != 0 {
		o.MaxRows = m.MaxRows
	}
	if m.GroundSamples != 0 {
		o.GroundSamples = m.GroundSamples
	}
	return o
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// Inputs builds the pipeline inputs. Call Validate first.
func (c *Config) Inputs() (pipeline.Inputs, error) {
	site, err := c.Site.ToModel()
	if err != nil {
		return pipeline.Inputs{}, err
	}
	return pipeline.Inputs{
		Site:        site,
		Crop:        c.Crop,
		SubsidyEUR:  c.Financial.SubsidyEUR,
		Usage:       c.Usage,
		Assumptions: c.Financial.Assumptions.WithDefaults(),
		DeficitOnly: c.Output.DeficitOnly,
	}, nil
}

// OutputName is the base name for the written tables.
func (c *Config) OutputName() string {
	switch {
	case c.Output.Name != "":
		return c.Output.Name
	case c.Site.Name != "":
		return c.Site.Name
	default:
		return "agrivoltaics"
	}
}

// SiteOverride is a partial site. Nil fields keep the value underneath,
// so an explicit zero (tilt 0, the equator, the prime meridian) still applies.
type SiteOverride struct {
	Name          *string  `yaml:"name" json:"name,omitempty"`
	Latitude      *float64 `yaml:"latitude" json:"latitude,omitempty"`
	Longitude     *float64 `yaml:"longitude" json:"longitude,omitempty"`
	Elevation     *float64 `yaml:"elevation" json:"elevation,omitempty"`
	Height        *float64 `yaml:"height" json:"height,omitempty"`
	Azimuth       *float64 `yaml:"azimuth" json:"azimuth,omitempty"`
	Tilt          *float64 `yaml:"tilt" json:"tilt,omitempty"`
	RowWidth      *float64 `yaml:"row_width" json:"row_width,omitempty"`
	Pitch         *float64 `yaml:"pitch" json:"pitch,omitempty"`
	Area          *float64 `yaml:"area" json:"area,omitempty"`
	PanelArea     *float64 `yaml:"panel_area" json:"panel_area,omitempty"`
	RatedPower    *float64 `yaml:"rated_power" json:"rated_power,omitempty"`
	LifetimeYears *float64 `yaml:"lifetime" json:"lifetime,omitempty"`
	Mounting      *string  `yaml:"mounting" json:"mounting,omitempty"`
}

// Apply returns base with every field set in o replaced.
func (o SiteOverride) Apply(base SiteConfig) SiteConfig {
	out := base
	setString(&out.Name, o.Name)
	setIf(&out.Latitude, o.Latitude)
	setIf(&out.Longitude, o.Longitude)
	setIf(&out.Elevation, o.Elevation)
	setIf(&out.Height, o.Height)
	setIf(&out.Azimuth, o.Azimuth)
	setIf(&out.Tilt, o.Tilt)
	setIf(&out.RowWidth, o.RowWidth)
	setIf(&out.Pitch, o.Pitch)
	setIf(&out.Area, o.Area)
	setIf(&out.PanelArea, o.PanelArea)
	setIf(&out.RatedPower, o.RatedPower)
	setIf(&out.LifetimeYears, o.LifetimeYears)
	setString(&out.Mounting, o.Mounting)
	return out
}

// Then layers next over o; fields set in next win.
func (o SiteOverride) Then(next SiteOverride) SiteOverride {
	out := o
	pick := func(dst **float64, v *float64) {
		if v != nil {
			*dst = v
		}
	}
	if next.Name != nil {
		out.Name = next.Name
	}
	pick(&out.Latitude, next.Latitude)
	pick(&out.Longitude, next.Longitude)
	pick(&out.Elevation, next.Elevation)
	pick(&out.Height, next.Height)
	pick(&out.Azimuth, next.Azimuth)
	pick(&out.Tilt, next.Tilt)
	pick(&out.RowWidth, next.RowWidth)
	pick(&out.Pitch, next.Pitch)
	pick(&out.Area, next.Area)
	pick(&out.PanelArea, next.PanelArea)
	pick(&out.RatedPower, next.RatedPower)
	pick(&out.LifetimeYears, next.LifetimeYears)
	if next.Mounting != nil {
		out.Mounting = next.Mounting
	}
	return out
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// LoadSiteFile reads the site section of a preset file. Only the keys
// present in the file are set.
func LoadSiteFile(path string) (SiteOverride, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SiteOverride{}, err
	}
	var w struct {
		Site SiteOverride `yaml:"site"`
	}
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return SiteOverride{}, err
	}
	return w.Site, nil
}

// FromInputs builds a config from the two-column key,value inputs file.
// Unknown keys are rejected; missing keys keep the defaults.
func FromInputs(kv map[string]string) (*Config, error) {
	c := Default()
	c.Site.Name = ""
	c.Output.Name = ""

	num := map[string]*float64{
		"area":        &c.Site.Area,
		"latitude":    &c.Site.Latitude,
		"longitude":   &c.Site.Longitude,
		"elevation":   &c.Site.Elevation,
		"height":      &c.Site.Height,
		"azimuth":     &c.Site.Azimuth,
		"tilt":        &c.Site.Tilt,
		"row_width":   &c.Site.RowWidth,
		"pitch":       &c.Site.Pitch,
		"panel_area":  &c.Site.PanelArea,
		"rated_power": &c.Site.RatedPower,
		"lifetime":    &c.Site.LifetimeYears,
		"subsidy":     &c.Financial.SubsidyEUR,
	}
	for key, raw := range kv {
		k := strings.ToLower(strings.TrimSpace(key))
		v := strings.TrimSpace(raw)
		if dst, ok := num[k]; ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, model.Invalid(k, fmt.Sprintf("not a number: %q", v))
			}
			*dst = f
			continue
		}
		switch k {
		case "crop_type", "crop":
			c.Crop = v
		case "measure_time":
			b, err := parseBool(v)
			if err != nil {
				return nil, model.Invalid(k, err.Error())
			}
			c.Output.MeasureTime = b
		case "tilt_tracking", "mounting":
			mode, err := model.ParseMountingMode(v)
			if err != nil {
				return nil, err
			}
			c.Site.Mounting = string(mode)
		case "deficit_only":
			b, err := parseBool(v)
			if err != nil {
				return nil, model.Invalid(k, err.Error())
			}
			c.Output.DeficitOnly = b
		default:
			return nil, fmt.Errorf("unknown input key %q", key)
		}
	}
	return c, nil
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.ToLower(s))
}
