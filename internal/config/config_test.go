package config

import (
	"os"
	"path/filepath"
	"testing"

	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/model"
	"agrivoltaics/internal/solar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	in, err := c.Inputs()
	require.NoError(t, err)
	assert.Equal(t, "potatoes", in.Crop)
	assert.Equal(t, model.MountingFixed, in.Site.Mounting)
	assert.InDelta(t, 10651.97, in.Site.CapacityKW(), 0.01)
	assert.Equal(t, 0.1301, in.Assumptions.EnergyPrice)
}

func TestLoadMergesSiteFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sites", "a.yaml"), `
site:
  name: a
  latitude: 40
  longitude: 10
  elevation: 100
  height: 3
  azimuth: 180
  tilt: 25
  row_width: 4
  pitch: 9
  area: 20000
  panel_area: 2.42
  rated_power: 580
  lifetime: 30
`)
	writeFile(t, filepath.Join(dir, "config.yaml"), `
site_file: sites/a.yaml
site:
  tilt: 35
  mounting: tracking
crop: Potatoes
financial:
  subsidy: 1000
  energy_price: 0.2
model:
  albedo: 0
  backtrack: false
output:
  deficit_only: true
`)

	c, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "a", c.Site.Name)
	assert.Equal(t, 35.0, c.Site.Tilt)
	assert.Equal(t, 40.0, c.Site.Latitude)
	assert.Equal(t, "a", c.OutputName())

	in, err := c.Inputs()
	require.NoError(t, err)
	assert.Equal(t, model.MountingSingleAxis, in.Site.Mounting)
	assert.Equal(t, 1000.0, in.SubsidyEUR)
	assert.Equal(t, 0.2, in.Assumptions.EnergyPrice)
	assert.Equal(t, 499.0, in.Assumptions.PanelCostEUR)
	assert.True(t, in.DeficitOnly)

	opts := c.SolarOptions()
	assert.Equal(t, 0.0, opts.Albedo)
	assert.False(t, opts.Tracker.Backtrack)
	assert.Equal(t, 2023, opts.Year)
}

func TestLoadRejectsUnsupportedCrop(t *testing.T) {
	dir := t.TempDir()
	c := Default()
	c.Crop = "maize"
	writeFile(t, filepath.Join(dir, "bad.yaml"), "crop: maize\n")

	assert.ErrorIs(t, c.Validate(), agriculture.ErrUnsupportedCrop)
	_, err := Load(filepath.Join(dir, "bad.yaml"))
	assert.Error(t, err)
}

func TestValidateReportsSiteField(t *testing.T) {
	c := Default()
	c.Site.Pitch = 2

	var verr *model.ValidationError
	require.ErrorAs(t, c.Validate(), &verr)
	assert.Equal(t, "row_width", verr.Field)
}

func f64(v float64) *float64 { return &v }

func TestSiteOverrideApply(t *testing.T) {
	base := Default().Site
	mode := "single_axis"
	out := SiteOverride{Area: f64(5000), Mounting: &mode}.Apply(base)
	assert.Equal(t, 5000.0, out.Area)
	assert.Equal(t, "single_axis", out.Mounting)
	assert.Equal(t, base.Tilt, out.Tilt)
	assert.Equal(t, base.Name, out.Name)

	// Explicit zeros are values, not gaps.
	out = SiteOverride{Tilt: f64(0), Azimuth: f64(0), Latitude: f64(0), Longitude: f64(0)}.Apply(base)
	assert.Equal(t, 0.0, out.Tilt)
	assert.Equal(t, 0.0, out.Azimuth)
	assert.Equal(t, 0.0, out.Latitude)
	assert.Equal(t, 0.0, out.Longitude)
	assert.Equal(t, base.Pitch, out.Pitch)
}

func TestSiteOverrideThen(t *testing.T) {
	lower := SiteOverride{Tilt: f64(20), Area: f64(5000)}
	merged := lower.Then(SiteOverride{Tilt: f64(0)})
	require.NotNil(t, merged.Tilt)
	assert.Equal(t, 0.0, *merged.Tilt)
	assert.Equal(t, 5000.0, *merged.Area)
	assert.Nil(t, merged.Pitch)
	assert.Equal(t, 20.0, *lower.Tilt)
}

func TestLoadKeepsExplicitZeroOverSiteFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sites", "b.yaml"), `
site:
  name: b
  latitude: 12
  tilt: 25
  azimuth: 180
`)
	writeFile(t, filepath.Join(dir, "config.yaml"), `
site_file: sites/b.yaml
site:
  tilt: 0
  latitude: 0
  longitude: 0
`)

	c, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Site.Tilt)
	assert.Equal(t, 0.0, c.Site.Latitude)
	assert.Equal(t, 0.0, c.Site.Longitude)
	assert.Equal(t, 180.0, c.Site.Azimuth)
	// Keys in neither file come from the reference scenario.
	assert.Equal(t, 9.0, c.Site.Pitch)
	assert.Equal(t, 100000.0, c.Site.Area)
	assert.Equal(t, "b", c.OutputName())
}

func TestLoadMissingKeysKeepDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.yaml"), `
site:
  area: 20000
  azimuth: 0
`)

	c, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 20000.0, c.Site.Area)
	assert.Equal(t, 0.0, c.Site.Azimuth)
	assert.Equal(t, 30.0, c.Site.Tilt)
	assert.Equal(t, 36.0, c.Site.Latitude)
	assert.Equal(t, "potatoes", c.Crop)
	assert.Equal(t, "output", c.Output.Dir)
	assert.Equal(t, "agrivoltaics", c.OutputName())
}

func TestSolarOptionsTurbidity(t *testing.T) {
	c := Default()
	assert.Equal(t, solar.ReferenceLinkeTurbidity, c.SolarOptions().MonthlyLinkeTurbidity)

	c.Model.LinkeTurbidity = 4
	opts := c.SolarOptions()
	assert.Equal(t, 4.0, opts.LinkeTurbidity)
	assert.Nil(t, opts.MonthlyLinkeTurbidity)

	monthly := []float64{3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3}
	c.Model.MonthlyLinkeTurbidity = monthly
	assert.Equal(t, monthly, c.SolarOptions().MonthlyLinkeTurbidity)

	c.Model.Soiling = f64(0)
	c.Model.InverterEfficiency = f64(0.98)
	c.Model.IAMCoefficient = f64(0.04)
	opts = c.SolarOptions()
	assert.Equal(t, 0.0, opts.Soiling)
	assert.Equal(t, 0.98, opts.InverterEfficiency)
	assert.Equal(t, 0.04, opts.IAMCoefficient)
	require.NoError(t, opts.Validate())
}

func TestFromInputs(t *testing.T) {
	c, err := FromInputs(map[string]string{
		"crop_type":     "potatoes",
		"area":          " 50000",
		"tilt":          "20",
		"measure_time":  "True",
		"tilt_tracking": "False",
		"subsidy":       "250000",
	})
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, 50000.0, c.Site.Area)
	assert.Equal(t, 20.0, c.Site.Tilt)
	assert.Equal(t, 36.0, c.Site.Latitude)
	assert.True(t, c.Output.MeasureTime)
	assert.Equal(t, "fixed", c.Site.Mounting)
	assert.Equal(t, 250000.0, c.Financial.SubsidyEUR)

	_, err = FromInputs(map[string]string{"area": "lots"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "area", verr.Field)

	_, err = FromInputs(map[string]string{"colour": "green"})
	assert.Error(t, err)
}

func TestExampleConfigLoads(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "examples", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "malta", c.OutputName())
	assert.Equal(t, 14.5, c.Site.Longitude)
}
