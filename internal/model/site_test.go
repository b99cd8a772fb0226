package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleSite() Site {
	return Site{
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
		Mounting:      MountingFixed,
	}
}

func TestSiteDerivedQuantities(t *testing.T) {
	s := exampleSite()
	require.NoError(t, s.Validate())

	assert.InDelta(t, 4.0/9.0, s.GCR(), 1e-12)
	assert.InDelta(t, 44444.444, s.CoveredArea(), 1e-3)
	assert.InDelta(t, 18365.472, s.PanelCount(), 1e-3)
	assert.InDelta(t, 10651.974, s.CapacityKW(), 1e-3)
}

func TestSiteValidateRejectsOverlappingRows(t *testing.T) {
	s := exampleSite()
	s.RowWidth = 10

	err := s.Validate()
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "row_width", verr.Field)
}

func TestSiteValidateFields(t *testing.T) {
	cases := map[string]func(*Site){
		"latitude":    func(s *Site) { s.Latitude = 91 },
		"longitude":   func(s *Site) { s.Longitude = -200 },
		"height":      func(s *Site) { s.Height = 0 },
		"azimuth":     func(s *Site) { s.Azimuth = 360 },
		"tilt":        func(s *Site) { s.Tilt = -1 },
		"pitch":       func(s *Site) { s.Pitch = 0 },
		"area":        func(s *Site) { s.Area = 0 },
		"panel_area":  func(s *Site) { s.PanelArea = -2 },
		"rated_power": func(s *Site) { s.RatedPower = 0 },
		"lifetime":    func(s *Site) { s.LifetimeYears = 0 },
		"mounting":    func(s *Site) { s.Mounting = "carousel" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			s := exampleSite()
			mutate(&s)
			var verr *ValidationError
			require.ErrorAs(t, s.Validate(), &verr)
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestParseMountingMode(t *testing.T) {
	for in, want := range map[string]MountingMode{
		"":            MountingFixed,
		"FIXED":       MountingFixed,
		"false":       MountingFixed,
		"single_axis": MountingSingleAxis,
		"True":        MountingSingleAxis,
	} {
		got, err := ParseMountingMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMountingMode("dual_axis")
	assert.Error(t, err)
}

func TestMonthlyHelpers(t *testing.T) {
	var a Monthly
	for i := range a {
		a[i] = float64(i + 1)
	}
	assert.Equal(t, 78.0, a.Sum())
	assert.Equal(t, 6.5, a.Mean())

	b := a.Sub(a.Scale(0.5))
	assert.Equal(t, 39.0, b.Sum())
	assert.Equal(t, 1.0, a[0], "Sub and Scale must not modify the receiver")

	_, err := MonthlyFromSlice([]float64{1, 2, 3})
	assert.Error(t, err)
}
