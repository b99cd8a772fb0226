package model

import "math"

// Site describes the physical layout of one agrivoltaic installation.
// Units:
// - Latitude, Longitude: degrees (east positive)
// - Elevation, Height, RowWidth, Pitch: m
// - Azimuth, Tilt: degrees (azimuth 180 = south)
// - Area, PanelArea: m^2
// - RatedPower: W per panel (STC)
// - LifetimeYears: years
type Site struct {
	Latitude  float64
	Longitude float64
	Elevation float64

	// Height of the panel rows above the crop canopy.
	Height float64

	Azimuth float64
	Tilt    float64

	RowWidth float64
	Pitch    float64

	Area       float64
	PanelArea  float64
	RatedPower float64

	LifetimeYears float64

	Mounting MountingMode
}

// GCR is the ground coverage ratio (row width over pitch).
func (s Site) GCR() float64 {
	if s.Pitch == 0 {
		return math.Inf(1)
	}
	return s.RowWidth / s.Pitch
}

// CoveredArea is the part of the field under panels, in m^2.
func (s Site) CoveredArea() float64 {
	return s.Area * s.GCR()
}

// PanelCount is fractional on purpose; the economics are linear in it.
func (s Site) PanelCount() float64 {
	return s.CoveredArea() / s.PanelArea
}

// CapacityKW is the nameplate DC capacity.
func (s Site) CapacityKW() float64 {
	return s.PanelCount() * s.RatedPower / 1000
}

// Validate rejects layouts the estimators cannot evaluate.
func (s Site) Validate() error {
	switch {
	case s.Latitude < -90 || s.Latitude > 90:
		return invalid("latitude", "must be in [-90, 90]")
	case s.Longitude < -180 || s.Longitude > 180:
		return invalid("longitude", "must be in [-180, 180]")
	case s.Height <= 0:
		return invalid("height", "must be > 0")
	case s.Azimuth < 0 || s.Azimuth >= 360:
		return invalid("azimuth", "must be in [0, 360)")
	case s.Tilt < 0 || s.Tilt > 90:
		return invalid("tilt", "must be in [0, 90]")
	case s.RowWidth <= 0:
		return invalid("row_width", "must be > 0")
	case s.Pitch <= 0:
		return invalid("pitch", "must be > 0")
	case s.RowWidth > s.Pitch:
		return invalid("row_width", "must not exceed pitch (ground coverage ratio > 1 means overlapping rows)")
	case s.Area <= 0:
		return invalid("area", "must be > 0")
	case s.PanelArea <= 0:
		return invalid("panel_area", "must be > 0")
	case s.RatedPower <= 0:
		return invalid("rated_power", "must be > 0")
	case s.LifetimeYears <= 0:
		return invalid("lifetime", "must be > 0")
	}
	if _, err := ParseMountingMode(string(s.Mounting)); err != nil {
		return err
	}
	return nil
}
