package models

import (
	"agrivoltaics/internal/config"
	"agrivoltaics/internal/economics"
	"agrivoltaics/internal/usage"
)

// EvaluateRequest describes one site evaluation. Site fields left out
// come from SiteFile when given, otherwise from the reference scenario.
type EvaluateRequest struct {
	Name        string                `json:"name,omitempty"`
	SiteFile    string                `json:"site_file,omitempty"` // preset id, e.g. "malta"
	Site        config.SiteOverride   `json:"site"`
	Crop        string                `json:"crop,omitempty"`
	SubsidyEUR  float64               `json:"subsidy,omitempty"`
	Assumptions economics.Assumptions `json:"assumptions,omitempty"`
	Usage       usage.Profile         `json:"usage,omitempty"`
	DeficitOnly bool                  `json:"deficit_only,omitempty"`

	// Save archives the run and returns its id.
	Save bool `json:"save,omitempty"`
}

// CompareRequest evaluates variations of one base scenario.
type CompareRequest struct {
	Base       EvaluateRequest `json:"base"`
	Variations []Variation     `json:"variations" binding:"required,min=1,dive"`
}

// Variation overrides part of the base scenario.
type Variation struct {
	Name        string            `json:"name" binding:"required"`
	Site        config.SiteOverride `json:"site"`
	Crop        string            `json:"crop,omitempty"`
	SubsidyEUR  *float64          `json:"subsidy,omitempty"`
	DeficitOnly *bool             `json:"deficit_only,omitempty"`
}

// SweepRequest runs one of the standard sweeps around a base scenario.
type SweepRequest struct {
	Kind      string          `json:"kind" binding:"required"` // area, tilt-azimuth, tilt-pitch
	Points    int             `json:"points,omitempty"`        // per axis, default 10
	Objective string          `json:"objective,omitempty"`     // energy, roi, lcoe, crop_impact
	Top       int             `json:"top,omitempty"`           // rankings returned, default all
	Base      EvaluateRequest `json:"base"`
}
