package models

import (
	"time"

	"agrivoltaics/internal/analysis"
	"agrivoltaics/internal/config"
	"agrivoltaics/internal/model"
	"agrivoltaics/internal/store"
)

// EvaluateResponse is the monthly table plus the economics record.
type EvaluateResponse struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Crop      string          `json:"crop"`
	Mounting  string          `json:"mounting"`
	Monthly   []MonthlyRow    `json:"monthly"`
	Economics model.Economics `json:"economics"`
	Cached    bool            `json:"cached,omitempty"`
}

// MonthlyRow is one month of the evaluation. Crop columns are kW/m^2.
type MonthlyRow struct {
	Month           string  `json:"month"`
	EnergyOutputKWh float64 `json:"energy_output_kwh"`
	PanelIrradiance float64 `json:"panel_irradiance_w_m2"`
	CropIrradiance  float64 `json:"crop_irradiance_w_m2"`
	EnergyUsageKWh  float64 `json:"energy_usage_kwh"`
	EnergyExportKWh float64 `json:"energy_export_kwh"`
	CropImpact      float64 `json:"crop_impact_kw_m2"`
	CropMinimum     float64 `json:"crop_minimum_kw_m2"`
	CropMaximum     float64 `json:"crop_maximum_kw_m2"`
	Stage           string  `json:"stage"`
}

type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult is one variation's outcome. Error is set instead of the
// metrics when the variation could not be evaluated.
type ComparisonResult struct {
	Name            string           `json:"name"`
	Economics       *model.Economics `json:"economics,omitempty"`
	AnnualOutputKWh float64          `json:"annual_output_kwh,omitempty"`
	MeanCropImpact  float64          `json:"mean_crop_impact_kw_m2"`
	Error           *ErrorDetail     `json:"error,omitempty"`
}

type SweepResponse struct {
	Kind     string                 `json:"kind"`
	X        analysis.Axis          `json:"x"`
	Y        *analysis.Axis         `json:"y,omitempty"`
	Summary  analysis.Summary       `json:"summary"`
	Rankings []analysis.RankedPoint `json:"rankings"`
}

type RunListResponse struct {
	Runs []store.RunSummary `json:"runs"`
}

type RunResponse struct {
	EvaluateResponse
	CreatedAt time.Time `json:"created_at"`
}

// SiteInfo describes a site preset.
type SiteInfo struct {
	ID   string            `json:"id"`
	Name string            `json:"name"`
	File string            `json:"file"`
	Site config.SiteConfig `json:"site"`
}

// MountingInfo describes a mounting mode.
type MountingInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "bool"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// CropInfo lists a crop's light requirement per month.
type CropInfo struct {
	Name   string      `json:"name"`
	Months []CropMonth `json:"months"`
}

type CropMonth struct {
	Month   string  `json:"month"`
	Stage   string  `json:"stage"`
	MinPPFD float64 `json:"min_ppfd,omitempty"`
	MaxPPFD float64 `json:"max_ppfd,omitempty"`
	MinKW   float64 `json:"min_kw_m2,omitempty"`
	MaxKW   float64 `json:"max_kw_m2,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
