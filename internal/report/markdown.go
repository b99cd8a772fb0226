// Package report renders an evaluation as Markdown, HTML or PDF.
package report

import (
	"fmt"
	"strings"

	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/pipeline"
)

// Markdown writes the monthly table and the economics summary.
func Markdown(title string, in pipeline.Inputs, res *pipeline.Result) string {
	var b strings.Builder
	s := in.Site

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Crop: **%s**. Mounting: **%s**. Site at %.4f, %.4f (%.0f m).\n\n",
		in.Crop, s.Mounting, s.Latitude, s.Longitude, s.Elevation)
	fmt.Fprintf(&b, "Rows %.2f m wide every %.2f m (GCR %.3f), %.2f m above the crop, tilt %.1f deg, azimuth %.1f deg.\n\n",
		s.RowWidth, s.Pitch, s.GCR(), s.Height, s.Tilt, s.Azimuth)

	e := res.Economics
	b.WriteString("## Economics\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	row := func(name, value string) { fmt.Fprintf(&b, "| %s | %s |\n", name, value) }
	row("LCOE", fmt.Sprintf("%.2f EUR/MWh", e.LCOE))
	row("ROI", fmt.Sprintf("%.2f %%", e.ROI))
	row("Capacity", fmt.Sprintf("%.1f kWp", e.CapacityKW))
	row("Panels", fmt.Sprintf("%.0f", e.PanelCount))
	row("CAPEX", fmt.Sprintf("%.0f EUR", e.CapexEUR))
	row("Subsidy", fmt.Sprintf("%.0f EUR", e.SubsidyEUR))
	row("O&M", fmt.Sprintf("%.0f EUR/y", e.OMCostPerYear))
	row("Annual export", fmt.Sprintf("%.1f MWh", e.AnnualExportKWh/1000))
	row("Energy price", fmt.Sprintf("%.4f EUR/kWh", e.EnergyPrice))
	row("Lifetime", fmt.Sprintf("%.0f y", e.LifetimeYears))

	b.WriteString("\n## Monthly\n\n")
	b.WriteString("| Month | Output [MWh] | Export [MWh] | Panels [W/m^2] | Crops [W/m^2] | Stage | Impact [W/m^2] |\n")
	b.WriteString("|---|---:|---:|---:|---:|---|---:|\n")
	deficits := 0
	for _, r := range res.Monthly {
		impact := "-"
		if r.Stage != agriculture.StageDormant {
			impact = fmt.Sprintf("%+.1f", r.CropImpact*1000)
			if r.CropImpact < 0 {
				deficits++
			}
		}
		fmt.Fprintf(&b, "| %s | %.1f | %.1f | %.1f | %.1f | %s | %s |\n",
			r.Month, r.EnergyOutputKWh/1000, r.EnergyExportKWh/1000,
			r.PanelIrradiance, r.CropIrradiance, r.Stage, impact)
	}

	b.WriteString("\n")
	switch deficits {
	case 0:
		b.WriteString("The crop gets enough light in every growing month.\n")
	case 1:
		b.WriteString("The crop lacks light in 1 growing month.\n")
	default:
		fmt.Fprintf(&b, "The crop lacks light in %d growing months.\n", deficits)
	}
	return b.String()
}
