package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"agrivoltaics/internal/config"
	"agrivoltaics/internal/model"
	"agrivoltaics/internal/pipeline"
)

// Demo:
// - Build the reference scenario (or load one with --config)
// - Run every stage of the pipeline once
// - Print the monthly table and the economics to show how the stages fit together
func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	tracking := flag.Bool("tracking", false, "Use a single-axis tracker instead of fixed rows")
	outDir := flag.String("out", "", "Optional directory to write the two CSV tables to")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			panic(err)
		}
	}
	if *tracking {
		cfg.Site.Mounting = string(model.MountingSingleAxis)
	}

	in, err := cfg.Inputs()
	if err != nil {
		panic(err)
	}
	res, err := pipeline.New(cfg.SolarOptions(), pipeline.WithTiming(true)).Run(context.Background(), in)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Site lat=%.2f lon=%.2f tilt=%.0f azimuth=%.0f GCR=%.2f mounting=%s crop=%s\n\n",
		in.Site.Latitude, in.Site.Longitude, in.Site.Tilt, in.Site.Azimuth, in.Site.GCR(), in.Site.Mounting, in.Crop)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Month\tOutput kWh\tUsage kWh\tExport kWh\tPanel W/m2\tCrop W/m2\tImpact kW/m2\tStage\t")
	for _, r := range res.Monthly {
		fmt.Fprintf(w, "%s\t%.0f\t%.0f\t%.0f\t%.1f\t%.1f\t%.4f\t%s\t\n",
			r.Month, r.EnergyOutputKWh, r.EnergyUsageKWh, r.EnergyExportKWh, r.PanelIrradiance, r.CropIrradiance, r.CropImpact, r.Stage)
	}
	_ = w.Flush()

	e := res.Economics
	fmt.Println()
	fmt.Printf("Capacity:       %.1f kWp (%.0f panels)\n", e.CapacityKW, e.PanelCount)
	fmt.Printf("CAPEX:          %.0f EUR (subsidy %.0f EUR)\n", e.CapexEUR, e.SubsidyEUR)
	fmt.Printf("O&M:            %.0f EUR/year\n", e.OMCostPerYear)
	fmt.Printf("Annual export:  %.1f MWh\n", e.AnnualExportKWh/1000)
	fmt.Printf("LCOE:           %.2f EUR/MWh\n", e.LCOE)
	fmt.Printf("ROI:            %.2f %%\n", e.ROI)

	if *outDir != "" {
		m, o, err := pipeline.WriteOutputs(*outDir, cfg.OutputName(), res)
		if err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote %s and %s\n", m, o)
	}
}
