package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"agrivoltaics/internal/pipeline"
	"agrivoltaics/internal/report"
	"agrivoltaics/internal/store"

	"github.com/spf13/cobra"
)

func evaluateCmd() *cobra.Command {
	var (
		scenario    scenarioFlags
		outDir      string
		name        string
		deficitOnly bool
		measureTime bool
		archivePath string
		reportFmt   string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the full pipeline and write the monthly and one-time tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := scenario.load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("out") || cfg.Output.Dir == "" {
				cfg.Output.Dir = outDir
			}
			if flags.Changed("name") {
				cfg.Output.Name = name
			}
			if flags.Changed("deficit-only") {
				cfg.Output.DeficitOnly = deficitOnly
			}
			if flags.Changed("measure-time") {
				cfg.Output.MeasureTime = measureTime
			}

			in, err := cfg.Inputs()
			if err != nil {
				return err
			}
			engine := pipeline.New(cfg.SolarOptions(), pipeline.WithTiming(cfg.Output.MeasureTime))
			res, err := engine.Run(cmd.Context(), in)
			if err != nil {
				return err
			}

			outName := cfg.OutputName()
			monthlyPath, onetimePath, err := pipeline.WriteOutputs(cfg.Output.Dir, outName, res)
			if err != nil {
				return err
			}
			printResult(res)
			fmt.Printf("\nWrote %s and %s\n", monthlyPath, onetimePath)

			if reportFmt != "" {
				path, err := writeReport(cmd, cfg.Output.Dir, outName, reportFmt, in, res)
				if err != nil {
					return err
				}
				fmt.Printf("Wrote %s\n", path)
			}

			if archivePath != "" {
				a, err := store.Open(archivePath)
				if err != nil {
					return err
				}
				defer a.Close()
				id, err := a.Save(cmd.Context(), outName, in, res)
				if err != nil {
					return err
				}
				fmt.Printf("Archived run %s in %s\n", id, archivePath)
			}
			return nil
		},
	}

	scenario.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "output", "output directory")
	cmd.Flags().StringVar(&name, "name", "", "base name of the output files")
	cmd.Flags().BoolVar(&deficitOnly, "deficit-only", false, "report only light deficits in the crop impact column")
	cmd.Flags().BoolVar(&measureTime, "measure-time", false, "log the time taken by each stage")
	cmd.Flags().StringVar(&archivePath, "archive", "", "SQLite file to archive the run in")
	cmd.Flags().StringVar(&reportFmt, "report", "", "also write a report: md, html or pdf")
	return cmd
}

func writeReport(cmd *cobra.Command, dir, name, format string, in pipeline.Inputs, res *pipeline.Result) (string, error) {
	md := report.Markdown(name, in, res)
	var body []byte
	switch strings.ToLower(format) {
	case "md", "markdown":
		format, body = "md", []byte(md)
	case "html", "pdf":
		page, err := report.HTML(name, md)
		if err != nil {
			return "", err
		}
		body = []byte(page)
		if strings.ToLower(format) == "pdf" {
			if body, err = report.NewPDFRenderer().Render(cmd.Context(), page); err != nil {
				return "", err
			}
		}
		format = strings.ToLower(format)
	default:
		return "", fmt.Errorf("unknown report format %q (want md, html or pdf)", format)
	}
	path := filepath.Join(dir, name+"_report."+format)
	return path, os.WriteFile(path, body, 0o644)
}

func printResult(res *pipeline.Result) {
	fmt.Printf("%-10s %14s %14s %10s %10s %-17s %10s\n", "month", "output kWh", "export kWh", "panel W", "crop W", "stage", "impact W")
	for _, r := range res.Monthly {
		fmt.Printf("%-10s %14.0f %14.0f %10.1f %10.1f %-17s %+10.1f\n",
			r.Month, r.EnergyOutputKWh, r.EnergyExportKWh, r.PanelIrradiance, r.CropIrradiance, r.Stage, r.CropImpact*1000)
	}
	e := res.Economics
	fmt.Println()
	fmt.Printf("Capacity=%.1f kWp Panels=%.0f CAPEX=%.0f EUR O&M=%.0f EUR/y\n", e.CapacityKW, e.PanelCount, e.CapexEUR, e.OMCostPerYear)
	fmt.Printf("Annual export=%.1f MWh LCOE=%.2f EUR/MWh ROI=%.2f%%\n", e.AnnualExportKWh/1000, e.LCOE, e.ROI)
}
