package main

import (
	"fmt"
	"runtime"

	"agrivoltaics/internal/analysis"
	"agrivoltaics/internal/pipeline"

	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	var (
		scenario   scenarioFlags
		points     int
		workers    int
		outPath    string
		objective  string
		top        int
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:       "sweep [area|tilt-azimuth|tilt-pitch]",
		Short:     "Evaluate a grid of layouts around the scenario and rank them",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(analysis.KindArea), string(analysis.KindTiltAzimuth), string(analysis.KindTiltPitch)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := analysis.ParseKind(args[0])
			if err != nil {
				return err
			}
			obj, err := analysis.ParseObjective(objective)
			if err != nil {
				return err
			}
			cfg, err := scenario.load()
			if err != nil {
				return err
			}
			in, err := cfg.Inputs()
			if err != nil {
				return err
			}
			x, y, err := kind.Axes(in.Site, points)
			if err != nil {
				return err
			}

			sw := &analysis.Sweeper{
				Engine:   pipeline.New(cfg.SolarOptions()),
				Workers:  workers,
				Progress: !noProgress,
			}
			var g *analysis.Grid
			if y == nil {
				g, err = sw.Run1D(cmd.Context(), in, x)
			} else {
				g, err = sw.Run2D(cmd.Context(), in, x, *y)
			}
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := analysis.WriteGridCSVFile(outPath, g); err != nil {
					return err
				}
				fmt.Printf("Wrote %d points to %s\n", len(g.Points), outPath)
			}

			ranked := analysis.Rank(g.Points, obj)
			if top > 0 && top < len(ranked) {
				ranked = ranked[:top]
			}
			printRanking(g, ranked)

			s := analysis.Summarize(g.Points, obj)
			fmt.Printf("\n%s over %d points (%d failed): min=%.3f p05=%.3f mean=%.3f p95=%.3f max=%.3f\n",
				s.Objective, s.Count, s.Failed, s.Min, s.P05, s.Mean, s.P95, s.Max)
			return nil
		},
	}

	scenario.register(cmd)
	cmd.Flags().IntVarP(&points, "points", "n", analysis.DefaultPoints, "values per axis")
	cmd.Flags().IntVar(&workers, "workers", runtime.GOMAXPROCS(0), "parallel evaluations")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the grid as CSV")
	cmd.Flags().StringVar(&objective, "objective", "roi", "ranking objective: energy, roi, lcoe, crop_impact")
	cmd.Flags().IntVar(&top, "top", 10, "rows to print (0 = all)")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "hide the progress bar")
	return cmd
}

func printRanking(g *analysis.Grid, ranked []analysis.RankedPoint) {
	yName := ""
	if g.Y != nil {
		yName = string(g.Y.Param)
	}
	fmt.Printf("%-4s %-10s %-10s %-14s %-12s %-10s %-8s\n", "rank", g.X.Param, yName, "energy kWh/mo", "impact W/m2", "lcoe", "roi %")
	for _, r := range ranked {
		if !r.OK() {
			fmt.Printf("%-4d %-10.2f %-10.2f failed: %s\n", r.Rank, r.X, r.Y, r.Err)
			continue
		}
		fmt.Printf("%-4d %-10.2f %-10.2f %-14.0f %-12.1f %-10.2f %-8.2f\n",
			r.Rank, r.X, r.Y, r.MeanEnergyKWh, r.MeanCropImpact*1000, r.LCOE, r.ROI)
	}
}
