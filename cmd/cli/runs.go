package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/model"
	"agrivoltaics/internal/store"

	"github.com/spf13/cobra"
)

func cropsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crops",
		Short: "List supported crops and their monthly light requirements",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, name := range agriculture.SupportedCrops() {
				p, err := agriculture.Lookup(name)
				if err != nil {
					return err
				}
				fmt.Println(p.Name)
				for m, st := range p.Stages {
					if st == agriculture.StageDormant {
						fmt.Printf("  %-10s %s\n", model.MonthNames[m], st)
						continue
					}
					r := p.Ranges[st]
					fmt.Printf("  %-10s %-17s %4.0f-%4.0f PPFD (%.4f-%.4f kW/m^2)\n",
						model.MonthNames[m], st, r.MinPPFD, r.MaxPPFD, r.MinKW(), r.MaxKW())
				}
			}
			return nil
		},
	}
}

func runsCmd() *cobra.Command {
	var archivePath string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect archived runs",
	}
	cmd.PersistentFlags().StringVar(&archivePath, "archive", "runs.db", "SQLite archive")

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := store.Open(archivePath)
			if err != nil {
				return err
			}
			defer a.Close()

			runs, err := a.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCROP\tMOUNTING\tCREATED\tLCOE\tROI")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\n",
					r.ID, r.Name, r.Crop, r.Mounting, r.CreatedAt.Format("2006-01-02 15:04"), r.LCOE, r.ROI)
			}
			return w.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum runs (0 = all)")

	show := &cobra.Command{
		Use:   "show [id]",
		Short: "Print an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := store.Open(archivePath)
			if err != nil {
				return err
			}
			defer a.Close()

			run, err := a.Get(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s, %s) archived %s\n\n", run.Name, run.Crop, run.Mounting, run.CreatedAt.Format("2006-01-02 15:04:05"))
			printResult(run.Result)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := store.Open(archivePath)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Delete(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, show, remove)
	return cmd
}
