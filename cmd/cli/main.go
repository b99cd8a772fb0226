package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"agrivoltaics/internal/config"
	"agrivoltaics/internal/data"
	"agrivoltaics/internal/telemetry"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:           "agrivoltaics",
		Short:         "Evaluate energy, crop light and economics of agrivoltaic sites",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(evaluateCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(cropsCmd())
	rootCmd.AddCommand(runsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, "agrivoltaics-cli")
	if err != nil {
		log.Printf("Telemetry disabled: %v", err)
	}
	defer shutdown(context.Background())

	return rootCmd.ExecuteContext(ctx)
}

// scenarioFlags select where the scenario comes from: a YAML config, a
// two-column inputs CSV, or the built-in reference scenario.
type scenarioFlags struct {
	configPath string
	inputsPath string
}

func (f *scenarioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "YAML config (e.g. examples/config.yaml)")
	cmd.Flags().StringVar(&f.inputsPath, "inputs", "", "two-column key,value inputs CSV (e.g. examples/inputs/ideal_inputs.csv)")
}

func (f *scenarioFlags) load() (*config.Config, error) {
	switch {
	case f.configPath != "" && f.inputsPath != "":
		return nil, fmt.Errorf("--config and --inputs are mutually exclusive")
	case f.configPath != "":
		return config.Load(f.configPath)
	case f.inputsPath != "":
		kv, err := data.LoadKeyValueCSV(f.inputsPath)
		if err != nil {
			return nil, err
		}
		cfg, err := config.FromInputs(kv)
		if err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	default:
		return config.Default(), nil
	}
}
