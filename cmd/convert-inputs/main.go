package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"agrivoltaics/internal/config"
	"agrivoltaics/internal/data"

	"gopkg.in/yaml.v3"
)

// convert-inputs turns a two-column key,value inputs CSV into a YAML config
// that the CLI and API can load.
func main() {
	var (
		inputPath  = flag.String("input", "", "Path to the key,value inputs CSV (required)")
		outputPath = flag.String("output", "", "Output YAML path (default: stdout)")
		name       = flag.String("name", "", "Output name written into the config (default: input file name)")
	)
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("--input is required")
	}

	kv, err := data.LoadKeyValueCSV(*inputPath)
	if err != nil {
		log.Fatalf("Failed to read inputs: %v", err)
	}
	cfg, err := config.FromInputs(kv)
	if err != nil {
		log.Fatalf("Invalid inputs: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid inputs: %v", err)
	}

	if *name != "" {
		cfg.Output.Name = *name
	} else {
		base := filepath.Base(*inputPath)
		cfg.Output.Name = base[:len(base)-len(filepath.Ext(base))]
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		log.Fatalf("Failed to encode config: %v", err)
	}

	if *outputPath == "" {
		os.Stdout.Write(out)
		return
	}
	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	if err := os.WriteFile(*outputPath, out, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *outputPath, err)
	}
	fmt.Printf("Wrote %d inputs to %s\n", len(kv), *outputPath)
}
