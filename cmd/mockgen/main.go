package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"dqportal/cmd/mockgen/engine"
	"dqportal/internal/schema"
)

func main() {
	schemaPath := flag.String("schema", "schema.json", "Variable schema file to generate data for")
	scenario := flag.String("scenario", "clean", "Scenario to generate: clean, sparse, noisy")
	outDir := flag.String("out", "./mock", "Output directory for mock payload files")
	organisations := flag.Int("organisations", 3, "Number of organisations to generate")
	samples := flag.Int("samples", 200, "Sample size per organisation")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	s, err := schema.Load(*schemaPath)
	if err != nil {
		fmt.Printf("Failed to load schema: %v\n", err)
		os.Exit(1)
	}

	cfg := engine.GeneratorConfig{
		Schema:        s,
		Scenario:      *scenario,
		Organisations: *organisations,
		SampleSize:    *samples,
		Seed:          *seed,
	}

	fmt.Printf("Generating scenario '%s' (%d organisations, %d samples each) to %s...\n",
		cfg.Scenario, cfg.Organisations, cfg.SampleSize, *outDir)

	descriptives, statistics, err := engine.Generate(cfg)
	if err != nil {
		fmt.Printf("Failed to generate mock data: %v\n", err)
		os.Exit(1)
	}

	if err := engine.Save(*outDir, descriptives, statistics); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
