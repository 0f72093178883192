package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"peakplan/cmd/demandgen/engine"
)

func main() {
	scenario := flag.String("scenario", "stable", "Scenario to generate: stable, spiky, growing")
	baseKW := flag.Float64("base", 100, "Baseline peak demand in kW")
	count := flag.Int("count", 1000, "Number of demand samples to generate")
	current := flag.Int("current", 0, "Current contract power in kW (0 = none)")
	days := flag.Int("days", 30, "Number of historical peak days and session hours to include")
	seed := flag.Int64("seed", 0, "Random seed (0 = time-based)")
	outPath := flag.String("out", "-", "Output file for the request JSON ('-' for stdout)")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario:          *scenario,
		BaseKW:            *baseKW,
		Count:             *count,
		CurrentContractKW: *current,
		Days:              *days,
		Seed:              *seed,
		Now:               time.Now(),
	}

	request := engine.Generate(cfg)

	if err := engine.Save(*outPath, request); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save request: %v\n", err)
		os.Exit(1)
	}
}
