package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"office-attendance/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, chaos, drift")
	distribution := flag.String("distribution", "uniform", "Arrival distribution: uniform, weibull")
	outDir := flag.String("out", "./data/raw", "Output directory for mock files")
	employees := flag.Int("employees", 60, "Number of roster employees to generate")
	days := flag.Int("days", 120, "Number of calendar days of badge data")
	tz := flag.String("tz", "Europe/London", "Timezone of the generated badge timestamps")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Printf("Invalid timezone %q: %v\n", *tz, err)
		os.Exit(1)
	}

	cfg := engine.GeneratorConfig{
		Scenario:     *scenario,
		Distribution: *distribution,
		Employees:    *employees,
		Days:         *days,
		Now:          time.Now(),
		Location:     loc,
		Seed:         *seed,
	}

	fmt.Printf("Generating scenario '%s' (Distribution: %s, Employees: %d, Days: %d) to %s...\n", cfg.Scenario, cfg.Distribution, cfg.Employees, cfg.Days, *outDir)

	ds := engine.Generate(cfg)
	if err := engine.Save(*outDir, ds); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done. %d employees, %d badge events.\n", len(ds.Employees), len(ds.Events))
}
