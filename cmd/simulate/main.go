package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/osse101/BrandishGacha_Go/internal/bootstrap"
	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/gacha"
	"github.com/osse101/BrandishGacha_Go/internal/logger"
)

func main() {
	_ = godotenv.Load()

	catalogPath := flag.String("catalog", envOr("CATALOG_PATH", "configs/catalog.yaml"), "catalog file")
	poolID := flag.String("pool", "", "pool id (default: every pool)")
	trials := flag.Int("trials", gacha.DefaultSimulationTrials, "trials per pool")
	seed := flag.Uint64("seed", 0, "seed for a reproducible run (0 picks one)")
	workers := flag.Int("workers", gacha.DefaultSimulationWorkers, "worker goroutines")
	asJSON := flag.Bool("json", false, "print JSON instead of a table")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logCfg := logger.DefaultConfig()
	logCfg.Level = *logLevel
	logCfg.Version = "cli"
	logger.InitLoggerWithWriter(logCfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *catalogPath, *poolID, gacha.SimParams{Trials: *trials, Seed: *seed, Workers: *workers}, *asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, catalogPath, poolID string, params gacha.SimParams, asJSON bool) error {
	cat, err := bootstrap.LoadCatalog(ctx, catalogPath)
	if err != nil {
		return err
	}

	var poolIDs []string
	if poolID != "" {
		poolIDs = []string{poolID}
	} else {
		for _, p := range cat.Pools() {
			poolIDs = append(poolIDs, p.ID)
		}
	}

	reports := make([]*gacha.SimulationReport, 0, len(poolIDs))
	for _, id := range poolIDs {
		report, err := gacha.Simulate(ctx, cat, id, params)
		if err != nil {
			return fmt.Errorf("pool %s: %w", id, err)
		}
		reports = append(reports, report)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	return printTable(reports)
}

func printTable(reports []*gacha.SimulationReport) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POOL\tTRIALS\tSEED\tMEAN\tSTDDEV\tP50\tP90\tP99\tMAX")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%.2f\t%.1f\t%.1f\t%.1f\t%d\n",
			r.PoolID, r.Trials, r.Seed, r.Mean, r.StdDev, r.P50, r.P90, r.P99, r.Max)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range reports {
		fmt.Printf("\n%s rarity counts:\n", r.PoolID)
		rarities := make([]domain.Rarity, 0, len(r.RarityCounts))
		for rarity := range r.RarityCounts {
			rarities = append(rarities, rarity)
		}
		sort.Slice(rarities, func(i, j int) bool { return rarities[i] < rarities[j] })
		for _, rarity := range rarities {
			fmt.Printf("  %-10s %d\n", rarity.DisplayName(), r.RarityCounts[rarity])
		}
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
