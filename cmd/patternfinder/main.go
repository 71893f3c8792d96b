// Command patternfinder runs every discovery operation of the pattern
// engine over a synthetic retail dataset and prints the results.
//
// Settings come from the environment or a .env file:
//
//	VIPATTERN_BIN_SIZE   bins per axis (default 16)
//	VIPATTERN_SEED       seed for the dataset and the engine (default 1)
//	VIPATTERN_WORKERS    goroutines for matrix operations (default GOMAXPROCS)
//	VIPATTERN_LOG_LEVEL  debug, info, warn or error (default info)
//	VIPATTERN_ROWS       rows to generate (default 2000)
//	VIPATTERN_PLOT_DIR   if set, scatter plots of the most distinct pair are saved here
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/ezoic/vipattern/core/dataset"
	"github.com/ezoic/vipattern/internal/config"
	"github.com/ezoic/vipattern/internal/testkit"
	"github.com/ezoic/vipattern/pattern"
	"github.com/ezoic/vipattern/pkg/log"
)

func main() {
	if err := run(); err != nil {
		log.LogError(err, "patternfinder failed")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log.SetOutput(os.Stderr, log.ToLogLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tbl := testkit.Sales(cfg.Rows, cfg.Seed)
	engine := pattern.NewEngine(
		pattern.WithBinSize(cfg.BinSize),
		pattern.WithSeed(cfg.Seed),
		pattern.WithWorkers(cfg.Workers),
	)
	if err := engine.Init(tbl.Rows, tbl.Fields); err != nil {
		return err
	}

	fmt.Printf("dataset: %d rows, bin size %d, generation %s\n\n", len(tbl.Rows), engine.BinSize(), engine.Generation())

	fmt.Println("== fields by entropy (bits)")
	var widest []dataset.FieldMeta
	for _, p := range engine.SearchPatterns() {
		fmt.Printf("  %s\n", p)
		if ms := p.Measures(); len(ms) > 0 {
			widest = ms
		}
	}
	if len(widest) == 0 {
		return nil
	}

	fmt.Println("\n== measure associations (row groups column)")
	first, err := engine.FirstPattern(ctx)
	if err != nil {
		return err
	}
	printMatrix(dataset.FieldIDs(first.Measures), first.Values)

	fmt.Println("\n== measure pair dissimilarity")
	second, err := engine.SecondPattern(ctx)
	if err != nil {
		return err
	}
	labels := make([]string, len(second.Pairs))
	for i, p := range second.Pairs {
		labels[i] = p.String()
	}
	printMatrix(labels, second.Values)

	view := pattern.NewPattern(widest...)
	fmt.Printf("\n== extend view %v\n", view.FieldIDs())
	higher, err := engine.ScoreHighOrderPatterns(view)
	if err != nil {
		return err
	}
	for _, p := range higher {
		fmt.Printf("  %s\n", p)
	}

	fmt.Printf("\n== dimensions for view %v\n", view.FieldIDs())
	recs, err := engine.PureFeatureRecommend(view)
	if err != nil {
		return err
	}
	for _, p := range recs {
		fmt.Printf("  %s\n", p)
	}

	if len(recs) > 0 {
		split := recs[0]
		fmt.Printf("\n== filters for view %v\n", split.FieldIDs())
		filters, err := engine.RecommendFilter(split)
		if err != nil {
			return err
		}
		for _, p := range filters {
			f := p.Filters[len(p.Filters)-1]
			fmt.Printf("  %s = %s: %.4f\n", f.FieldID, f.Values[0], p.Importance)
		}
	}

	fmt.Println("\n== dimensions explaining pair differences")
	sweep, err := engine.FeatureSelectForSecondPattern(ctx)
	if err != nil {
		return err
	}
	for _, s := range sweep {
		fmt.Printf("  %s vs %s: %s (%.4f)\n", s.A, s.B, s.Feature.ID, s.Score)
	}
	if len(sweep) == 0 {
		fmt.Println("  none")
		return nil
	}

	if cfg.PlotDir == "" {
		return nil
	}
	snap, err := dataset.NewSnapshot(tbl.Rows, tbl.Fields)
	if err != nil {
		return err
	}
	best := sweep[0]
	for _, s := range sweep[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	files, err := plotSelection(cfg.PlotDir, snap, best)
	if err != nil {
		return err
	}
	fmt.Printf("\nplots saved: %s\n", strings.Join(files, ", "))
	return nil
}

func printMatrix(labels []string, values [][]float64) {
	width := 8
	for _, l := range labels {
		width = max(width, len(l))
	}
	fmt.Printf("  %*s", width, "")
	for _, l := range labels {
		fmt.Printf(" %*s", width, l)
	}
	fmt.Println()
	for i, row := range values {
		var b strings.Builder
		for _, v := range row {
			fmt.Fprintf(&b, " %*.4f", width, v)
		}
		fmt.Printf("  %*s%s\n", width, labels[i], b.String())
	}
}
