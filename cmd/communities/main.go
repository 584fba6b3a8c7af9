package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dd0wney/cluso-communities/pkg/config"
	"github.com/dd0wney/cluso-communities/pkg/copra"
	"github.com/dd0wney/cluso-communities/pkg/graph"
	"github.com/dd0wney/cluso-communities/pkg/logging"
	"github.com/dd0wney/cluso-communities/pkg/quality"
	"github.com/dd0wney/cluso-communities/pkg/snapshot"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration")
	graphPath := flag.String("graph", "", "Path to edge list file (source target [weight])")
	snapshotPath := flag.String("snapshot", "", "Write membership snapshot to this path")
	flag.Parse()

	if *graphPath == "" {
		log.Fatalf("missing -graph")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.Logging.Level))

	g, err := graph.LoadEdgeList(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	fmt.Printf("🔍 Cluso Communities\n")
	fmt.Printf("  Vertices: %d\n", g.Order())
	fmt.Printf("  Arcs:     %d\n\n", g.Size())

	ctx := context.Background()
	opts := cfg.Options()

	var best *copra.Result
	var bestQ float64
	var bestMembership []copra.Labelset
	for run := 0; run < cfg.Algorithm.Repeat; run++ {
		engine := copra.NewEngine(g, opts, logger)
		var result *copra.Result
		var err error
		if cfg.Algorithm.Workers > 1 {
			result, err = engine.RunParallel(ctx, cfg.Algorithm.Workers)
		} else {
			result, err = engine.Run(ctx)
		}
		if err != nil {
			log.Fatalf("Run failed: %v", err)
		}
		q := quality.Modularity(g, result.Membership)
		if best == nil || q > bestQ {
			best, bestQ = result, q
			bestMembership = append([]copra.Labelset(nil), engine.Membership()...)
		}
	}

	stats := quality.Overlap(bestMembership)
	fmt.Printf("Results:\n")
	fmt.Printf("  Communities:       %d\n", quality.CommunityCount(best.Membership))
	fmt.Printf("  Modularity:        %.4f\n", bestQ)
	fmt.Printf("  Iterations:        %d", best.Iterations)
	if best.Iterations >= opts.MaxIterations {
		fmt.Printf(" (iteration cap reached)")
	}
	fmt.Printf("\n")
	fmt.Printf("  Time:              %s\n", best.Time)
	fmt.Printf("  Mean memberships:  %.3f\n", stats.MeanMemberships)
	fmt.Printf("  Overlapping:       %d\n", stats.Overlapping)

	if *snapshotPath == "" {
		*snapshotPath = cfg.Snapshot.Path
	}
	if *snapshotPath != "" {
		if err := snapshot.Write(*snapshotPath, bestMembership); err != nil {
			log.Fatalf("Failed to write snapshot: %v", err)
		}
		fmt.Printf("\n💾 Snapshot written to %s\n", *snapshotPath)
	}
}
