package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/dd0wney/cluso-communities/pkg/config"
	"github.com/dd0wney/cluso-communities/pkg/copra"
	"github.com/dd0wney/cluso-communities/pkg/graph"
	"github.com/dd0wney/cluso-communities/pkg/quality"
)

func main() {
	vertices := flag.Int("vertices", 10000, "Number of vertices")
	degree := flag.Int("degree", 8, "Average degree")
	batches := flag.Int("batches", 10, "Number of mutation batches")
	batchSize := flag.Int("batch-size", 100, "Undirected edges per batch")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	fmt.Printf("🔥 Cluso Communities - Incremental Benchmark\n")
	fmt.Printf("============================================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Vertices:   %d\n", *vertices)
	fmt.Printf("  Degree:     %d\n", *degree)
	fmt.Printf("  Batches:    %d x %d edges\n\n", *batches, *batchSize)

	g := graph.Random(uint32(*vertices), *degree, *seed)
	ctx := context.Background()
	opts := copra.DefaultOptions()

	fmt.Printf("📊 Static run...\n")
	engine := copra.NewEngine(g, opts, nil)
	result, err := engine.Run(ctx)
	if err != nil {
		log.Fatalf("Static run failed: %v", err)
	}
	fmt.Printf("  %d iterations in %s, %d communities, modularity %.4f\n\n",
		result.Iterations, result.Time,
		quality.CommunityCount(result.Membership),
		quality.Modularity(g, result.Membership))

	rng := rand.New(rand.NewSource(*seed + 1))
	strategies := []string{config.StrategyDeltaScreening, config.StrategyFrontier}
	for _, strategy := range strategies {
		fmt.Printf("⚡ Incremental (%s)...\n", strategy)
		work := g.Clone()
		eng := copra.NewEngine(work, opts, nil)
		if _, err := eng.Run(ctx); err != nil {
			log.Fatalf("Warm-up run failed: %v", err)
		}

		totalAffected := 0
		totalIterations := 0
		start := time.Now()
		for i := 0; i < *batches; i++ {
			batch := randomBatch(work, rng, *batchSize)
			batch.Normalize()
			batch.Apply(work)
			eng.RefreshWeights()

			var affected []bool
			if strategy == config.StrategyFrontier {
				affected = copra.AffectedVerticesFrontier(work, batch.Deletions, batch.Insertions, eng.Membership())
			} else {
				affected = copra.AffectedVerticesDeltaScreening(work, batch.Deletions, batch.Insertions,
					eng.Membership(), eng.VertexTotals(), eng.Threshold())
			}
			for _, f := range affected {
				if f {
					totalAffected++
				}
			}
			res, err := eng.RunAffected(ctx, affected)
			if err != nil {
				log.Fatalf("Incremental run failed: %v", err)
			}
			totalIterations += res.Iterations
		}
		elapsed := time.Since(start)
		fmt.Printf("  %d batches in %s (avg %s), avg %.0f affected, avg %.1f iterations\n\n",
			*batches, elapsed, elapsed/time.Duration(*batches),
			float64(totalAffected)/float64(*batches),
			float64(totalIterations)/float64(*batches))
	}
}

// randomBatch builds a batch of random insertions and deletions of existing
// arcs, each undirected edge given once
func randomBatch(g *graph.Graph, rng *rand.Rand, size int) *graph.Batch {
	batch := &graph.Batch{}
	span := int(g.Span())
	for i := 0; i < size/2; i++ {
		u := uint32(rng.Intn(span))
		v := uint32(rng.Intn(span))
		if u == v {
			continue
		}
		if g.HasEdge(u, v) {
			batch.Deletions = append(batch.Deletions, graph.Deletion{Source: u, Target: v})
		} else {
			batch.Insertions = append(batch.Insertions, graph.Insertion{Source: u, Target: v, Weight: 1 - rng.Float64()})
		}
	}
	return batch
}
