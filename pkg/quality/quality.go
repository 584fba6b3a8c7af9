// Package quality evaluates detected community structure: modularity of the
// dominant-community partition and overlap statistics of the fractional
// memberships.
package quality

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/dd0wney/cluso-communities/pkg/copra"
	"github.com/dd0wney/cluso-communities/pkg/graph"
)

// Modularity computes Newman modularity of the dominant-community
// partition over the arc-mirrored graph:
//
//	Q = sum_c (in_c / m - (tot_c / m)^2)
//
// where in_c is the weight of arcs internal to community c, tot_c the
// summed incident weight of its members, and m the total arc weight.
// Returns 0 for an edgeless graph.
func Modularity(g *graph.Graph, membership []uint32) float64 {
	m := g.TotalWeight()
	if m == 0 {
		return 0
	}
	span := g.Span()
	internal := make([]float64, span)
	total := make([]float64, span)
	g.ForEachVertex(func(u uint32) {
		cu := membership[u]
		g.ForEachEdge(u, func(v uint32, w float64) {
			total[cu] += w
			if membership[v] == cu {
				internal[cu] += w
			}
		})
	})
	q := floats.Sum(internal) / m
	for _, t := range total {
		q -= (t / m) * (t / m)
	}
	return q
}

// CommunityCount returns the number of distinct dominant communities
func CommunityCount(membership []uint32) int {
	seen := make(map[uint32]struct{}, len(membership))
	for _, c := range membership {
		seen[c] = struct{}{}
	}
	return len(seen)
}

// OverlapStats summarizes how overlapping a membership table is
type OverlapStats struct {
	// MeanMemberships is the average number of in-use labels per vertex
	MeanMemberships float64
	// StdDevMemberships is the standard deviation of that count
	StdDevMemberships float64
	// MeanEntropy is the average entropy of the per-vertex coefficient
	// distribution, in nats; 0 when every vertex has a single community
	MeanEntropy float64
	// Overlapping is the number of vertices with more than one membership
	Overlapping int
}

// Overlap computes overlap statistics for a membership table
func Overlap(vcom []copra.Labelset) OverlapStats {
	if len(vcom) == 0 {
		return OverlapStats{}
	}
	counts := make([]float64, len(vcom))
	entropies := make([]float64, len(vcom))
	overlapping := 0
	for u := range vcom {
		n := vcom[u].Len()
		counts[u] = float64(n)
		if n > 1 {
			overlapping++
		}
		h := 0.0
		for i := 0; i < n; i++ {
			p := vcom[u][i].Weight
			if p > 0 {
				h -= p * math.Log(p)
			}
		}
		entropies[u] = h
	}
	return OverlapStats{
		MeanMemberships:   stat.Mean(counts, nil),
		StdDevMemberships: stat.StdDev(counts, nil),
		MeanEntropy:       stat.Mean(entropies, nil),
		Overlapping:       overlapping,
	}
}
