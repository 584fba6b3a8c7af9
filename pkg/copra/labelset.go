// Package copra implements overlapping community detection by multi-label
// propagation. Each vertex holds up to MaxLabels community memberships with
// fractional belonging coefficients, and the affected-vertex heuristics
// bound recomputation after batches of edge insertions and deletions.
package copra

import (
	"github.com/dd0wney/cluso-communities/pkg/graph"
)

// MaxLabels is the maximum number of community memberships per vertex
const MaxLabels = 8

// Label is one community membership with its belonging coefficient
type Label struct {
	Community uint32
	Weight    float64
}

// Labelset is a fixed-capacity membership list for one vertex. A zero
// Weight terminates the in-use prefix; consumers may stop scanning at the
// first zero entry. In-use coefficients sum to 1, and the entry at index 0
// is always the dominant (highest-coefficient) community.
type Labelset [MaxLabels]Label

// Dominant returns the community at index 0
func (ls *Labelset) Dominant() uint32 {
	return ls[0].Community
}

// Len returns the number of in-use entries
func (ls *Labelset) Len() int {
	for i := range ls {
		if ls[i].Weight == 0 {
			return i
		}
	}
	return MaxLabels
}

// Weight returns the belonging coefficient for community c, or 0 if the
// vertex does not belong to it
func (ls *Labelset) Weight(c uint32) float64 {
	for i := range ls {
		if ls[i].Weight == 0 {
			break
		}
		if ls[i].Community == c {
			return ls[i].Weight
		}
	}
	return 0
}

// VertexWeights computes the total incident edge weight of every vertex.
// The result is the normalization base for the membership threshold.
func VertexWeights(g *graph.Graph) []float64 {
	vtot := make([]float64, g.Span())
	g.ForEachVertex(func(u uint32) {
		total := 0.0
		g.ForEachEdge(u, func(v uint32, w float64) {
			total += w
		})
		vtot[u] = total
	})
	return vtot
}

// Initialize seeds every vertex as its own singleton community with
// coefficient 1. Must run before the first propagation pass of a cold start.
func Initialize(vcom []Labelset, g *graph.Graph) {
	g.ForEachVertex(func(u uint32) {
		vcom[u] = Labelset{{Community: u, Weight: 1}}
	})
}

// BestCommunities projects the dominant community of every vertex
func BestCommunities(vcom []Labelset) []uint32 {
	best := make([]uint32, len(vcom))
	for u := range vcom {
		best[u] = vcom[u].Dominant()
	}
	return best
}
