package copra

import (
	"sort"

	"github.com/dd0wney/cluso-communities/pkg/graph"
)

// Scan is the reusable scratch state for one vertex's community scan: the
// touched-community list and a dense accumulator indexed by community id
// (community ids share the vertex key space). One Scan is allocated per
// thread of control and reused across all vertices and iterations; Clear
// resets only what was touched, never the full domain.
type Scan struct {
	cs  []uint32
	out []float64

	// Self controls whether a vertex scans its own labelset over a
	// self-loop. Default excludes self-loops.
	Self bool
}

// NewScan creates scratch state for the given vertex domain span
func NewScan(span uint32) *Scan {
	return &Scan{
		cs:  make([]uint32, 0, MaxLabels),
		out: make([]float64, span),
	}
}

// Community scans one edge u -> v with weight w: every in-use membership
// (c, b) of the neighbor v contributes w*b to community c's accumulator.
// A community is appended to the touched list the first time its
// accumulator becomes non-zero, so the list is deduplicated by construction.
// The accumulator must be in the cleared state before the first call for a
// vertex.
func (s *Scan) Community(u, v uint32, w float64, vcom []Labelset) {
	if !s.Self && u == v {
		return
	}
	for _, lab := range vcom[v] {
		if lab.Weight == 0 {
			break
		}
		if s.out[lab.Community] == 0 {
			s.cs = append(s.cs, lab.Community)
		}
		s.out[lab.Community] += w * lab.Weight
	}
}

// Communities scans every outgoing edge of u
func (s *Scan) Communities(g *graph.Graph, u uint32, vcom []Labelset) {
	g.ForEachEdge(u, func(v uint32, w float64) {
		s.Community(u, v, w, vcom)
	})
}

// Sort orders the touched list by ascending accumulated weight. Equal
// weights are broken by a parity test on bit 2 of the XOR of the ids: a
// seed-free deterministic stand-in for random tie-breaking, so repeated
// runs on identical input reproduce the same order without biasing toward
// low or high ids. strict disables the tie-break and leaves ties in plain
// weight order.
func (s *Scan) Sort(strict bool) {
	sort.Slice(s.cs, func(i, j int) bool {
		c, d := s.cs[i], s.cs[j]
		if s.out[c] != s.out[d] {
			return s.out[c] < s.out[d]
		}
		return !strict && (c^d)&2 != 0
	})
}

// Clear resets the accumulator for every touched community and empties the
// list. Cost is proportional to the touched set, not the domain. Must run
// once per vertex after the choose step has captured the values.
func (s *Scan) Clear() {
	for _, c := range s.cs {
		s.out[c] = 0
	}
	s.cs = s.cs[:0]
}

// Touched returns the touched-community list in its current order
func (s *Scan) Touched() []uint32 {
	return s.cs
}

// Weight returns the accumulated weight for community c
func (s *Scan) Weight(c uint32) float64 {
	return s.out[c]
}
