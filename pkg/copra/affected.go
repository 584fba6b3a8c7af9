package copra

import (
	"github.com/dd0wney/cluso-communities/pkg/graph"
)

// AffectedVerticesDeltaScreening flags the vertices that need reprocessing
// after a mutation batch, using delta screening:
//
//   - a deletion whose endpoints share a dominant community flags the source
//     vertex, marks it for neighbor propagation, and marks that community;
//   - insertions are grouped by source vertex (the batch is sorted by
//     source); the cross-community insertions of a group are scanned and a
//     tentative labelset chosen with threshold b*vtot[u]; if its dominant
//     community differs from the current one, the source is flagged, marked
//     for neighbor propagation, and the tentative community marked;
//   - a single closure pass flags all graph neighbors of every
//     neighbor-propagation source and every member of a marked community.
//
// The closure is one pass, not a fixpoint: an approximation that trades
// completeness for bounded cost. Both batch sequences must hold each
// undirected edge once per direction, sorted by source vertex.
func AffectedVerticesDeltaScreening(g *graph.Graph, deletions []graph.Deletion, insertions []graph.Insertion, vcom []Labelset, vtot []float64, b float64) []bool {
	span := g.Span()
	scan := NewScan(span)
	vertices := make([]bool, span)
	neighbors := make([]bool, span)
	communities := make([]bool, span)

	for _, d := range deletions {
		cu := vcom[d.Source].Dominant()
		cv := vcom[d.Target].Dominant()
		if cu != cv {
			continue
		}
		vertices[d.Source] = true
		neighbors[d.Source] = true
		communities[cv] = true
	}

	for i := 0; i < len(insertions); {
		u := insertions[i].Source
		scan.Clear()
		for ; i < len(insertions) && insertions[i].Source == u; i++ {
			in := insertions[i]
			if vcom[u].Dominant() == vcom[in.Target].Dominant() {
				continue
			}
			scan.Community(u, in.Target, in.Weight, vcom)
		}
		ls := scan.Choose(u, b*vtot[u], MaxLabels)
		if ls.Dominant() == vcom[u].Dominant() {
			continue
		}
		vertices[u] = true
		neighbors[u] = true
		communities[ls.Dominant()] = true
	}

	g.ForEachVertex(func(u uint32) {
		if neighbors[u] {
			g.ForEachEdgeKey(u, func(v uint32) {
				vertices[v] = true
			})
		}
		if communities[vcom[u].Dominant()] {
			vertices[u] = true
		}
	})
	return vertices
}

// AffectedVerticesFrontier is the cheaper, coarser heuristic: only the
// source endpoint of a within-community deletion and the source endpoint of
// a cross-community insertion are flagged, with no neighbor or
// community-wide propagation. Same input shape as delta screening, strictly
// less precise, for a faster but less targeted reprocessing pass.
func AffectedVerticesFrontier(g *graph.Graph, deletions []graph.Deletion, insertions []graph.Insertion, vcom []Labelset) []bool {
	vertices := make([]bool, g.Span())
	for _, d := range deletions {
		if vcom[d.Source].Dominant() != vcom[d.Target].Dominant() {
			continue
		}
		vertices[d.Source] = true
	}
	for _, in := range insertions {
		if vcom[in.Source].Dominant() == vcom[in.Target].Dominant() {
			continue
		}
		vertices[in.Source] = true
	}
	return vertices
}
