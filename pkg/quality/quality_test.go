package quality

import (
	"math"
	"testing"

	"github.com/dd0wney/cluso-communities/pkg/copra"
	"github.com/dd0wney/cluso-communities/pkg/graph"
)

// twoTriangles builds two unit-weight triangles joined by a single bridge
func twoTriangles() *graph.Graph {
	g := graph.New(6)
	g.AddUndirected(0, 1, 1)
	g.AddUndirected(1, 2, 1)
	g.AddUndirected(0, 2, 1)
	g.AddUndirected(3, 4, 1)
	g.AddUndirected(4, 5, 1)
	g.AddUndirected(3, 5, 1)
	g.AddUndirected(2, 3, 1)
	return g
}

func TestModularity_SplitBeatsMerged(t *testing.T) {
	g := twoTriangles()

	split := []uint32{0, 0, 0, 1, 1, 1}
	merged := []uint32{0, 0, 0, 0, 0, 0}

	qs := Modularity(g, split)
	qm := Modularity(g, merged)

	if qs <= qm {
		t.Errorf("Expected the two-community split (%f) to beat the merged partition (%f)", qs, qm)
	}
	// Q = 2 * (3/7 - (7/14)^2) for the split partition
	want := 2 * (3.0/7.0 - 0.25)
	if math.Abs(qs-want) > 1e-9 {
		t.Errorf("Expected split modularity %f, got %f", want, qs)
	}
	if qm != 0 {
		t.Errorf("Expected zero modularity for a single community, got %f", qm)
	}
}

func TestModularity_EdgelessGraph(t *testing.T) {
	g := graph.New(3)

	if q := Modularity(g, []uint32{0, 1, 2}); q != 0 {
		t.Errorf("Expected 0 for an edgeless graph, got %f", q)
	}
}

func TestCommunityCount(t *testing.T) {
	if n := CommunityCount([]uint32{0, 0, 2, 5, 5}); n != 3 {
		t.Errorf("Expected 3 distinct communities, got %d", n)
	}
	if n := CommunityCount(nil); n != 0 {
		t.Errorf("Expected 0 for an empty table, got %d", n)
	}
}

func TestOverlap_DisjointMemberships(t *testing.T) {
	vcom := []copra.Labelset{
		{{Community: 0, Weight: 1}},
		{{Community: 1, Weight: 1}},
	}

	stats := Overlap(vcom)

	if stats.Overlapping != 0 {
		t.Errorf("Expected no overlapping vertices, got %d", stats.Overlapping)
	}
	if stats.MeanMemberships != 1 {
		t.Errorf("Expected mean membership 1, got %f", stats.MeanMemberships)
	}
	if stats.MeanEntropy != 0 {
		t.Errorf("Expected zero entropy for singleton labelsets, got %f", stats.MeanEntropy)
	}
}

func TestOverlap_FractionalMemberships(t *testing.T) {
	vcom := []copra.Labelset{
		{{Community: 0, Weight: 0.5}, {Community: 1, Weight: 0.5}},
		{{Community: 2, Weight: 1}},
	}

	stats := Overlap(vcom)

	if stats.Overlapping != 1 {
		t.Errorf("Expected 1 overlapping vertex, got %d", stats.Overlapping)
	}
	if math.Abs(stats.MeanMemberships-1.5) > 1e-9 {
		t.Errorf("Expected mean membership 1.5, got %f", stats.MeanMemberships)
	}
	// Entropy of {0.5, 0.5} is ln 2, averaged with 0
	want := math.Log(2) / 2
	if math.Abs(stats.MeanEntropy-want) > 1e-9 {
		t.Errorf("Expected mean entropy %f, got %f", want, stats.MeanEntropy)
	}
}

func TestOverlap_EmptyTable(t *testing.T) {
	stats := Overlap(nil)
	if stats.MeanMemberships != 0 || stats.Overlapping != 0 {
		t.Errorf("Expected zero stats for an empty table, got %+v", stats)
	}
}
