package copra

import (
	"math"
	"testing"

	"github.com/dd0wney/cluso-communities/pkg/graph"
)

func TestScan_AccumulatesNeighborMemberships(t *testing.T) {
	vcom := make([]Labelset, 8)
	vcom[1] = Labelset{{Community: 5, Weight: 0.5}, {Community: 7, Weight: 0.5}}

	s := NewScan(8)
	s.Community(0, 1, 2.0, vcom)

	if len(s.Touched()) != 2 {
		t.Fatalf("Expected 2 touched communities, got %d", len(s.Touched()))
	}
	if math.Abs(s.Weight(5)-1.0) > 1e-9 {
		t.Errorf("Expected accumulated weight 1.0 for community 5, got %f", s.Weight(5))
	}
	if math.Abs(s.Weight(7)-1.0) > 1e-9 {
		t.Errorf("Expected accumulated weight 1.0 for community 7, got %f", s.Weight(7))
	}
}

func TestScan_DeduplicatesByConstruction(t *testing.T) {
	vcom := make([]Labelset, 4)
	vcom[1] = Labelset{{Community: 3, Weight: 1}}
	vcom[2] = Labelset{{Community: 3, Weight: 1}}

	s := NewScan(4)
	s.Community(0, 1, 1.0, vcom)
	s.Community(0, 2, 2.0, vcom)

	if len(s.Touched()) != 1 {
		t.Fatalf("Expected community 3 touched once, got %d entries", len(s.Touched()))
	}
	if math.Abs(s.Weight(3)-3.0) > 1e-9 {
		t.Errorf("Expected accumulated weight 3.0, got %f", s.Weight(3))
	}
}

func TestScan_SkipsSelfLoopByDefault(t *testing.T) {
	vcom := make([]Labelset, 2)
	vcom[0] = Labelset{{Community: 0, Weight: 1}}

	s := NewScan(2)
	s.Community(0, 0, 5.0, vcom)

	if len(s.Touched()) != 0 {
		t.Errorf("Expected self-loop excluded, got %d touched communities", len(s.Touched()))
	}

	s.Self = true
	s.Community(0, 0, 5.0, vcom)
	if len(s.Touched()) != 1 {
		t.Errorf("Expected self-loop included with Self set, got %d touched communities", len(s.Touched()))
	}
}

func TestScan_SortAscendingByWeight(t *testing.T) {
	vcom := make([]Labelset, 6)
	vcom[1] = Labelset{{Community: 3, Weight: 1}}
	vcom[2] = Labelset{{Community: 4, Weight: 1}}
	vcom[3] = Labelset{{Community: 5, Weight: 1}}

	s := NewScan(6)
	s.Community(0, 1, 3.0, vcom)
	s.Community(0, 2, 1.0, vcom)
	s.Community(0, 3, 2.0, vcom)
	s.Sort(false)

	cs := s.Touched()
	for i := 1; i < len(cs); i++ {
		if s.Weight(cs[i-1]) > s.Weight(cs[i]) {
			t.Errorf("Expected ascending weights, got %f before %f", s.Weight(cs[i-1]), s.Weight(cs[i]))
		}
	}
}

func TestScan_SortDeterministic(t *testing.T) {
	vcom := make([]Labelset, 8)
	for v := uint32(1); v < 8; v++ {
		vcom[v] = Labelset{{Community: v, Weight: 1}}
	}

	order := func() []uint32 {
		s := NewScan(8)
		for v := uint32(1); v < 8; v++ {
			s.Community(0, v, 1.0, vcom) // all equal weights
		}
		s.Sort(false)
		return append([]uint32(nil), s.Touched()...)
	}

	first := order()
	second := order()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Expected identical tie-break order across runs, got %v and %v", first, second)
		}
	}
}

func TestClearScan_ResetsOnlyTouched(t *testing.T) {
	g := graph.New(4)
	g.AddUndirected(0, 1, 1.0)
	g.AddUndirected(0, 2, 2.0)
	vcom := make([]Labelset, 4)
	Initialize(vcom, g)

	s := NewScan(4)
	s.Communities(g, 0, vcom)
	firstTouched := append([]uint32(nil), s.Touched()...)
	firstWeights := make([]float64, len(firstTouched))
	for i, c := range firstTouched {
		firstWeights[i] = s.Weight(c)
	}

	s.Clear()
	if len(s.Touched()) != 0 {
		t.Fatalf("Expected empty touched list after clear, got %d", len(s.Touched()))
	}
	for _, c := range firstTouched {
		if s.Weight(c) != 0 {
			t.Errorf("Expected accumulator reset for community %d, got %f", c, s.Weight(c))
		}
	}

	// Re-scanning identical state reproduces the identical scan
	s.Communities(g, 0, vcom)
	if len(s.Touched()) != len(firstTouched) {
		t.Fatalf("Expected %d touched communities after re-scan, got %d", len(firstTouched), len(s.Touched()))
	}
	for i, c := range s.Touched() {
		if c != firstTouched[i] {
			t.Errorf("Touched order diverged at %d: %d vs %d", i, c, firstTouched[i])
		}
		if s.Weight(c) != firstWeights[i] {
			t.Errorf("Accumulator diverged for community %d: %f vs %f", c, s.Weight(c), firstWeights[i])
		}
	}
}
