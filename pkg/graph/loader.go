package graph

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// LoadEdgeList reads a whitespace-separated edge list file: one edge per
// line as "source target [weight]", with '#' and '%' comment lines. Edges
// are added in both directions; missing weights default to 1. The vertex
// domain span is one past the largest key seen.
func LoadEdgeList(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open edge list: %w", err)
	}
	defer f.Close()

	type arc struct {
		u, v uint32
		w    float64
	}
	var arcs []arc
	var span uint32

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			return nil, fmt.Errorf("line %d: expected \"source target [weight]\", got %q", lineNo, line)
		}
		u, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad source vertex: %w", lineNo, err)
		}
		v, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad target vertex: %w", lineNo, err)
		}
		w := 1.0
		if len(parts) >= 3 {
			w, err = strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad edge weight: %w", lineNo, err)
			}
		}
		arcs = append(arcs, arc{u: uint32(u), v: uint32(v), w: w})
		if uint32(u) >= span {
			span = uint32(u) + 1
		}
		if uint32(v) >= span {
			span = uint32(v) + 1
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read edge list: %w", err)
	}

	g := New(span)
	for _, a := range arcs {
		g.AddUndirected(a.u, a.v, a.w)
	}
	return g, nil
}

// Random generates a deterministic random undirected graph with the given
// span and average degree, for benchmarks and tests. Weights are uniform
// in (0, 1].
func Random(span uint32, degree int, seed int64) *Graph {
	g := New(span)
	if span < 2 {
		return g
	}
	rng := rand.New(rand.NewSource(seed))
	edges := int(span) * degree / 2
	for i := 0; i < edges; i++ {
		u := uint32(rng.Intn(int(span)))
		v := uint32(rng.Intn(int(span)))
		if u == v {
			continue
		}
		g.AddUndirected(u, v, 1-rng.Float64())
	}
	return g
}
