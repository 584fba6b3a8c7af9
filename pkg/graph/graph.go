package graph

// Edge is one outgoing arc of a vertex
type Edge struct {
	To     uint32
	Weight float64
}

// Graph is an in-memory weighted digraph over the dense vertex domain
// [0, span). Undirected graphs are stored as mirrored arcs, one per
// direction, which is the form the community algorithms expect.
type Graph struct {
	adj  [][]Edge
	arcs int
}

// New creates an empty graph with the given vertex domain span
func New(span uint32) *Graph {
	return &Graph{adj: make([][]Edge, span)}
}

// Span returns one past the largest valid vertex key. Community ids share
// this key space, so dense per-community tables are sized with it.
func (g *Graph) Span() uint32 {
	return uint32(len(g.adj))
}

// Order returns the number of vertices in the domain
func (g *Graph) Order() int {
	return len(g.adj)
}

// Size returns the number of arcs
func (g *Graph) Size() int {
	return g.arcs
}

// Degree returns the out-degree of a vertex
func (g *Graph) Degree(u uint32) int {
	return len(g.adj[u])
}

// TotalWeight returns the sum of all arc weights
func (g *Graph) TotalWeight() float64 {
	total := 0.0
	for _, edges := range g.adj {
		for _, e := range edges {
			total += e.Weight
		}
	}
	return total
}

// HasEdge reports whether the arc u -> v exists
func (g *Graph) HasEdge(u, v uint32) bool {
	for _, e := range g.adj[u] {
		if e.To == v {
			return true
		}
	}
	return false
}

// AddEdge adds the arc u -> v. An existing arc to the same target has its
// weight replaced rather than duplicated.
func (g *Graph) AddEdge(u, v uint32, w float64) {
	for i := range g.adj[u] {
		if g.adj[u][i].To == v {
			g.adj[u][i].Weight = w
			return
		}
	}
	g.adj[u] = append(g.adj[u], Edge{To: v, Weight: w})
	g.arcs++
}

// AddUndirected adds both arcs of an undirected edge
func (g *Graph) AddUndirected(u, v uint32, w float64) {
	g.AddEdge(u, v, w)
	if u != v {
		g.AddEdge(v, u, w)
	}
}

// RemoveEdge removes the arc u -> v, reporting whether it existed
func (g *Graph) RemoveEdge(u, v uint32) bool {
	edges := g.adj[u]
	for i := range edges {
		if edges[i].To == v {
			edges[i] = edges[len(edges)-1]
			g.adj[u] = edges[:len(edges)-1]
			g.arcs--
			return true
		}
	}
	return false
}

// ForEachVertex calls fn for every vertex key in ascending order
func (g *Graph) ForEachVertex(fn func(u uint32)) {
	for u := range g.adj {
		fn(uint32(u))
	}
}

// ForEachEdge calls fn for every outgoing arc of u with its weight
func (g *Graph) ForEachEdge(u uint32, fn func(v uint32, w float64)) {
	for _, e := range g.adj[u] {
		fn(e.To, e.Weight)
	}
}

// ForEachEdgeKey calls fn for every outgoing arc target of u
func (g *Graph) ForEachEdgeKey(u uint32, fn func(v uint32)) {
	for _, e := range g.adj[u] {
		fn(e.To)
	}
}

// Clone returns a deep copy of the graph
func (g *Graph) Clone() *Graph {
	adj := make([][]Edge, len(g.adj))
	for u, edges := range g.adj {
		adj[u] = append([]Edge(nil), edges...)
	}
	return &Graph{adj: adj, arcs: g.arcs}
}
