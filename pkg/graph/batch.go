package graph

import (
	"sort"
)

// Deletion is one oriented entry of an undirected edge removal
type Deletion struct {
	Source uint32
	Target uint32
}

// Insertion is one oriented entry of an undirected edge addition
type Insertion struct {
	Source uint32
	Target uint32
	Weight float64
}

// Batch is one mutation batch against a converged graph. The affected-vertex
// heuristics require both sequences to hold each undirected edge once per
// direction, sorted by source vertex; Normalize establishes that form.
type Batch struct {
	Deletions  []Deletion
	Insertions []Insertion
}

// Mirror appends the reverse orientation of every entry, so that each
// undirected edge appears once per direction. Entries already present in
// both directions must not be mirrored again.
func (b *Batch) Mirror() {
	for _, d := range b.Deletions[:len(b.Deletions):len(b.Deletions)] {
		if d.Source != d.Target {
			b.Deletions = append(b.Deletions, Deletion{Source: d.Target, Target: d.Source})
		}
	}
	for _, in := range b.Insertions[:len(b.Insertions):len(b.Insertions)] {
		if in.Source != in.Target {
			b.Insertions = append(b.Insertions, Insertion{Source: in.Target, Target: in.Source, Weight: in.Weight})
		}
	}
}

// Sort orders both sequences by source vertex, then target. Grouping of
// insertions by contiguous source runs depends on this.
func (b *Batch) Sort() {
	sort.Slice(b.Deletions, func(i, j int) bool {
		if b.Deletions[i].Source != b.Deletions[j].Source {
			return b.Deletions[i].Source < b.Deletions[j].Source
		}
		return b.Deletions[i].Target < b.Deletions[j].Target
	})
	sort.Slice(b.Insertions, func(i, j int) bool {
		if b.Insertions[i].Source != b.Insertions[j].Source {
			return b.Insertions[i].Source < b.Insertions[j].Source
		}
		return b.Insertions[i].Target < b.Insertions[j].Target
	})
}

// Normalize mirrors and sorts the batch into the canonical form the
// affected-vertex heuristics require
func (b *Batch) Normalize() {
	b.Mirror()
	b.Sort()
}

// Empty reports whether the batch contains no entries
func (b *Batch) Empty() bool {
	return len(b.Deletions) == 0 && len(b.Insertions) == 0
}

// Apply mutates the graph with every arc in the batch, deletions first.
// The batch is expected to be in canonical (mirrored) form, so each
// oriented entry is applied exactly as given.
func (b *Batch) Apply(g *Graph) {
	for _, d := range b.Deletions {
		g.RemoveEdge(d.Source, d.Target)
	}
	for _, in := range b.Insertions {
		g.AddEdge(in.Source, in.Target, in.Weight)
	}
}
