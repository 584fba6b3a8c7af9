package copra

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-communities/pkg/graph"
	"github.com/dd0wney/cluso-communities/pkg/logging"
)

// Engine owns the membership table, vertex weight table, and scan scratch
// for one graph, and drives propagation passes to convergence. The
// sequential passes are asynchronous (Gauss-Seidel): a vertex processed
// earlier in a pass is seen by later vertices with its already-updated
// labelset. RunParallel is the synchronous double-buffered alternative.
type Engine struct {
	g    *graph.Graph
	opts Options
	log  logging.Logger

	vcom []Labelset
	vtot []float64
	scan *Scan
}

// NewEngine creates an engine for the graph. Scratch and tables are sized
// to the vertex domain span once and reused across runs.
func NewEngine(g *graph.Graph, opts Options, log logging.Logger) *Engine {
	if log == nil {
		log = logging.NewNopLogger()
	}
	span := g.Span()
	scan := NewScan(span)
	scan.Self = opts.Self
	return &Engine{
		g:    g,
		opts: opts,
		log:  log.With(logging.Component("copra")),
		vcom: make([]Labelset, span),
		vtot: VertexWeights(g),
		scan: scan,
	}
}

// Graph returns the graph the engine operates on
func (e *Engine) Graph() *graph.Graph {
	return e.g
}

// Membership returns the live membership table, one labelset per vertex
func (e *Engine) Membership() []Labelset {
	return e.vcom
}

// SetMembership replaces the membership table, e.g. when resuming from a
// snapshot of a previously converged state
func (e *Engine) SetMembership(vcom []Labelset) error {
	if uint32(len(vcom)) != e.g.Span() {
		return fmt.Errorf("membership table has %d entries, graph span is %d", len(vcom), e.g.Span())
	}
	e.vcom = vcom
	return nil
}

// VertexTotals returns the per-vertex incident weight table
func (e *Engine) VertexTotals() []float64 {
	return e.vtot
}

// Threshold returns the configured belonging threshold fraction B
func (e *Engine) Threshold() float64 {
	return e.opts.Threshold
}

// RefreshWeights recomputes the vertex weight table after the graph mutated
func (e *Engine) RefreshWeights() {
	e.vtot = VertexWeights(e.g)
}

// pass processes one propagation pass. With a nil affected vector every
// vertex is processed; otherwise only flagged vertices. When a processed
// vertex's dominant community changes and next is non-nil, its neighbors
// are flagged there for the following pass. Returns the number of vertices
// whose dominant community changed.
func (e *Engine) pass(affected, next []bool) int {
	changed := 0
	e.g.ForEachVertex(func(u uint32) {
		if affected != nil && !affected[u] {
			return
		}
		e.scan.Communities(e.g, u, e.vcom)
		e.scan.Sort(e.opts.Strict)
		prev := e.vcom[u].Dominant()
		e.vcom[u] = e.scan.Choose(u, e.opts.Threshold*e.vtot[u], e.opts.MaxMembership)
		e.scan.Clear()
		if e.vcom[u].Dominant() != prev {
			changed++
			if next != nil {
				e.g.ForEachEdgeKey(u, func(v uint32) {
					next[v] = true
				})
			}
		}
	})
	return changed
}

// Run performs a cold run: singleton initialization, then passes until the
// changed fraction meets the tolerance or MaxIterations is reached.
// Non-convergence shows as Result.Iterations == MaxIterations.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	Initialize(e.vcom, e.g)
	order := e.g.Order()

	iterations := 0
	for iterations < e.opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		changed := e.pass(nil, nil)
		iterations++
		e.log.Debug("propagation pass",
			logging.Iterations(iterations),
			logging.Count(changed))
		if order == 0 || float64(changed)/float64(order) <= e.opts.Tolerance {
			break
		}
	}

	result := &Result{
		Membership: BestCommunities(e.vcom),
		Iterations: iterations,
		Time:       time.Since(start),
	}
	e.log.Info("run complete",
		logging.Iterations(result.Iterations),
		logging.Latency(result.Time))
	return result, nil
}

// RunAffected performs an incremental run over a previously converged
// membership table: only flagged vertices are processed, and a vertex whose
// dominant community changes flags its neighbors for the next pass. The
// caller obtains the flags from AffectedVerticesDeltaScreening or
// AffectedVerticesFrontier after applying the mutation batch and refreshing
// the vertex weights.
func (e *Engine) RunAffected(ctx context.Context, affected []bool) (*Result, error) {
	start := time.Now()
	order := e.g.Order()
	current := append([]bool(nil), affected...)

	iterations := 0
	for iterations < e.opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		flagged := 0
		for _, f := range current {
			if f {
				flagged++
			}
		}
		if flagged == 0 {
			break
		}
		next := make([]bool, len(current))
		changed := e.pass(current, next)
		iterations++
		e.log.Debug("incremental pass",
			logging.Iterations(iterations),
			logging.Affected(flagged),
			logging.Count(changed))
		if float64(changed)/float64(order) <= e.opts.Tolerance {
			break
		}
		current = next
	}

	result := &Result{
		Membership: BestCommunities(e.vcom),
		Iterations: iterations,
		Time:       time.Since(start),
	}
	e.log.Info("incremental run complete",
		logging.Iterations(result.Iterations),
		logging.Latency(result.Time))
	return result, nil
}
