package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/pull"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/cluso-communities/pkg/config"
	"github.com/dd0wney/cluso-communities/pkg/copra"
	"github.com/dd0wney/cluso-communities/pkg/logging"
	"github.com/dd0wney/cluso-communities/pkg/metrics"
	"github.com/dd0wney/cluso-communities/pkg/quality"
)

const recvTimeout = 500 * time.Millisecond

// Server ingests mutation batches over a pull socket, applies each to the
// engine's graph, flags affected vertices with the configured strategy,
// reprocesses them, and publishes a run summary. Batches are handled one at
// a time; the engine's membership table is never mutated concurrently.
type Server struct {
	engine   *copra.Engine
	strategy string
	log      logging.Logger
	reg      *metrics.Registry

	pull mangos.Socket
	pub  mangos.Socket
}

// NewServer creates a server around an engine holding converged state.
// strategy is config.StrategyDeltaScreening or config.StrategyFrontier.
// reg may be nil.
func NewServer(engine *copra.Engine, strategy string, log logging.Logger, reg *metrics.Registry) *Server {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Server{
		engine:   engine,
		strategy: strategy,
		log:      log.With(logging.Component("stream")),
		reg:      reg,
	}
}

// Listen binds the pull socket at pullAddr and, when pubAddr is non-empty,
// the summary publisher at pubAddr
func (s *Server) Listen(pullAddr, pubAddr string) error {
	sock, err := pull.NewSocket()
	if err != nil {
		return fmt.Errorf("failed to create pull socket: %w", err)
	}
	if err := sock.Listen(pullAddr); err != nil {
		sock.Close()
		return fmt.Errorf("failed to listen on %s: %w", pullAddr, err)
	}
	s.pull = sock

	if pubAddr != "" {
		pubSock, err := pub.NewSocket()
		if err != nil {
			s.pull.Close()
			return fmt.Errorf("failed to create pub socket: %w", err)
		}
		if err := pubSock.Listen(pubAddr); err != nil {
			s.pull.Close()
			pubSock.Close()
			return fmt.Errorf("failed to listen on %s: %w", pubAddr, err)
		}
		s.pub = pubSock
	}
	s.log.Info("listening", logging.String("pull_addr", pullAddr), logging.String("pub_addr", pubAddr))
	return nil
}

// Serve receives and applies batches until the context is cancelled
func (s *Server) Serve(ctx context.Context) error {
	if s.pull == nil {
		return errors.New("server is not listening")
	}
	if err := s.pull.SetOption(mangos.OptionRecvDeadline, recvTimeout); err != nil {
		return fmt.Errorf("failed to set receive deadline: %w", err)
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := s.pull.Recv()
		if err != nil {
			if errors.Is(err, mangos.ErrRecvTimeout) {
				continue
			}
			if errors.Is(err, mangos.ErrClosed) {
				return nil
			}
			return fmt.Errorf("receive failed: %w", err)
		}
		if s.reg != nil {
			s.reg.StreamBytes.WithLabelValues("in").Add(float64(len(msg)))
		}
		summary, err := s.Handle(ctx, msg)
		if err != nil {
			s.log.Error("batch rejected", logging.Error(err))
			if s.reg != nil {
				s.reg.BatchesTotal.WithLabelValues("error").Inc()
			}
			continue
		}
		s.publish(summary)
	}
}

// Handle applies one framed batch message and returns its summary
func (s *Server) Handle(ctx context.Context, msg []byte) (*Summary, error) {
	id, batch, err := DecodeBatch(msg)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	log := s.log.With(logging.BatchID(id.String()))

	// The grouping in delta screening requires source-sorted entries
	batch.Sort()
	g := s.engine.Graph()
	batch.Apply(g)
	s.engine.RefreshWeights()

	var affected []bool
	switch s.strategy {
	case config.StrategyFrontier:
		affected = copra.AffectedVerticesFrontier(g, batch.Deletions, batch.Insertions, s.engine.Membership())
	default:
		affected = copra.AffectedVerticesDeltaScreening(g, batch.Deletions, batch.Insertions,
			s.engine.Membership(), s.engine.VertexTotals(), s.engine.Threshold())
	}
	flagged := 0
	for _, f := range affected {
		if f {
			flagged++
		}
	}

	result, err := s.engine.RunAffected(ctx, affected)
	if err != nil {
		return nil, err
	}

	entries := len(batch.Deletions) + len(batch.Insertions)
	if s.reg != nil {
		s.reg.RecordBatch(s.strategy, "ok", entries, flagged)
		s.reg.RecordRun("incremental", "ok", result.Iterations, result.Time)
		s.reg.CommunitiesTotal.Set(float64(quality.CommunityCount(result.Membership)))
	}
	log.Info("batch applied",
		logging.Count(entries),
		logging.Affected(flagged),
		logging.Iterations(result.Iterations),
		logging.Latency(result.Time))

	return &Summary{
		BatchID:     id.String(),
		Strategy:    s.strategy,
		Affected:    flagged,
		Iterations:  result.Iterations,
		Communities: quality.CommunityCount(result.Membership),
		DurationMS:  time.Since(start).Milliseconds(),
	}, nil
}

func (s *Server) publish(summary *Summary) {
	if s.pub == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		s.log.Error("failed to marshal summary", logging.Error(err))
		return
	}
	if err := s.pub.Send(data); err != nil {
		s.log.Warn("failed to publish summary", logging.Error(err))
		return
	}
	if s.reg != nil {
		s.reg.StreamBytes.WithLabelValues("out").Add(float64(len(data)))
	}
}

// Close shuts the sockets down
func (s *Server) Close() {
	if s.pull != nil {
		s.pull.Close()
	}
	if s.pub != nil {
		s.pub.Close()
	}
}
