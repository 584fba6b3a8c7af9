package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/cluso-communities/pkg/config"
	"github.com/dd0wney/cluso-communities/pkg/copra"
	"github.com/dd0wney/cluso-communities/pkg/graph"
	"github.com/dd0wney/cluso-communities/pkg/logging"
	"github.com/dd0wney/cluso-communities/pkg/metrics"
	"github.com/dd0wney/cluso-communities/pkg/snapshot"
	"github.com/dd0wney/cluso-communities/pkg/stream"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML configuration")
	graphPath := flag.String("graph", "", "Path to edge list file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(cfg.Logging.Level))
	logger.Info("communities stream service starting")

	if *graphPath == "" {
		log.Fatalf("missing -graph")
	}
	g, err := graph.LoadEdgeList(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	logger.Info("graph loaded",
		logging.Path(*graphPath),
		logging.Int("vertices", g.Order()),
		logging.Int("arcs", g.Size()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Error("metrics endpoint failed", logging.Error(err))
			}
		}()
		logger.Info("metrics endpoint up", logging.String("addr", cfg.Metrics.Addr))
	}

	engine := copra.NewEngine(g, cfg.Options(), logger)

	// Resume from the last converged state when a snapshot matches the
	// graph span; otherwise run cold.
	resumed := false
	if cfg.Snapshot.Path != "" {
		if vcom, err := snapshot.Read(cfg.Snapshot.Path); err == nil {
			if err := engine.SetMembership(vcom); err == nil {
				resumed = true
				logger.Info("resumed from snapshot", logging.Path(cfg.Snapshot.Path))
			} else {
				logger.Warn("snapshot ignored", logging.Error(err))
			}
		} else if !os.IsNotExist(err) {
			logger.Warn("snapshot unreadable", logging.Error(err))
		}
	}
	if !resumed {
		timer := logging.StartTimer(logger, "cold run complete")
		result, err := engine.Run(ctx)
		if err != nil {
			log.Fatalf("Cold run failed: %v", err)
		}
		timer.End()
		if reg != nil {
			reg.RecordRun("static", "ok", result.Iterations, result.Time)
		}
	}

	server := stream.NewServer(engine, cfg.Algorithm.Strategy, logger, reg)
	if err := server.Listen(cfg.Stream.PullAddr, cfg.Stream.PubAddr); err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	defer server.Close()

	err = server.Serve(ctx)
	if err != nil && err != context.Canceled {
		log.Fatalf("Serve failed: %v", err)
	}

	if cfg.Snapshot.Path != "" {
		if err := snapshot.Write(cfg.Snapshot.Path, engine.Membership()); err != nil {
			logger.Error("failed to write shutdown snapshot", logging.Error(err))
		} else {
			logger.Info("snapshot written", logging.Path(cfg.Snapshot.Path))
		}
	}
	logger.Info("communities stream service stopped")
}
