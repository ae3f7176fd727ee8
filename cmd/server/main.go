package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cedarhh/rsheet/internal/cellstore"
	"github.com/cedarhh/rsheet/internal/config"
	"github.com/cedarhh/rsheet/internal/depgraph"
	"github.com/cedarhh/rsheet/internal/evalengine"
	"github.com/cedarhh/rsheet/internal/logging"
	"github.com/cedarhh/rsheet/internal/metrics"
	"github.com/cedarhh/rsheet/internal/transport"
)

const (
	queueSize        = 256
	metricsLogPeriod = 30 * time.Second
)

func main() {
	var (
		addr     = flag.String("addr", "", "listen address (overrides config)")
		logLevel = flag.String("log-level", "", "log level (overrides config)")
		maxConns = flag.Int("max-conns", -1, "max concurrent connections, 0 disables the limit (overrides config)")
	)
	flag.Parse()

	cfg := config.Load()
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *maxConns >= 0 {
		cfg.MaxConns = *maxConns
	}

	logging.Setup(cfg.LogLevel)
	log.Info().Str("addr", cfg.Addr).Str("log_level", cfg.LogLevel).Int("max_conns", cfg.MaxConns).Msg("starting rsheet server")

	store := cellstore.New()
	graph := depgraph.New()
	mtr := metrics.New()
	engine := evalengine.New(store, graph, mtr, queueSize)

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Addr).Msg("failed to listen")
	}
	log.Info().Str("addr", listener.Addr().String()).Msg("listening")

	acceptor := transport.NewAcceptor(listener, store, engine.Queue, mtr, cfg.MaxConns)

	ctx, cancel := context.WithCancel(context.Background())

	// The engine shuts down only when its queue is closed, never on ctx
	// cancellation directly: it must keep draining replies for handlers
	// that are still mid-flight while the acceptor winds down.
	engineDone := make(chan struct{})
	go func() {
		engine.Run(context.Background())
		close(engineDone)
	}()

	acceptorDone := make(chan struct{})
	go func() {
		acceptor.Run(ctx)
		close(acceptorDone)
	}()

	go logMetricsPeriodically(ctx, mtr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()

	<-acceptorDone
	close(engine.Queue)
	<-engineDone

	log.Info().Msg("server exited gracefully")
}

// logMetricsPeriodically emits a debug-level snapshot of the connection and
// transaction counters on a fixed interval, the only place Snapshot is read
// outside the acceptor's max-conns check.
func logMetricsPeriodically(ctx context.Context, mtr *metrics.Collector) {
	ticker := time.NewTicker(metricsLogPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := mtr.Snapshot()
			log.Debug().
				Int64("connections_accepted", snap.ConnectionsAccepted).
				Int64("connections_active", snap.ConnectionsActive).
				Int64("transactions_ok", snap.TransactionsOK).
				Int64("transactions_errored", snap.TransactionsErrored).
				Int64("cycles_detected", snap.CyclesDetected).
				Msg("metrics snapshot")
		}
	}
}
