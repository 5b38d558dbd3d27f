package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"

	"session-lab/auth"
	"session-lab/contract"
	"session-lab/domain/event"
	"session-lab/grpc/api"
	"session-lab/grpc/server"
	"session-lab/internal"
	"session-lab/observability"
	"session-lab/repositories"
	"session-lab/repositories/sqlite"
	"session-lab/runtime"
	"session-lab/runtime/workers"
	"session-lab/services"
	"session-lab/sink"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "session-lab terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component, serves until a signal arrives and returns the exit code.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	censoredChar, _ := internal.CharacterRune(config.CharReplacement)

	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Durable store
	st, db, err := openStore(ctx, config, log)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing store...", "driver", config.StoreDriver)
		_ = st.Close()
	}()

	// 3. Supervision, telemetry & orchestration
	telemetry := make(chan event.Event, config.TelemetryBufferSize)
	sup := workers.NewSupervisor(log, config.RestartInterval, telemetry)
	registry := runtime.NewRegistry()

	orchestrator := runtime.NewOrchestrator(log, sup, registry, st, telemetry, runtime.Config{
		JoinTimeout:     config.JoinTimeout,
		SubmitTimeout:   config.SubmitTimeout,
		AdminTimeout:    config.AdminTimeout,
		SinkTimeout:     config.SinkTimeout,
		MetricInterval:  config.MetricInterval,
		EventBufferSize: config.TelemetryBufferSize,
		CensoredChar:    censoredChar,
		Session: workers.SessionConfig{
			CommandBufferSize:      config.CommandBufferSize,
			StoreTimeout:           config.StoreTimeout,
			PresenceTimeout:        config.PresenceTimeout,
			PresenceSweepInterval:  config.PresenceSweepInterval,
			MaxDuration:            config.SessionMaxDuration,
			DefaultMaxParticipants: config.MaxParticipants,
			CapacityWarningPercent: config.CapacityWarningPercent,
			AlertHistorySize:       config.AlertHistorySize,
			WordCloudMaxWords:      config.WordCloudMaxWords,
		},
	})

	stats := sink.NewStatsSink(log, 100, config.BufferTimeout)
	orchestrator.Add(sink.NewLogSink(log), stats)

	counter := event.NewCounter()
	monitor := observability.NewMonitoringManager(log, 3*config.MetricInterval)
	orchestrator.Handle(
		event.NewChannelCapacityHandler(log, config.LowCapacityThreshold),
		event.NewProcessStatsHandler(log),
		event.NewCensoredHandler(log),
		event.NewResponseAcceptedHandler(log, counter),
		event.NewWorkerRestartedAfterPanicHandler(log, counter),
		event.NewLatencyHandler(log, config.LatencyThreshold),
		monitor,
	)

	errChan := make(chan error, 2)

	// 4. Start the engine and wait for session recovery
	go func() {
		log.Info("Starting orchestrator...")
		if err := orchestrator.Start(ctx); err != nil {
			errChan <- fmt.Errorf("orchestrator error: %w", err)
		}
	}()
	select {
	case <-orchestrator.Ready():
	case err := <-errChan:
		return exitRuntime, err
	case <-ctx.Done():
		return exitOK, nil
	}

	if config.DebugPort > 0 {
		internal.StartDebugServer(ctx, log, db, config.DebugPort, nil, func() map[string]any {
			return debugStats(monitor.GetLatest(), stats.Snapshot())
		})
	}

	// 5. gRPC server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	tokens := auth.NewTokenManager(config.AuthSecret, config.AuthTokenDuration)
	interceptor := auth.NewInterceptor(tokens, server.Policy)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(server.UnaryLoggingInterceptor(log), interceptor.Unary()),
		grpc.ChainStreamInterceptor(server.StreamLoggingInterceptor(log), interceptor.Stream()),
	)
	authService := services.NewAuthService(services.AdminAccount{ID: config.AdminID, PasswordHash: config.AdminPasswordHash}, tokens)
	sessionService := services.NewSessionService(orchestrator)
	api.RegisterSessionServiceServer(s, server.NewSessionServer(log, sessionService, authService, config.ConnectionBufferSize))

	go func() {
		log.Info("Starting gRPC server", "address", address, "store", config.StoreDriver, "at", time.Now().UTC())
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-errChan:
		s.Stop()
		orchestrator.Stop()
		return exitRuntime, err
	}

	// 7. Graceful shutdown: streams end first, then the actors drain.
	log.Info("Shutting down gracefully...")
	s.GracefulStop()
	orchestrator.Stop()
	stats.Flush()
	log.Info("Program stopped cleanly")

	return exitOK, nil
}

// openStore returns the configured store. The badger handle is also returned for
// the debug inspector; it is nil with sqlite.
func openStore(ctx context.Context, config internal.Config, log *slog.Logger) (contract.Store, *badger.DB, error) {
	switch config.StoreDriver {
	case internal.StoreSQLite:
		st, err := sqlite.Open(ctx, config.SQLiteFilepath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite opening failed: %w", err)
		}
		return st, nil, nil
	default:
		st, err := repositories.OpenBadgerStore(config.BadgerFilepath, log)
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		return st, st.DB(), nil
	}
}

func debugStats(m observability.MonitoringStats, s sink.Stats) map[string]any {
	res := map[string]any{
		"live_sessions":       m.LiveSessions,
		"responses_accepted":  m.ResponsesAccepted,
		"responses_replaced":  m.ResponsesReplaced,
		"profanity_rejected":  m.ProfanityRejected,
		"subscribers_dropped": m.SubscribersDropped,
		"worker_restarts":     m.WorkerRestarts,
		"pid":                 m.PID,
		"cpu_percent":         fmt.Sprintf("%.1f", m.CPUPercent),
		"rss_bytes":           m.RSSBytes,
		"alloc_mem_mb":        m.AllocMemMb,
		"num_gc":              m.NumGC,
		"updated_at":          m.UpdatedAt,
		"sink_flushes":        s.Flushes,
	}
	for _, c := range m.Channels {
		res["channel "+c.Name] = fmt.Sprintf("%d/%d", c.Length, c.Capacity)
	}
	for t, n := range s.Events {
		res["events "+string(t)] = n
	}
	return res
}
