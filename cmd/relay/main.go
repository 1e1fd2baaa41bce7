package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"room-relay/infrastructure/grpc/server"
	"room-relay/infrastructure/grpc/wire"
	"room-relay/internal"
	"room-relay/internal/clock"
	"room-relay/repositories"
	"room-relay/runtime"
	"room-relay/runtime/workers"
	"room-relay/services"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Exit codes to provide meaningful status to the service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownGrace = 5 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and blocks until a signal or a server error.
// Deferred cleanups run before main exits.
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
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Room logs live in an in-memory badger: nothing survives the process
	db, err := repositories.OpenInMemory(logger.Enabled(ctx, slog.LevelDebug))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if config.DebugPort > 0 {
		endpoint := "/inspect"
		url := fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint)
		logger.Info("Debug Badger inspector available", "url", url)
		database.StartDebugServer(db, config.DebugPort, endpoint, repositories.MessageMapper)
	}

	// 3. State & Orchestration
	messageRepository := repositories.NewMessageRepository(db, logger)
	rooms := runtime.NewRoomRegistry(logger, clock.Real(), config.RoomTTL, messageRepository, runtime.NewMembershipIndex())
	defer rooms.Close()
	sessions := runtime.NewSessionRegistry()
	orchestrator := runtime.NewOrchestrator(logger,
		workers.NewSupervisor(logger, config.RestartInterval),
		sessions, rooms,
		config.BufferSize, config.SinkTimeout, config.IngestionTimeout,
		config.MetricInterval, config.LowCapacityThreshold)
	relayService := services.NewRelayService(logger, rooms, sessions, orchestrator, config.RoomCodeAttempts)

	// The pipeline outlives the signal: it is stopped once streams are closed.
	pipelineCtx, stopPipeline := context.WithCancel(context.Background())
	orchestratorDone := make(chan struct{})
	go func() {
		orchestrator.Start(pipelineCtx)
		close(orchestratorDone)
	}()
	defer func() {
		stopPipeline()
		<-orchestratorDone
	}()

	// 4. gRPC Server Setup
	listener, err := net.Listen("tcp", config.Address())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", config.Address(), err)
	}

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(logger)))
	wire.RegisterRelayServiceServer(s, server.NewRelayServer(logger, relayService, config.ConnectionBufferSize))
	healthServer := health.NewServer()
	healthServer.SetServingStatus(wire.RelayServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, healthServer)
	reflection.Register(s)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting gRPC server", "address", config.Address(), "at", time.Now().UTC(), "room_ttl", config.RoomTTL)
		for serviceName := range s.GetServiceInfo() {
			logger.Debug("gRPC exposed services", "name", serviceName)
		}
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 5. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 6. Graceful Shutdown
	logger.Info("Shutting down gracefully...")
	healthServer.Shutdown()
	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownGrace):
		logger.Warn("Streams still open, forcing stop")
		s.Stop()
	}
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}
