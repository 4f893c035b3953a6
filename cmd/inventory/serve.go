package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/shelter-inventory-service/config"
	"github.com/fekuna/shelter-inventory-service/internal/auth"
	"github.com/fekuna/shelter-inventory-service/internal/broker"
	"github.com/fekuna/shelter-inventory-service/internal/consumption/listener"
	"github.com/fekuna/shelter-inventory-service/internal/metrics"
	"github.com/fekuna/shelter-inventory-service/internal/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC health endpoint, metrics, the feeding listener and scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(config.LoadEnv())
		},
	}
}

func serve(cfg *config.Config) error {
	// 1. Logger
	appLogger := newLogger(cfg)
	defer appLogger.Sync()

	// 2. Storage, locks and usecases
	a, err := newApp(cfg, appLogger)
	if err != nil {
		appLogger.Error("Could not initialize service", zap.Error(err))
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Feeding listener
	if cfg.Kafka.Enabled {
		kafkaConsumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.FeedingTopic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()
		appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.FeedingTopic))

		feedingListener := listener.NewFeedingListener(kafkaConsumer, a.consumption, a.metrics, appLogger)
		go feedingListener.Start(ctx)
	}

	// 4. Scheduled jobs
	jobs, err := scheduler.New(scheduler.Config{
		AuditSchedule:  cfg.Scheduler.AuditSchedule,
		ExpirySchedule: cfg.Scheduler.ExpirySchedule,
		ExpiryWindow:   cfg.Scheduler.ExpiryWindow,
	}, a.stock, a.itemRepo, appLogger)
	if err != nil {
		appLogger.Error("Could not register scheduled jobs", zap.Error(err))
		return err
	}
	jobs.Start()

	// 5. Metrics and health over HTTP
	metricsServer := metrics.NewServer(cfg.Metrics.Addr, a.registry, cfg.Metrics.Enabled)
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("metrics server failed", zap.Error(err))
		}
	}()

	// 6. gRPC server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		appLogger.Error("failed to listen", zap.String("port", port), zap.Error(err))
		return err
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(auth.ContextInterceptor()),
	)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Error("failed to serve", zap.Error(err))
		}
	}()

	// 7. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	jobs.Stop(shutdownCtx)
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("metrics server shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
	return nil
}
