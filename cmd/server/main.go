package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tonyarciria-byte/psycomed/internal/app"
	"github.com/tonyarciria-byte/psycomed/internal/config"
	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/notify"
	"github.com/tonyarciria-byte/psycomed/internal/queue"
	"github.com/tonyarciria-byte/psycomed/internal/telemetry"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 30 * time.Second
	dlqGCInterval   = time.Hour
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug logging, including advisor prompts")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag
	cfg.ServerDebugMode = debugMode

	zapLogger, err := logger.NewProductionLogger("psycomed-server", debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("storage_driver", cfg.StorageDriver),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	tp := initTracing(cfg, zapLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(ctx, tp); err != nil {
			zapLogger.Warn("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
	}()

	// Reminders are delivered in-process only when there is no broker; with
	// RabbitMQ configured cmd/worker consumes them.
	application := app.New(cfg, zapLogger, app.WithInProcessWorker(notify.NewLogNotifier(zapLogger)))
	if err := application.Init(context.Background()); err != nil {
		zapLogger.Fatal("failed_to_initialize_app", zap.Error(err))
	}

	gcCtx, gcCancel := context.WithCancel(context.Background())
	defer gcCancel()
	if purger, ok := application.Queue.(queue.DLQPurger); ok && cfg.DLQRetention > 0 {
		gc := queue.NewGarbageCollector(purger, dlqGCInterval, cfg.DLQRetention, zapLogger)
		go func() {
			if err := gc.Start(gcCtx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Warn("dlq_gc_stopped", zap.Error(err))
			}
		}()
		zapLogger.Info("dlq_gc_started", zap.Duration("retention", cfg.DLQRetention))
	}

	srv := &http.Server{
		Addr:           cfg.ServerAddr,
		Handler:        application.Router(),
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	gcCancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}
	if err := application.Dispose(ctx); err != nil {
		zapLogger.Error("app_dispose_failed", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

func initTracing(cfg *config.Config, zapLogger *zap.Logger) *sdktrace.TracerProvider {
	if !cfg.OTELEnabled {
		return nil
	}
	if cfg.OTELEndpoint == "" {
		zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		return nil
	}
	tp, err := telemetry.InitTracer(context.Background(), telemetry.Options{
		ServiceName: "psycomed-server",
		Endpoint:    cfg.OTELEndpoint,
	})
	if err != nil {
		zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		return nil
	}
	zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
	return tp
}
