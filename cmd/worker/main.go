package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tonyarciria-byte/psycomed/internal/app"
	"github.com/tonyarciria-byte/psycomed/internal/config"
	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/notify"
	"github.com/tonyarciria-byte/psycomed/internal/queue"
	"github.com/tonyarciria-byte/psycomed/internal/workers"
	"go.uber.org/zap"
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger("psycomed-worker", debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	if cfg.RabbitMQURL == "" {
		zapLogger.Fatal("rabbitmq_url_required",
			zap.String("hint", "without RABBITMQ_URL the server delivers reminders in-process"),
		)
	}

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		zapLogger.Info("shutdown_signal_received")
		cancel()
	}()

	jobQueue, err := app.ConnectRabbitMQ(ctx, cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	if cfg.DLQRetention > 0 {
		gc := queue.NewGarbageCollector(jobQueue, time.Hour, cfg.DLQRetention, zapLogger)
		go func() {
			if err := gc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Warn("dlq_gc_stopped", zap.Error(err))
			}
		}()
	}

	worker := workers.NewReminderWorker(notify.NewLogNotifier(zapLogger), jobQueue, zapLogger)

	zapLogger.Info("worker_started")
	if err := worker.Run(ctx, cfg.RabbitMQPrefetch); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Error("worker_stopped_with_error", zap.Error(err))
		return
	}

	zapLogger.Info("worker_stopped")
}
