// Package app wires configuration into the running set of components shared by
// the server, the worker and the CLI. Nothing in it is a package global; every
// process builds one App, calls Init and finally Dispose.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tonyarciria-byte/psycomed/internal/analytics"
	"github.com/tonyarciria-byte/psycomed/internal/config"
	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/notify"
	"github.com/tonyarciria-byte/psycomed/internal/queue"
	"github.com/tonyarciria-byte/psycomed/internal/recommend"
	"github.com/tonyarciria-byte/psycomed/internal/security"
	"github.com/tonyarciria-byte/psycomed/internal/services/ai"
	"github.com/tonyarciria-byte/psycomed/internal/storage"
	"github.com/tonyarciria-byte/psycomed/internal/store"
	"github.com/tonyarciria-byte/psycomed/internal/theme"
	"github.com/tonyarciria-byte/psycomed/internal/workers"
	"go.uber.org/zap"
)

const (
	rabbitMQMaxRetries   = 10
	rabbitMQInitialDelay = 2 * time.Second
	rabbitMQMaxDelay     = 30 * time.Second
)

// Option customises an App before Init
type Option func(*App)

// WithInProcessWorker delivers reminders from inside the process when no
// RabbitMQ broker is configured
func WithInProcessWorker(notifier notify.Notifier) Option {
	return func(a *App) { a.notifier = notifier }
}

// WithoutQueue skips notification scheduling entirely
func WithoutQueue() Option {
	return func(a *App) { a.queueDisabled = true }
}

// WithBackend uses backend instead of the one selected by STORAGE_DRIVER
func WithBackend(backend storage.Backend) Option {
	return func(a *App) { a.Backend = backend }
}

// App holds the components of one running process
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Backend     storage.Backend
	Cipher      *security.Cipher
	Store       *store.Store
	Metrics     *analytics.Metrics
	Analytics   *analytics.Engine
	Tracker     *analytics.SessionTracker
	Themes      *theme.Registry
	Recommender *recommend.Engine
	Queue       queue.JobQueue
	Scheduler   *notify.Scheduler
	RateLimiter *security.RateLimiter

	notifier      notify.Notifier
	queueDisabled bool
	redisClient   *redis.Client
	cancel        context.CancelFunc
	workerDone    chan error
}

// New creates an application context. Connections are opened by Init.
func New(cfg *config.Config, log *zap.Logger, opts ...Option) *App {
	if log == nil {
		log = zap.NewNop()
	}
	metrics := analytics.NewMetrics()
	a := &App{
		Config:    cfg,
		Logger:    log,
		Cipher:    security.NewCipher(cfg.Secret),
		Metrics:   metrics,
		Analytics: analytics.NewEngine(log, metrics),
		Tracker:   analytics.NewSessionTracker(log, metrics, cfg.TrackingInterval),
		Themes:    theme.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens storage, loads persisted state and starts background work.
// Background work runs until Dispose, independent of ctx cancellation.
func (a *App) Init(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel

	if a.Backend == nil {
		backend, err := OpenBackend(ctx, a.Config)
		if err != nil {
			return err
		}
		a.Backend = backend
	}

	a.Store = store.New(storage.NewSecureStorage(a.Backend, a.Cipher), a.Logger)
	if err := a.Store.Load(ctx); err != nil {
		if !errors.Is(err, store.ErrLoadFallback) {
			return fmt.Errorf("failed to load state: %w", err)
		}
		a.Logger.Warn("state_load_fallback", zap.String("error", logger.SanitizeError(err)))
	}
	if err := a.Themes.LoadCustom(a.Store.Profile().CustomTheme); err != nil {
		a.Logger.Warn("custom_themes_load_failed", zap.String("error", logger.SanitizeError(err)))
	}

	recommender, err := a.newRecommender()
	if err != nil {
		return err
	}
	a.Recommender = recommender

	if err := a.initRateLimiter(ctx); err != nil {
		return err
	}

	if !a.queueDisabled {
		if err := a.initQueue(ctx, runCtx); err != nil {
			return err
		}
	}

	a.Tracker.Init(runCtx)
	a.Logger.Info("app_initialized",
		zap.String("storage_driver", a.Config.StorageDriver),
		zap.Int("entries", len(a.Store.Entries())),
		zap.Bool("queue_enabled", a.Queue != nil),
		zap.Bool("advisor_enabled", a.Config.OpenAIKey != ""),
	)
	return nil
}

// Dispose stops background work, saves state and closes connections
func (a *App) Dispose(ctx context.Context) error {
	var errs []error

	if a.cancel != nil {
		a.cancel()
	}
	if a.workerDone != nil {
		select {
		case err := <-a.workerDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				errs = append(errs, fmt.Errorf("reminder worker: %w", err))
			}
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}
	}
	a.Tracker.Dispose()

	if a.Store != nil {
		if err := a.Store.Save(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to save state: %w", err))
		}
	}
	if a.Queue != nil {
		if err := a.Queue.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close queue: %w", err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}
	if a.Backend != nil {
		if err := a.Backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close storage: %w", err))
		}
	}

	a.Logger.Info("app_disposed", zap.Int("errors", len(errs)))
	return errors.Join(errs...)
}

// OpenBackend creates the storage backend selected by cfg.StorageDriver
func OpenBackend(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return storage.NewMemoryBackend(), nil
	case config.StorageFile:
		return storage.NewFileBackend(cfg.DataDir)
	case config.StoragePostgres:
		return storage.NewPostgresBackend(ctx, cfg.DatabaseURL)
	case config.StorageRedis:
		return storage.NewRedisBackend(ctx, cfg.RedisURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func (a *App) newRecommender() (*recommend.Engine, error) {
	var catalog *recommend.Catalog
	if a.Config.CatalogPath != "" {
		loaded, err := recommend.LoadCatalog(a.Config.CatalogPath)
		if err != nil {
			return nil, err
		}
		catalog = loaded
	}
	engine := recommend.NewEngine(catalog, nil, a.Logger)

	if a.Config.OpenAIKey == "" {
		return engine, nil
	}
	registry := ai.NewProviderRegistry()
	ai.RegisterOpenAI(registry, a.Logger)
	advisor, err := registry.GetProvider(ai.DefaultProvider, map[string]string{
		"api_key":  a.Config.OpenAIKey,
		"base_url": a.Config.AIBaseURL,
		"model":    a.Config.AIModel,
		"debug":    fmt.Sprint(a.Config.ServerDebugMode),
	})
	if err != nil {
		a.Logger.Warn("advisor_unavailable", zap.String("error", logger.SanitizeError(err)))
		return engine, nil
	}
	a.Logger.Info("advisor_enabled",
		zap.String("model", a.Config.AIModel),
		zap.String("api_key", ai.SanitizeAPIKey(a.Config.OpenAIKey)),
	)
	return engine.WithAdvisor(advisor), nil
}

// initRateLimiter shares the storage Redis connection when there is one, opens
// REDIS_URL otherwise, and falls back to an in-memory store
func (a *App) initRateLimiter(ctx context.Context) error {
	limiterStore := security.NewMemoryStore()

	client := a.sharedRedisClient()
	if client == nil && a.Config.RedisURL != "" {
		opts, err := redis.ParseURL(a.Config.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client = redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			a.Logger.Warn("rate_limit_redis_unavailable", zap.String("error", logger.SanitizeError(err)))
			client = nil
		} else {
			a.redisClient = client
		}
	}
	if client != nil {
		redisStore, err := security.NewRedisStore(client)
		if err != nil {
			return err
		}
		limiterStore = redisStore
	}

	rl, err := security.NewRateLimiter(a.Config.RateLimit, limiterStore, a.Logger)
	if err != nil {
		return err
	}
	a.RateLimiter = rl
	return nil
}

func (a *App) sharedRedisClient() *redis.Client {
	if rb, ok := a.Backend.(*storage.RedisBackend); ok {
		return rb.Client()
	}
	return nil
}

func (a *App) initQueue(ctx, runCtx context.Context) error {
	if a.Config.RabbitMQURL != "" {
		q, err := ConnectRabbitMQ(ctx, a.Config.RabbitMQURL, a.Logger)
		if err != nil {
			return err
		}
		a.Queue = q
		a.Scheduler = notify.NewScheduler(q, a.Logger)
		return nil
	}

	mq := queue.NewMemoryQueue()
	a.Queue = mq
	a.Scheduler = notify.NewScheduler(mq, a.Logger)
	if a.notifier == nil {
		return nil
	}

	worker := workers.NewReminderWorker(a.notifier, mq, a.Logger)
	a.workerDone = make(chan error, 1)
	go func() {
		a.workerDone <- worker.Run(runCtx, a.Config.RabbitMQPrefetch)
	}()
	a.Logger.Info("in_process_worker_started")
	return nil
}

// ConnectRabbitMQ dials the broker, retrying with exponential backoff while it starts up
func ConnectRabbitMQ(ctx context.Context, url string, log *zap.Logger) (*queue.RabbitMQQueue, error) {
	var lastErr error
	for attempt := range rabbitMQMaxRetries {
		q, err := queue.NewRabbitMQQueue(url, log)
		if err == nil {
			log.Info("connected_to_rabbitmq")
			return q, nil
		}
		lastErr = err

		delay := min(rabbitMQInitialDelay*time.Duration(1<<attempt), rabbitMQMaxDelay)
		log.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", rabbitMQMaxRetries),
			zap.String("error", logger.SanitizeError(err)),
			zap.Duration("retry_delay", delay),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", rabbitMQMaxRetries, lastErr)
}

// HealthChecks returns the dependency probes exposed on /healthz?mode=extended
func (a *App) HealthChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{}
	if a.Backend != nil {
		checks["storage"] = a.Backend.Ping
	}
	if a.Queue != nil {
		checks["queue"] = a.Queue.HealthCheck
	}
	if a.redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redisClient.Ping(ctx).Err() }
	}
	return checks
}
