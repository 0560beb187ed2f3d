package security

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

// DefaultRate admits 10 requests per 60 000 ms window
const DefaultRate = "10-M"

const storePrefix = "psycomed_limiter"

// RateLimiter admits or rejects requests per identifier within a time window.
// Windows are fixed, not sliding: a burst straddling a window boundary can see
// up to twice the limit admitted within one window length.
type RateLimiter struct {
	limiter *limiter.Limiter
	logger  *zap.Logger
}

// NewMemoryStore returns an in-process limiter store
func NewMemoryStore() limiter.Store {
	return memorystore.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          storePrefix,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})
}

// NewRedisStore returns a limiter store shared through Redis
func NewRedisStore(client *redis.Client) (limiter.Store, error) {
	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: storePrefix})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}
	return store, nil
}

// NewRateLimiter creates a limiter for a formatted rate such as "10-M".
// An empty rate uses DefaultRate and a nil store uses an in-process store.
func NewRateLimiter(rate string, store limiter.Store, logger *zap.Logger) (*RateLimiter, error) {
	if rate == "" {
		rate = DefaultRate
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", rate, err)
	}
	if store == nil {
		store = NewMemoryStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{limiter: limiter.New(store, parsed), logger: logger}, nil
}

// Allow records a request for identifier and reports whether it is admitted.
// Store failures admit the request.
func (r *RateLimiter) Allow(ctx context.Context, identifier string) bool {
	lctx, err := r.limiter.Get(ctx, identifier)
	if err != nil {
		r.logger.Warn("rate_limit_store_error",
			zap.String("identifier", identifier),
			zap.Error(err),
		)
		return true
	}
	if lctx.Reached {
		r.logger.Debug("rate_limit_reached",
			zap.String("identifier", identifier),
			zap.Int64("limit", lctx.Limit),
		)
		return false
	}
	return true
}

// Limiter exposes the underlying limiter for HTTP middleware
func (r *RateLimiter) Limiter() *limiter.Limiter {
	return r.limiter
}
