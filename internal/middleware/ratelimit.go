package middleware

import (
	"net/http"

	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"go.uber.org/zap"

	"github.com/tonyarciria-byte/psycomed/internal/request"
	"github.com/tonyarciria-byte/psycomed/internal/security"
)

// RateLimit limits write requests per client IP. Reads pass through unlimited
// and limiter store failures admit the request.
func RateLimit(rl *security.RateLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		mw := stdlibmw.NewMiddleware(rl.Limiter(),
			stdlibmw.WithKeyGetter(func(r *http.Request) string {
				return request.ClientIP(r)
			}),
			stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
				respondErrorJSON(w, r, http.StatusTooManyRequests, "Too Many Requests", "Too many changes in a short time, try again in a minute", logger)
			}),
			stdlibmw.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				logger.Warn("rate_limit_store_error", zap.Error(err))
				next.ServeHTTP(w, r)
			}),
		)
		limited := mw.Handler(next)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isWrite(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
