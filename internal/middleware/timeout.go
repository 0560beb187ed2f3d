package middleware

import (
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout is the default request timeout. Personalized advice calls
	// are bounded by their own client timeout, which is shorter.
	DefaultRequestTimeout = 45 * time.Second
)

const timeoutBody = `{"success":false,"error":"Service Unavailable","message":"Request Timeout"}`

// Timeout creates a middleware that enforces a timeout on request handlers.
// The handler context is cancelled when the timeout fires.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, timeoutBody)
	}
}
