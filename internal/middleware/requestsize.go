package middleware

import (
	"net/http"
)

// DefaultMaxRequestSize bounds request bodies. Theme imports are the largest
// documents the API accepts and stay well below it.
const DefaultMaxRequestSize int64 = 1 << 20

// MaxRequestSize rejects bodies declared larger than maxBytes with 413 and caps
// undeclared ones, which then fail to decode in the handler
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				respondErrorJSON(w, r, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Request body exceeds the size limit", nil)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			defer func() { _ = r.Body.Close() }()

			next.ServeHTTP(w, r)
		})
	}
}
