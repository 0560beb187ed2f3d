package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

// DefaultFrontendOrigin is allowed when no origins are configured
const DefaultFrontendOrigin = "http://localhost:3000"

// ParseOrigins splits a comma separated origin list, dropping blanks and duplicates
func ParseOrigins(list string) []string {
	var origins []string
	seen := make(map[string]struct{})
	for _, o := range strings.Split(list, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		origins = []string{DefaultFrontendOrigin}
	}
	return origins
}

// CORS creates CORS middleware for the browser UI origins in frontendURL
func CORS(frontendURL string, logger *zap.Logger) func(http.Handler) http.Handler {
	origins := ParseOrigins(frontendURL)
	if logger != nil {
		logger.Info("cors_configured", zap.Strings("allowed_origins", origins))
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch,
			http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           86400,
	})
	return c.Handler
}
