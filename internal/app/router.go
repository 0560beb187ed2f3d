package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tonyarciria-byte/psycomed/internal/handlers"
	"github.com/tonyarciria-byte/psycomed/internal/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// APIPrefix is the path prefix of the versioned API
const APIPrefix = "/api/v1"

// Router builds the HTTP handler for the API server. Init must have been called.
func (a *App) Router() http.Handler {
	r := mux.NewRouter()

	if a.Config.OTELEnabled {
		r.Use(otelmux.Middleware("psycomed-server"))
	}
	r.Use(middleware.SecurityHeaders(a.Config.EnableHSTS))
	r.Use(middleware.CORS(a.Config.FrontendURL, a.Logger))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(a.Logger))
	r.Use(middleware.Logging(a.Logger))

	health := handlers.NewHealthChecker()
	for name, check := range a.HealthChecks() {
		health.AddCheck(name, check)
	}
	r.HandleFunc("/healthz", health.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix(APIPrefix).Subrouter()
	api.Use(middleware.SessionTracking(a.Tracker, APIPrefix))
	if a.RateLimiter != nil {
		api.Use(middleware.RateLimit(a.RateLimiter, a.Logger))
	}

	handlers.NewEntryHandler(a.Store, a.Tracker, a.Logger).RegisterRoutes(api)
	handlers.NewAnalyticsHandler(a.Store, a.Analytics, a.Tracker, a.Cipher, a.Logger).RegisterRoutes(api)
	handlers.NewRecommendationHandler(a.Store, a.Recommender, a.Scheduler, a.Logger).RegisterRoutes(api)
	handlers.NewProfileHandler(a.Store, a.Themes, a.Logger).RegisterRoutes(api)
	handlers.NewMedicationHandler(a.Store, a.Scheduler, a.Logger).RegisterRoutes(api)

	// Preflight requests are answered by the CORS middleware; this keeps mux
	// from returning 405 for them.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}
