package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tonyarciria-byte/psycomed/internal/analytics"
	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/store"
	"github.com/tonyarciria-byte/psycomed/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SessionSource exposes the current session bookkeeping
type SessionSource interface {
	Snapshot() analytics.SessionSnapshot
}

// AnalyticsHandler serves derived metrics, insights and the encrypted export
type AnalyticsHandler struct {
	store   *store.Store
	engine  *analytics.Engine
	session SessionSource
	cipher  analytics.Encrypter
	logger  *zap.Logger
	now     func() time.Time
}

// NewAnalyticsHandler creates an analytics handler
func NewAnalyticsHandler(s *store.Store, engine *analytics.Engine, session SessionSource, cipher analytics.Encrypter, log *zap.Logger) *AnalyticsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalyticsHandler{store: s, engine: engine, session: session, cipher: cipher, logger: log, now: time.Now}
}

// RegisterRoutes registers analytics routes
func (h *AnalyticsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analytics", h.GetAnalytics).Methods("GET")
	r.HandleFunc("/insights", h.GetInsights).Methods("GET")
	r.HandleFunc("/session", h.GetSession).Methods("GET")
	r.HandleFunc("/export", h.Export).Methods("GET")
}

// GetAnalytics handles GET /analytics
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	entries := h.store.Entries()
	_, span := telemetry.StartSpan(r.Context(), "analytics.analyze", attribute.Int("entries", len(entries)))
	derived := h.engine.Analyze(entries, h.now())
	span.End()
	respondJSON(w, http.StatusOK, derived)
}

// GetInsights handles GET /insights
func (h *AnalyticsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	entries := h.store.Entries()
	_, span := telemetry.StartSpan(r.Context(), "analytics.insights", attribute.Int("entries", len(entries)))
	insights := h.engine.Insights(entries, h.now())
	span.End()
	respondJSON(w, http.StatusOK, insights)
}

// GetSession handles GET /session
func (h *AnalyticsHandler) GetSession(w http.ResponseWriter, _ *http.Request) {
	if h.session == nil {
		respondJSON(w, http.StatusOK, analytics.SessionSnapshot{FeaturesUsed: []string{}})
		return
	}
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// Export handles GET /export and returns the encrypted analytics document
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	entries := h.store.Entries()
	_, span := telemetry.StartSpan(r.Context(), "analytics.export", attribute.Int("entries", len(entries)))
	defer span.End()

	var snapshot analytics.SessionSnapshot
	if h.session != nil {
		snapshot = h.session.Snapshot()
	}
	blob, err := h.engine.Export(h.cipher, h.engine.Analyze(entries, now), snapshot, now)
	if err != nil {
		span.RecordError(err)
		h.logger.Error("export_failed", zap.String("error", logger.SanitizeError(err)))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to export analytics")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"export":     blob,
		"exportDate": now.UTC().Format(time.RFC3339),
	})
}
