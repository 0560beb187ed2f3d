package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/models"
	"github.com/tonyarciria-byte/psycomed/internal/notify"
	"github.com/tonyarciria-byte/psycomed/internal/recommend"
	"github.com/tonyarciria-byte/psycomed/internal/store"
	"github.com/tonyarciria-byte/psycomed/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RecommendationHandler serves recommendations and smart notifications
type RecommendationHandler struct {
	store     *store.Store
	engine    *recommend.Engine
	scheduler *notify.Scheduler
	logger    *zap.Logger
	now       func() time.Time
}

// NewRecommendationHandler creates a recommendation handler. Without a scheduler
// the scheduling routes answer 503.
func NewRecommendationHandler(s *store.Store, engine *recommend.Engine, scheduler *notify.Scheduler, log *zap.Logger) *RecommendationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecommendationHandler{store: s, engine: engine, scheduler: scheduler, logger: log, now: time.Now}
}

// RegisterRoutes registers recommendation routes
func (h *RecommendationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/recommendations", h.GetRecommendation).Methods("GET")
	r.HandleFunc("/tags", h.GetTags).Methods("GET")
	r.HandleFunc("/notifications", h.GetNotifications).Methods("GET")
	r.HandleFunc("/notifications/schedule", h.ScheduleNotifications).Methods("POST")
	r.HandleFunc("/reminders/daily", h.ScheduleDailyReminder).Methods("POST")
}

// GetRecommendation handles GET /recommendations?mood=N. Without mood the rating
// of the most recent entry is used.
func (h *RecommendationHandler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	entries := h.store.Entries()

	mood := latestRating(entries)
	if raw := r.URL.Query().Get("mood"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "mood must be an integer")
			return
		}
		mood = parsed
	}

	ctx, span := telemetry.StartSpan(r.Context(), "recommend.recommend", attribute.Int("mood", mood))
	rec := h.engine.RecommendContext(ctx, entries, mood)
	span.End()
	respondJSON(w, http.StatusOK, rec)
}

// GetTags handles GET /tags and returns the tag vocabulary by group
func (h *RecommendationHandler) GetTags(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Catalog().TagVocabulary())
}

// GetNotifications handles GET /notifications
func (h *RecommendationHandler) GetNotifications(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.SmartNotifications(h.store.Entries(), h.store.Profile(), h.now()))
}

// ScheduleNotifications handles POST /notifications/schedule and enqueues every
// notification that currently applies
func (h *RecommendationHandler) ScheduleNotifications(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Notification scheduling is not configured")
		return
	}

	notifications := h.engine.SmartNotifications(h.store.Entries(), h.store.Profile(), h.now())
	jobs, err := h.scheduler.ScheduleNotifications(r.Context(), notifications)
	if err != nil {
		h.logger.Warn("notification_schedule_failed",
			zap.Int("requested", len(notifications)),
			zap.Int("scheduled", len(jobs)),
			zap.String("error", logger.SanitizeError(err)),
		)
		if len(jobs) == 0 {
			respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to schedule notifications")
			return
		}
	}
	respondJSON(w, http.StatusOK, jobs)
}

// ScheduleDailyReminder handles POST /reminders/daily using the profile's reminder time
func (h *RecommendationHandler) ScheduleDailyReminder(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Notification scheduling is not configured")
		return
	}
	profile := h.store.Profile()
	if !profile.Reminders || profile.ReminderTime == "" {
		respondJSONError(w, http.StatusConflict, "Conflict", "Daily reminders are disabled")
		return
	}

	texts := h.engine.Catalog().Notifications.Reminder
	job, err := h.scheduler.ScheduleDaily(r.Context(), profile.ReminderTime, texts.Title, texts.Message)
	if err != nil {
		h.logger.Warn("reminder_schedule_failed", zap.String("error", logger.SanitizeError(err)))
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to schedule reminder")
		return
	}
	respondJSON(w, http.StatusCreated, job)
}

// latestRating returns the rating of the most recent entry by date, or 0 when there is none
func latestRating(entries []models.MoodEntry) int {
	if len(entries) == 0 {
		return 0
	}
	sorted := append([]models.MoodEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date > sorted[j].Date })
	return sorted[0].Rating
}
