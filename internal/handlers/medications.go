package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/models"
	"github.com/tonyarciria-byte/psycomed/internal/notify"
	"github.com/tonyarciria-byte/psycomed/internal/store"
	"go.uber.org/zap"
)

// MedicationHandler serves medications and their intake log
type MedicationHandler struct {
	store     *store.Store
	scheduler *notify.Scheduler
	logger    *zap.Logger
	now       func() time.Time
}

// NewMedicationHandler creates a medication handler. scheduler may be nil, in which
// case alarms are stored but never queued.
func NewMedicationHandler(s *store.Store, scheduler *notify.Scheduler, log *zap.Logger) *MedicationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MedicationHandler{store: s, scheduler: scheduler, logger: log, now: time.Now}
}

// RegisterRoutes registers medication routes
func (h *MedicationHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/medications", h.ListMedications).Methods("GET")
	r.HandleFunc("/medications", h.CreateMedication).Methods("POST")
	r.HandleFunc("/medications/stats", h.GetStats).Methods("GET")
	r.HandleFunc("/medications/log", h.ListLog).Methods("GET")
	r.HandleFunc("/medications/log/{logId}", h.DeleteLogEntry).Methods("DELETE")
	r.HandleFunc("/medications/{id}", h.UpdateMedication).Methods("PUT")
	r.HandleFunc("/medications/{id}", h.DeleteMedication).Methods("DELETE")
	r.HandleFunc("/medications/{id}/log", h.LogIntake).Methods("POST")
}

// ListMedications handles GET /medications
func (h *MedicationHandler) ListMedications(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Medications())
}

// CreateMedication handles POST /medications and queues the first alarm when one is enabled
func (h *MedicationHandler) CreateMedication(w http.ResponseWriter, r *http.Request) {
	var med models.Medication
	if !decodeJSON(w, r, &med) {
		return
	}
	created, msgs, err := h.store.AddMedication(r.Context(), med, h.now())
	if handleStoreError(w, msgs, err, h.logger, "add_medication") {
		return
	}

	if h.scheduler != nil && created.AlarmEnabled {
		if _, err := h.scheduler.ScheduleMedicationAlarm(r.Context(), created); err != nil && !errors.Is(err, notify.ErrAlarmDisabled) {
			h.logger.Warn("medication_alarm_schedule_failed",
				zap.String("medication_id", created.ID.String()),
				zap.String("error", logger.SanitizeError(err)),
			)
		}
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateMedication handles PUT /medications/{id}
func (h *MedicationHandler) UpdateMedication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var med models.Medication
	if !decodeJSON(w, r, &med) {
		return
	}
	updated, msgs, err := h.store.UpdateMedication(r.Context(), id, med)
	if handleStoreError(w, msgs, err, h.logger, "update_medication") {
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteMedication handles DELETE /medications/{id}
func (h *MedicationHandler) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := h.store.DeleteMedication(r.Context(), id)
	if !deleted {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Medication not found")
		return
	}
	handleStoreError(w, nil, err, h.logger, "delete_medication")
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

type intakeRequest struct {
	Mood  string `json:"mood"`
	Notes string `json:"notes"`
}

// LogIntake handles POST /medications/{id}/log. The first call of the day records
// the mood before the intake, the second the mood after.
func (h *MedicationHandler) LogIntake(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req intakeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	entry, err := h.store.LogMedication(r.Context(), id, req.Mood, req.Notes, h.now())
	if handleStoreError(w, nil, err, h.logger, "log_medication") {
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// ListLog handles GET /medications/log
func (h *MedicationHandler) ListLog(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.store.MedicationLog())
}

// DeleteLogEntry handles DELETE /medications/log/{logId}
func (h *MedicationHandler) DeleteLogEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "logId")
	if !ok {
		return
	}
	deleted, err := h.store.DeleteLogEntry(r.Context(), id)
	if !deleted {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Log entry not found")
		return
	}
	handleStoreError(w, nil, err, h.logger, "delete_medication_log")
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// GetStats handles GET /medications/stats
func (h *MedicationHandler) GetStats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.store.MedicationStats(h.now()))
}
