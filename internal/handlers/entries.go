package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/models"
	"github.com/tonyarciria-byte/psycomed/internal/store"
	"go.uber.org/zap"
)

// MoodEntryRecorder is told about every saved mood entry
type MoodEntryRecorder interface {
	RecordMoodEntry()
}

// EntryHandler serves the mood entry history
type EntryHandler struct {
	store    *store.Store
	recorder MoodEntryRecorder
	logger   *zap.Logger
}

// NewEntryHandler creates an entry handler. recorder may be nil.
func NewEntryHandler(s *store.Store, recorder MoodEntryRecorder, log *zap.Logger) *EntryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntryHandler{store: s, recorder: recorder, logger: log}
}

// RegisterRoutes registers entry routes
func (h *EntryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/entries", h.ListEntries).Methods("GET")
	r.HandleFunc("/entries", h.ClearEntries).Methods("DELETE")
	r.HandleFunc("/entries/seed", h.SeedEntries).Methods("POST")
	r.HandleFunc("/entries/{date}", h.GetEntry).Methods("GET")
	r.HandleFunc("/entries/{date}", h.UpsertEntry).Methods("PUT")
	r.HandleFunc("/entries/{date}", h.DeleteEntry).Methods("DELETE")
	r.HandleFunc("/entries/{date}/note", h.UpdateNote).Methods("PATCH")
	r.HandleFunc("/stats", h.GetStats).Methods("GET")
}

// ListEntries handles GET /entries. Optional from and to bound the date range
// and q filters by title, note or tag.
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, to := query.Get("from"), query.Get("to")
	for _, bound := range []string{from, to} {
		if bound == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, bound); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid date format")
			return
		}
	}

	entries := h.store.EntriesInRange(from, to)
	if q := query.Get("q"); q != "" {
		hits := make(map[string]bool)
		for _, e := range h.store.Search(q) {
			hits[e.Date] = true
		}
		filtered := entries[:0]
		for _, e := range entries {
			if hits[e.Date] {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetEntry handles GET /entries/{date}
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	entry, found := h.store.Entry(date)
	if !found {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Entry not found")
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// UpsertEntry handles PUT /entries/{date}. Only the fields present in the body
// overwrite the stored entry.
func (h *EntryHandler) UpsertEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	var input models.EntryInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Date != "" && input.Date != date {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Body date does not match path")
		return
	}
	input.Date = date

	_, msgs, err := h.store.UpsertEntry(r.Context(), input)
	if handleStoreError(w, msgs, err, h.logger, "upsert_entry") {
		return
	}
	if h.recorder != nil {
		h.recorder.RecordMoodEntry()
	}

	entry, _ := h.store.Entry(date)
	h.logger.Debug("entry_saved",
		zap.String("date", date),
		zap.Int("rating", entry.Rating),
		zap.Int("tag_count", len(entry.Tags)),
	)
	respondJSON(w, http.StatusOK, entry)
}

type noteRequest struct {
	Title string `json:"title"`
	Note  string `json:"note"`
}

// UpdateNote handles PATCH /entries/{date}/note
func (h *EntryHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	var req noteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.store.UpdateNote(r.Context(), date, req.Title, req.Note)
	if handleStoreError(w, nil, err, h.logger, "update_note") {
		return
	}
	h.logger.Debug("note_saved",
		zap.String("date", date),
		zap.String("note_preview", logger.SanitizeNote(entry.Note)),
	)
	respondJSON(w, http.StatusOK, entry)
}

// DeleteEntry handles DELETE /entries/{date}
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	date, ok := pathDate(w, r)
	if !ok {
		return
	}
	deleted, err := h.store.DeleteEntry(r.Context(), date)
	if !deleted {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Entry not found")
		return
	}
	handleStoreError(w, nil, err, h.logger, "delete_entry")
	respondJSON(w, http.StatusOK, map[string]any{"deleted": date})
}

// ClearEntries handles DELETE /entries?confirm=true
func (h *EntryHandler) ClearEntries(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Clearing all entries requires confirm=true")
		return
	}
	handleStoreError(w, nil, h.store.ClearAll(r.Context()), h.logger, "clear_entries")
	h.logger.Info("entries_cleared")
	respondJSON(w, http.StatusOK, []models.MoodEntry{})
}

// SeedEntries handles POST /entries/seed
func (h *EntryHandler) SeedEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.Seed(r.Context())
	if entries == nil && err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to seed entries")
		return
	}
	handleStoreError(w, nil, err, h.logger, "seed_entries")
	respondJSON(w, http.StatusOK, entries)
}

// GetStats handles GET /stats
func (h *EntryHandler) GetStats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Stats())
}
