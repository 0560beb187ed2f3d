package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/store"
	"github.com/tonyarciria-byte/psycomed/internal/theme"
	"go.uber.org/zap"
)

// ProfileHandler serves the user profile and its theme settings
type ProfileHandler struct {
	store  *store.Store
	themes *theme.Registry
	logger *zap.Logger
	now    func() time.Time
}

// NewProfileHandler creates a profile handler. Custom themes are persisted in the profile.
func NewProfileHandler(s *store.Store, themes *theme.Registry, log *zap.Logger) *ProfileHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileHandler{store: s, themes: themes, logger: log, now: time.Now}
}

// RegisterRoutes registers profile and theme routes
func (h *ProfileHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/profile", h.GetProfile).Methods("GET")
	r.HandleFunc("/profile", h.UpdateProfile).Methods("PUT")
	r.HandleFunc("/profile", h.ResetProfile).Methods("DELETE")
	r.HandleFunc("/theme", h.GetTheme).Methods("GET")
	r.HandleFunc("/themes", h.ListThemes).Methods("GET")
	r.HandleFunc("/themes", h.CreateTheme).Methods("POST")
	r.HandleFunc("/themes/import", h.ImportTheme).Methods("POST")
	r.HandleFunc("/themes/{name}", h.DeleteTheme).Methods("DELETE")
	r.HandleFunc("/themes/{name}/export", h.ExportTheme).Methods("GET")
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.store.Profile())
}

// UpdateProfile handles PUT /profile. Fields missing from the body keep their
// current value; custom themes are managed through /themes.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	current := h.store.Profile()
	candidate := current
	if !decodeJSON(w, r, &candidate) {
		return
	}
	candidate.CustomTheme = current.CustomTheme

	update, msgs, err := h.store.UpdateProfile(r.Context(), candidate)
	if handleStoreError(w, msgs, err, h.logger, "update_profile") {
		return
	}
	if update.LanguageChanged {
		h.logger.Info("profile_language_changed", zap.String("locale", update.Locale))
	}
	respondJSON(w, http.StatusOK, update)
}

// ResetProfile handles DELETE /profile and restores the defaults
func (h *ProfileHandler) ResetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.store.ResetProfile(r.Context())
	handleStoreError(w, nil, err, h.logger, "reset_profile")
	_ = h.themes.LoadCustom(profile.CustomTheme)
	respondJSON(w, http.StatusOK, profile)
}

// GetTheme handles GET /theme and returns the theme to render right now
func (h *ProfileHandler) GetTheme(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.themes.Resolve(h.store.Profile(), h.now()))
}

// ListThemes handles GET /themes
func (h *ProfileHandler) ListThemes(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.themes.All())
}

type createThemeRequest struct {
	Name  string      `json:"name"`
	Theme theme.Theme `json:"theme"`
}

// CreateTheme handles POST /themes
func (h *ProfileHandler) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var req createThemeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.themes.CreateCustom(req.Name, req.Theme)
	if respondThemeError(w, err) {
		return
	}
	h.persistThemes(r.Context())
	respondJSON(w, http.StatusCreated, created)
}

// ImportTheme handles POST /themes/import with a document produced by ExportTheme
func (h *ProfileHandler) ImportTheme(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", "Theme document too large")
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	name, imported, err := h.themes.Import(data)
	if respondThemeError(w, err) {
		return
	}
	h.persistThemes(r.Context())
	respondJSON(w, http.StatusCreated, map[string]any{"name": name, "theme": imported})
}

// DeleteTheme handles DELETE /themes/{name}
func (h *ProfileHandler) DeleteTheme(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !h.themes.DeleteCustom(name) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Custom theme not found")
		return
	}
	h.persistThemes(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{"deleted": name})
}

// ExportTheme handles GET /themes/{name}/export
func (h *ProfileHandler) ExportTheme(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	doc, err := h.themes.Export(name)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to export theme")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"name": name, "document": string(doc)})
}

// persistThemes writes the custom theme set back into the profile
func (h *ProfileHandler) persistThemes(ctx context.Context) {
	raw, err := h.themes.MarshalCustom()
	if err != nil {
		h.logger.Warn("custom_themes_encode_failed", zap.String("error", logger.SanitizeError(err)))
		return
	}
	profile := h.store.Profile()
	profile.CustomTheme = raw
	if _, msgs, err := h.store.UpdateProfile(ctx, profile); err != nil {
		h.logger.Warn("custom_themes_not_persisted",
			zap.Strings("details", msgs),
			zap.String("error", logger.SanitizeError(err)),
		)
	}
}

func respondThemeError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, theme.ErrReservedName):
		respondJSONError(w, http.StatusConflict, "Conflict", err.Error())
	default:
		respondValidationError(w, []string{err.Error()})
	}
	return true
}
