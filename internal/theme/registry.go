package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/tonyarciria-byte/psycomed/internal/models"
)

var (
	// ErrInvalidTheme is returned when a custom theme lacks a required colour
	ErrInvalidTheme = errors.New("invalid theme configuration")
	// ErrReservedName is returned when a custom theme would shadow a built-in one
	ErrReservedName = errors.New("theme name is reserved")
)

// Registry holds the built-in themes plus user-defined ones. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	custom map[string]Theme
}

// NewRegistry creates a registry with no custom themes
func NewRegistry() *Registry {
	return &Registry{custom: make(map[string]Theme)}
}

// Get returns the custom or built-in theme for id, falling back to light
func (r *Registry) Get(id string) (Theme, bool) {
	r.mu.RLock()
	t, ok := r.custom[id]
	r.mu.RUnlock()
	if ok {
		return t, true
	}
	return Palette(id)
}

// All returns every theme keyed by identifier
func (r *Registry) All() map[string]Theme {
	out := maps.Clone(builtin)
	r.mu.RLock()
	defer r.mu.RUnlock()
	maps.Copy(out, r.custom)
	return out
}

// IsDark reports whether id renders dark at now
func (r *Registry) IsDark(id string, now time.Time) bool {
	if id == models.ThemeAuto {
		return IsNight(now)
	}
	if id == models.ThemeDark {
		return true
	}
	t, ok := r.Get(id)
	return ok && darkBackgrounds[t.Colors.Background]
}

// Resolve picks the theme to render for a profile at now
func (r *Registry) Resolve(profile models.UserProfile, now time.Time) Resolved {
	id := resolveID(profile.Theme, profile.AutoTheme, now)
	t, ok := r.Get(id)
	if !ok {
		id = models.ThemeLight
	}
	return Resolved{
		Selected: profile.Theme,
		ID:       id,
		Dark:     r.IsDark(id, now),
		Theme:    t,
	}
}

// CreateCustom stores a user theme under name. Primary, background and text
// colours are required; every other field defaults to the light theme.
func (r *Registry) CreateCustom(name string, t Theme) (Theme, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Theme{}, fmt.Errorf("%w: name is required", ErrInvalidTheme)
	}
	if _, ok := builtin[name]; ok || name == models.ThemeAuto {
		return Theme{}, fmt.Errorf("%w: %s", ErrReservedName, name)
	}
	if t.Colors.Primary == "" || t.Colors.Background == "" || t.Colors.Text == "" {
		return Theme{}, fmt.Errorf("%w: primary, background and text colours are required", ErrInvalidTheme)
	}

	merged := withDefaults(t)
	if merged.Name == "" {
		merged.Name = name
	}

	r.mu.Lock()
	r.custom[name] = merged
	r.mu.Unlock()
	return merged, nil
}

// DeleteCustom removes a user theme. It reports whether the theme existed.
func (r *Registry) DeleteCustom(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.custom[name]; !ok {
		return false
	}
	delete(r.custom, name)
	return true
}

// Export returns the theme for id as indented JSON
func (r *Registry) Export(id string) ([]byte, error) {
	t, _ := r.Get(id)
	return json.MarshalIndent(t, "", "  ")
}

// Import stores a theme exported by Export, keyed by its display name
func (r *Registry) Import(data []byte) (string, Theme, error) {
	var t Theme
	if err := json.Unmarshal(data, &t); err != nil {
		return "", Theme{}, fmt.Errorf("%w: %w", ErrInvalidTheme, err)
	}
	name := strings.TrimSpace(t.Name)
	created, err := r.CreateCustom(name, t)
	if err != nil {
		return "", Theme{}, err
	}
	return name, created, nil
}

// LoadCustom replaces the custom themes with a document produced by MarshalCustom.
// A null or empty document clears them.
func (r *Registry) LoadCustom(raw json.RawMessage) error {
	custom := map[string]Theme{}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &custom); err != nil {
			return fmt.Errorf("failed to decode custom themes: %w", err)
		}
	}
	for name, t := range custom {
		custom[name] = withDefaults(t)
	}
	r.mu.Lock()
	r.custom = custom
	r.mu.Unlock()
	return nil
}

// MarshalCustom encodes the custom themes for storage in the profile
func (r *Registry) MarshalCustom() (json.RawMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.custom) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.Marshal(r.custom)
}

// withDefaults fills empty fields from the light theme
func withDefaults(t Theme) Theme {
	base := builtin[models.ThemeLight]
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	c, g := &t.Colors, &t.Gradients
	fill(&c.Primary, base.Colors.Primary)
	fill(&c.Secondary, base.Colors.Secondary)
	fill(&c.Background, base.Colors.Background)
	fill(&c.Surface, base.Colors.Surface)
	fill(&c.Text, base.Colors.Text)
	fill(&c.TextSecondary, base.Colors.TextSecondary)
	fill(&c.Border, base.Colors.Border)
	fill(&c.Accent, base.Colors.Accent)
	fill(&c.Error, base.Colors.Error)
	fill(&c.Warning, base.Colors.Warning)
	fill(&c.Success, base.Colors.Success)
	fill(&g.Primary, base.Gradients.Primary)
	fill(&g.Secondary, base.Gradients.Secondary)
	fill(&g.Surface, base.Gradients.Surface)
	return t
}
