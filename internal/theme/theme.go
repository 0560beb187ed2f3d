// Package theme maps theme identifiers to colour palettes.
package theme

import (
	"time"

	"github.com/tonyarciria-byte/psycomed/internal/models"
)

// Built-in theme identifiers. ThemeLight, ThemeDark and ThemeAuto live in models.
const (
	Nature   = "nature"
	Ocean    = "ocean"
	Sunset   = "sunset"
	Lavender = "lavender"
)

// Night hours for the auto theme: from nightStart through nightEnd inclusive
const (
	nightStart = 18
	nightEnd   = 6
)

// Colors is the named colour set of a theme
type Colors struct {
	Primary       string `json:"primary"`
	Secondary     string `json:"secondary"`
	Background    string `json:"background"`
	Surface       string `json:"surface"`
	Text          string `json:"text"`
	TextSecondary string `json:"textSecondary"`
	Border        string `json:"border"`
	Accent        string `json:"accent"`
	Error         string `json:"error"`
	Warning       string `json:"warning"`
	Success       string `json:"success"`
}

// Gradients are the CSS gradient utility classes of a theme
type Gradients struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Surface   string `json:"surface"`
}

// Theme is a display name plus its palette
type Theme struct {
	Name      string    `json:"name"`
	Colors    Colors    `json:"colors"`
	Gradients Gradients `json:"gradients"`
}

var builtin = map[string]Theme{
	models.ThemeLight: {
		Name: "Claro",
		Colors: Colors{
			Primary: "#3B82F6", Secondary: "#8B5CF6", Background: "#FFFFFF", Surface: "#F8FAFC",
			Text: "#1F2937", TextSecondary: "#6B7280", Border: "#E5E7EB", Accent: "#10B981",
			Error: "#EF4444", Warning: "#F59E0B", Success: "#10B981",
		},
		Gradients: Gradients{Primary: "from-blue-500 to-purple-600", Secondary: "from-green-500 to-blue-500", Surface: "from-white to-gray-50"},
	},
	models.ThemeDark: {
		Name: "Oscuro",
		Colors: Colors{
			Primary: "#60A5FA", Secondary: "#A78BFA", Background: "#111827", Surface: "#1F2937",
			Text: "#F9FAFB", TextSecondary: "#9CA3AF", Border: "#374151", Accent: "#34D399",
			Error: "#F87171", Warning: "#FBBF24", Success: "#34D399",
		},
		Gradients: Gradients{Primary: "from-blue-600 to-purple-700", Secondary: "from-green-600 to-blue-600", Surface: "from-gray-900 to-gray-800"},
	},
	Nature: {
		Name: "Naturaleza",
		Colors: Colors{
			Primary: "#059669", Secondary: "#0D9488", Background: "#FEFEFE", Surface: "#F0FDF4",
			Text: "#064E3B", TextSecondary: "#065F46", Border: "#A7F3D0", Accent: "#16A34A",
			Error: "#DC2626", Warning: "#D97706", Success: "#16A34A",
		},
		Gradients: Gradients{Primary: "from-emerald-600 to-teal-600", Secondary: "from-green-500 to-emerald-500", Surface: "from-green-50 to-emerald-100"},
	},
	Ocean: {
		Name: "Océano",
		Colors: Colors{
			Primary: "#0369A1", Secondary: "#0284C7", Background: "#FEFEFE", Surface: "#EFF6FF",
			Text: "#0C4A6E", TextSecondary: "#075985", Border: "#93C5FD", Accent: "#0284C7",
			Error: "#DC2626", Warning: "#D97706", Success: "#059669",
		},
		Gradients: Gradients{Primary: "from-blue-700 to-blue-500", Secondary: "from-cyan-500 to-blue-500", Surface: "from-blue-50 to-cyan-50"},
	},
	Sunset: {
		Name: "Atardecer",
		Colors: Colors{
			Primary: "#DC2626", Secondary: "#EA580C", Background: "#FEFEFE", Surface: "#FEF2F2",
			Text: "#7F1D1D", TextSecondary: "#9A3412", Border: "#FECACA", Accent: "#F97316",
			Error: "#DC2626", Warning: "#EA580C", Success: "#059669",
		},
		Gradients: Gradients{Primary: "from-red-600 to-orange-600", Secondary: "from-orange-500 to-red-500", Surface: "from-red-50 to-orange-50"},
	},
	Lavender: {
		Name: "Lavanda",
		Colors: Colors{
			Primary: "#7C3AED", Secondary: "#A855F7", Background: "#FEFEFE", Surface: "#F3E8FF",
			Text: "#581C87", TextSecondary: "#7C2D92", Border: "#D8B4FE", Accent: "#8B5CF6",
			Error: "#DC2626", Warning: "#D97706", Success: "#059669",
		},
		Gradients: Gradients{Primary: "from-violet-600 to-purple-600", Secondary: "from-purple-500 to-violet-500", Surface: "from-purple-50 to-violet-50"},
	},
}

// darkBackgrounds are backgrounds that mark a theme as dark
var darkBackgrounds = map[string]bool{"#111827": true, "#1F2937": true}

// Palette returns the built-in theme for id. Unknown ids return the light
// theme and false.
func Palette(id string) (Theme, bool) {
	t, ok := builtin[id]
	if !ok {
		return builtin[models.ThemeLight], false
	}
	return t, true
}

// BuiltinIDs lists the built-in theme identifiers in display order
func BuiltinIDs() []string {
	return []string{models.ThemeLight, models.ThemeDark, Nature, Ocean, Sunset, Lavender}
}

// IsNight reports whether now falls in the hours the auto theme shows dark
func IsNight(now time.Time) bool {
	h := now.Hour()
	return h >= nightStart || h <= nightEnd
}

// Resolved is the concrete theme to render
type Resolved struct {
	// Selected is the identifier stored in the profile, possibly "auto"
	Selected string `json:"selected"`
	// ID is the identifier of the theme actually shown
	ID    string `json:"id"`
	Dark  bool   `json:"dark"`
	Theme Theme  `json:"theme"`
}

// Resolve picks the theme to render for a profile at now using the built-in themes only
func Resolve(profile models.UserProfile, now time.Time) Resolved {
	return NewRegistry().Resolve(profile, now)
}

// resolveID applies the auto theme and the profile's automatic switch
func resolveID(selected string, autoSwitch bool, now time.Time) string {
	if selected == "" {
		selected = models.ThemeLight
	}
	night := IsNight(now)
	switch {
	case selected == models.ThemeAuto && night, autoSwitch && night:
		return models.ThemeDark
	case selected == models.ThemeAuto, autoSwitch && selected == models.ThemeDark:
		return models.ThemeLight
	default:
		return selected
	}
}
