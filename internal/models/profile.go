package models

import "encoding/json"

// Theme identifiers accepted by the profile
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)

// Languages known to the locale switch
const (
	LanguageSpanish = "Español"
	LanguageEnglish = "English"
)

// EmergencyContact is a person to reach in a crisis
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
}

// UserProfile holds identity and preference fields for the single local user
type UserProfile struct {
	Name      string `json:"name" validate:"trimmin=2"`
	Age       int    `json:"age" validate:"min=13,max=120"`
	Country   string `json:"country" validate:"trimmin=2"`
	Diagnosis string `json:"diagnosis"`
	Language  string `json:"language"`

	Notifications bool   `json:"notifications"`
	Reminders     bool   `json:"reminders"`
	ReminderTime  string `json:"reminderTime" validate:"omitempty,hhmm"`
	IsPremium     bool   `json:"isPremium"`

	Email             string             `json:"email"`
	Phone             string             `json:"phone"`
	EmergencyContacts []EmergencyContact `json:"emergencyContacts"`
	RecoveryEmail     string             `json:"recoveryEmail"`
	TwoFactorEnabled  bool               `json:"twoFactorEnabled"`
	BiometricEnabled  bool               `json:"biometricEnabled"`

	Theme             string          `json:"theme"`
	AutoTheme         bool            `json:"autoTheme"`
	CustomTheme       json.RawMessage `json:"customTheme"`
	FontSize          string          `json:"fontSize"`
	AnimationsEnabled bool            `json:"animationsEnabled"`
	HighContrast      bool            `json:"highContrast"`
}

// DefaultProfile returns the first-run profile
func DefaultProfile() UserProfile {
	return UserProfile{
		Name:              "Andrea",
		Age:               28,
		Country:           "Colombia",
		Diagnosis:         "Ansiedad Generalizada (Opcional)",
		Language:          LanguageSpanish,
		Notifications:     true,
		Reminders:         true,
		ReminderTime:      "09:00",
		EmergencyContacts: []EmergencyContact{},
		Theme:             ThemeLight,
		CustomTheme:       json.RawMessage("null"),
		FontSize:          "medium",
		AnimationsEnabled: true,
	}
}

// MergeProfile overlays a persisted, possibly partial, profile document onto the
// defaults. Fields missing from raw keep their default value.
func MergeProfile(raw []byte) (UserProfile, error) {
	profile := DefaultProfile()
	if len(raw) == 0 {
		return profile, nil
	}
	if err := json.Unmarshal(raw, &profile); err != nil {
		return DefaultProfile(), err
	}
	if profile.EmergencyContacts == nil {
		profile.EmergencyContacts = []EmergencyContact{}
	}
	if len(profile.CustomTheme) == 0 {
		profile.CustomTheme = json.RawMessage("null")
	}
	return profile, nil
}

// Locale maps the profile language to a UI locale code
func (p UserProfile) Locale() string {
	if p.Language == LanguageSpanish {
		return "es"
	}
	return "en"
}
