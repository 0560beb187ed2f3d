package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/tonyarciria-byte/psycomed/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

// Human-readable messages keyed by the struct field that failed.
// Each field reports a single message regardless of which tag failed.
var fieldMessages = map[string]string{
	"MoodEntry.Date":         "Invalid date format",
	"MoodEntry.Rating":       fmt.Sprintf("Rating must be between %d and %d", models.RatingMin, models.RatingMax),
	"MoodEntry.Tags":         fmt.Sprintf("Maximum %d tags allowed", models.MaxTags),
	"MoodEntry.SleepQuality": fmt.Sprintf("Sleep quality must be between %d and %d", models.SleepQualityMin, models.SleepQualityMax),

	"UserProfile.Name":         "Name must be at least 2 characters",
	"UserProfile.Age":          "Age must be between 13 and 120",
	"UserProfile.Country":      "Country is required",
	"UserProfile.ReminderTime": "Reminder time must be in HH:MM format",

	"Medication.Name":      "Medication name is required",
	"Medication.Dosage":    "Dosage is required",
	"Medication.AlarmTime": "Alarm time must be in HH:MM format",
	"Medication.AlarmDays": "Alarm days must be between 0 and 6",
}

func init() {
	Validate = validator.New()

	// These should never fail in normal operation
	if err := Validate.RegisterValidation("isodate", validateISODate); err != nil {
		panic(fmt.Sprintf("failed to register isodate validator: %v", err))
	}
	if err := Validate.RegisterValidation("sleep_quality", validateSleepQuality); err != nil {
		panic(fmt.Sprintf("failed to register sleep_quality validator: %v", err))
	}
	if err := Validate.RegisterValidation("trimmin", validateTrimmedMin); err != nil {
		panic(fmt.Sprintf("failed to register trimmin validator: %v", err))
	}
	if err := Validate.RegisterValidation("hhmm", validateClockTime); err != nil {
		panic(fmt.Sprintf("failed to register hhmm validator: %v", err))
	}
}

// validateISODate validates a YYYY-MM-DD calendar date
func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(models.DateLayout, fl.Field().String())
	return err == nil
}

// validateSleepQuality accepts 0 (not recorded) or a value in the 1-5 range
func validateSleepQuality(fl validator.FieldLevel) bool {
	v := fl.Field().Int()
	return v == 0 || (v >= models.SleepQualityMin && v <= models.SleepQualityMax)
}

// validateTrimmedMin checks the rune length of the trimmed value against the tag parameter
func validateTrimmedMin(fl validator.FieldLevel) bool {
	minLen, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len([]rune(strings.TrimSpace(fl.Field().String()))) >= minLen
}

// validateClockTime validates a 24-hour HH:MM time of day
func validateClockTime(fl validator.FieldLevel) bool {
	_, err := ParseClock(fl.Field().String())
	return err == nil
}

// ParseClock parses a 24-hour HH:MM string into hours and minutes past midnight
func ParseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", value)
	if err != nil || len(value) != len("15:04") {
		return 0, fmt.Errorf("invalid clock time %q: must be HH:MM", value)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// ValidateMoodEntry returns the violated-rule messages for an entry. An empty list means valid.
func ValidateMoodEntry(entry *models.MoodEntry) []string {
	if entry == nil {
		return []string{fieldMessages["MoodEntry.Date"], fieldMessages["MoodEntry.Rating"]}
	}
	return messagesFor(Validate.Struct(entry))
}

// ValidateUserProfile returns the violated-rule messages for a profile. An empty list means valid.
func ValidateUserProfile(profile *models.UserProfile) []string {
	if profile == nil {
		return []string{fieldMessages["UserProfile.Name"], fieldMessages["UserProfile.Age"], fieldMessages["UserProfile.Country"]}
	}
	return messagesFor(Validate.Struct(profile))
}

// ValidateMedication returns the violated-rule messages for a medication. An empty list means valid.
func ValidateMedication(med *models.Medication) []string {
	if med == nil {
		return []string{fieldMessages["Medication.Name"], fieldMessages["Medication.Dosage"]}
	}
	return messagesFor(Validate.Struct(med))
}

// messagesFor translates validator errors into the fixed message set, in field order
func messagesFor(err error) []string {
	if err == nil {
		return []string{}
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(fieldErrs))
	seen := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := fe.StructNamespace()
		if i := strings.IndexByte(key, '['); i >= 0 {
			key = key[:i]
		}
		msg, ok := fieldMessages[key]
		if !ok {
			msg = fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
		}
		if seen[msg] {
			continue
		}
		seen[msg] = true
		messages = append(messages, msg)
	}
	return messages
}
