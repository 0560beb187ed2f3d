package models

import (
	"time"

	"github.com/google/uuid"
)

// Medication is a prescribed medication with an optional weekly alarm
type Medication struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name" validate:"required"`
	Dosage       string    `json:"dosage" validate:"required"`
	Frequency    string    `json:"frequency"`
	Prescription string    `json:"prescription"`
	Notes        string    `json:"notes"`
	AlarmEnabled bool      `json:"alarmEnabled"`
	AlarmTime    string    `json:"alarmTime" validate:"omitempty,hhmm"`
	// AlarmDays holds weekdays, 0=Sunday..6=Saturday
	AlarmDays []int     `json:"alarmDays" validate:"dive,min=0,max=6"`
	CreatedAt time.Time `json:"createdAt"`
}

// Moods that can be attached to a medication intake
const (
	MedicationMoodHappy   = "happy"
	MedicationMoodSad     = "sad"
	MedicationMoodNeutral = "neutral"
	MedicationMoodAnxious = "anxious"
)

// MedicationFollowUp is how long after an intake the after-mood is requested
const MedicationFollowUp = 4 * time.Hour

// ValidMedicationMood reports whether mood is one of the known intake moods
func ValidMedicationMood(mood string) bool {
	switch mood {
	case MedicationMoodHappy, MedicationMoodSad, MedicationMoodNeutral, MedicationMoodAnxious:
		return true
	default:
		return false
	}
}

// MedicationLogEntry records one intake and how the user felt around it
type MedicationLogEntry struct {
	ID           uuid.UUID `json:"id"`
	MedicationID uuid.UUID `json:"medicationId"`
	Timestamp    time.Time `json:"timestamp"`
	MoodBefore   string    `json:"moodBefore,omitempty"`
	MoodAfter    string    `json:"moodAfter,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	FollowUpAt   time.Time `json:"followUpTime"`
}

// Completed reports whether both sides of the intake were logged
func (l MedicationLogEntry) Completed() bool {
	return l.MoodAfter != ""
}

// MedicationStats are the daily counters for the medication screen
type MedicationStats struct {
	TotalMedications int `json:"totalMedications"`
	PendingToday     int `json:"pendingToday"`
	CompletedToday   int `json:"completedToday"`
}
