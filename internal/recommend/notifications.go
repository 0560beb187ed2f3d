package recommend

import (
	"time"

	"github.com/tonyarciria-byte/psycomed/internal/models"
)

// Notification types
const (
	NotificationReminder = "reminder"
	NotificationCare     = "care"
	NotificationSleep    = "sleep"
)

// Notification delivery hints
const (
	TimeNow     = "now"
	TimeEvening = "evening"
)

const (
	careStreak   = 3
	poorSleepMax = 2
)

// Notification is a message the scheduler may deliver. Time is either an HH:MM
// clock time or one of the delivery hints.
type Notification struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

// SmartNotifications derives the notifications that apply on the day of now
func (e *Engine) SmartNotifications(entries []models.MoodEntry, profile models.UserProfile, now time.Time) []Notification {
	texts := e.catalog.Notifications
	today := now.Format(models.DateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(models.DateLayout)

	notifications := []Notification{}

	var hasToday bool
	var yesterdayEntry *models.MoodEntry
	for i := range entries {
		switch entries[i].Date {
		case today:
			hasToday = true
		case yesterday:
			yesterdayEntry = &entries[i]
		}
	}

	if !hasToday && profile.Notifications {
		notifications = append(notifications, Notification{
			Type:    NotificationReminder,
			Title:   texts.Reminder.Title,
			Message: texts.Reminder.Message,
			Time:    profile.ReminderTime,
		})
	}

	sorted := byDate(entries)
	if len(sorted) >= careStreak && lowStreak(sorted[len(sorted)-careStreak:]) {
		notifications = append(notifications, Notification{
			Type:    NotificationCare,
			Title:   texts.Care.Title,
			Message: texts.Care.Message,
			Time:    TimeNow,
		})
	}

	if yesterdayEntry != nil && yesterdayEntry.SleepQuality.Recorded() && yesterdayEntry.SleepQuality <= poorSleepMax {
		notifications = append(notifications, Notification{
			Type:    NotificationSleep,
			Title:   texts.Sleep.Title,
			Message: texts.Sleep.Message,
			Time:    TimeEvening,
		})
	}

	return notifications
}

func lowStreak(recent []models.MoodEntry) bool {
	difficult := models.FromReferenceScale(7)
	for _, e := range recent {
		if e.Rating > difficult {
			return false
		}
	}
	return true
}
