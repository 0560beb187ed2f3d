package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeReminder delivers a notification built from the mood history
	JobTypeReminder JobType = "reminder"
	// JobTypeMedicationAlarm delivers a medication alarm
	JobTypeMedicationAlarm JobType = "medication_alarm"
)

// DefaultMaxRetries is the number of delivery retries before a job is dead-lettered
const DefaultMaxRetries = 3

// Job is one scheduled notification
type Job struct {
	ID    uuid.UUID `json:"id"`
	Type  JobType   `json:"type"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
	// Recurrence is an HH:MM time of day. When set the job is rescheduled daily after delivery.
	Recurrence string            `json:"recurrence,omitempty"`
	NotBefore  *time.Time        `json:"not_before,omitempty"` // Earliest time to deliver (nil = immediate)
	NotAfter   *time.Time        `json:"not_after,omitempty"`  // Latest time to deliver (nil = no expiration)
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	RetryCount int               `json:"retry_count"`
	MaxRetries int               `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, title, body string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		Title:      title,
		Body:       body,
		Metadata:   make(map[string]string),
		CreatedAt:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
}

// ShouldProcess checks if the job is due and not expired at now
func (j *Job) ShouldProcess(now time.Time) bool {
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	return !j.IsExpired(now)
}

// IsExpired checks if the job has passed its NotAfter deadline
func (j *Job) IsExpired(now time.Time) bool {
	if j.NotAfter == nil {
		return false
	}
	return now.After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}

// Next returns a copy of the job for redelivery at notBefore, with a fresh ID
func (j *Job) Next(notBefore, createdAt time.Time) *Job {
	next := *j
	next.ID = uuid.New()
	next.NotBefore = &notBefore
	next.NotAfter = nil
	next.CreatedAt = createdAt
	next.RetryCount = 0
	if j.Metadata != nil {
		next.Metadata = make(map[string]string, len(j.Metadata))
		for k, v := range j.Metadata {
			next.Metadata[k] = v
		}
	}
	return &next
}

// Delay returns how long until the job is due at now. Zero means it is due.
func (j *Job) Delay(now time.Time) time.Duration {
	if j.NotBefore == nil {
		return 0
	}
	return max(0, j.NotBefore.Sub(now))
}
