package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/tonyarciria-byte/psycomed/internal/models"
	"github.com/tonyarciria-byte/psycomed/internal/storage"
	"github.com/tonyarciria-byte/psycomed/internal/validation"
)

const alarmGracePeriod = 15 * time.Minute

var (
	// ErrAlreadyLogged is returned when today's intake already has both moods recorded
	ErrAlreadyLogged = errors.New("medication already logged today")
	// ErrInvalidMood is returned for an intake mood outside the known set
	ErrInvalidMood = errors.New("invalid medication mood")
)

// Medications returns a copy of the medication list
func (s *Store) Medications() []models.Medication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Medication, len(s.medications))
	for i, m := range s.medications {
		out[i] = cloneMedication(m)
	}
	return out
}

// MedicationLog returns a copy of the intake log in insertion order
func (s *Store) MedicationLog() []models.MedicationLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.medicationLog)
}

// AddMedication validates med, assigns it an id and appends it
func (s *Store) AddMedication(ctx context.Context, med models.Medication, now time.Time) (models.Medication, []string, error) {
	sanitizeMedication(&med)
	if msgs := validation.ValidateMedication(&med); len(msgs) > 0 {
		return models.Medication{}, msgs, ErrValidation
	}
	med.ID = uuid.New()
	med.CreatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.medications = append(s.medications, med)
	return cloneMedication(med), nil, s.persist(ctx, storage.KeyMedications, s.medications)
}

// UpdateMedication replaces the editable fields of an existing medication
func (s *Store) UpdateMedication(ctx context.Context, id uuid.UUID, med models.Medication) (models.Medication, []string, error) {
	sanitizeMedication(&med)
	if msgs := validation.ValidateMedication(&med); len(msgs) > 0 {
		return models.Medication{}, msgs, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.medicationIndex(id)
	if idx < 0 {
		return models.Medication{}, nil, fmt.Errorf("medication %s: %w", id, ErrNotFound)
	}
	med.ID = id
	med.CreatedAt = s.medications[idx].CreatedAt
	s.medications[idx] = med
	return cloneMedication(med), nil, s.persist(ctx, storage.KeyMedications, s.medications)
}

// DeleteMedication removes a medication. Its intake history is kept.
func (s *Store) DeleteMedication(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.medicationIndex(id)
	if idx < 0 {
		return false, nil
	}
	s.medications = slices.Delete(s.medications, idx, idx+1)
	return true, s.persist(ctx, storage.KeyMedications, s.medications)
}

// LogMedication records an intake mood. The first log of the day stores the mood as
// the before-mood; the second completes the intake with the after-mood.
func (s *Store) LogMedication(ctx context.Context, id uuid.UUID, mood, notes string, now time.Time) (models.MedicationLogEntry, error) {
	if !models.ValidMedicationMood(mood) {
		return models.MedicationLogEntry{}, fmt.Errorf("%w: %q", ErrInvalidMood, mood)
	}
	notes = validation.SanitizeInput(notes)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.medicationIndex(id) < 0 {
		return models.MedicationLogEntry{}, fmt.Errorf("medication %s: %w", id, ErrNotFound)
	}

	if i := s.todayLogIndex(id, now); i >= 0 {
		entry := &s.medicationLog[i]
		if entry.Completed() {
			return *entry, ErrAlreadyLogged
		}
		entry.MoodAfter = mood
		if notes != "" {
			entry.Notes = notes
		}
		return *entry, s.persist(ctx, storage.KeyMedicationLog, s.medicationLog)
	}

	entry := models.MedicationLogEntry{
		ID:           uuid.New(),
		MedicationID: id,
		Timestamp:    now,
		MoodBefore:   mood,
		Notes:        notes,
		FollowUpAt:   now.Add(models.MedicationFollowUp),
	}
	s.medicationLog = append(s.medicationLog, entry)
	return entry, s.persist(ctx, storage.KeyMedicationLog, s.medicationLog)
}

// DeleteLogEntry removes one intake record
func (s *Store) DeleteLogEntry(ctx context.Context, logID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.IndexFunc(s.medicationLog, func(e models.MedicationLogEntry) bool { return e.ID == logID })
	if idx < 0 {
		return false, nil
	}
	s.medicationLog = slices.Delete(s.medicationLog, idx, idx+1)
	return true, s.persist(ctx, storage.KeyMedicationLog, s.medicationLog)
}

// MedicationStats counts medications completed today and those still pending.
// A medication is pending when it is not completed and either has an open intake
// today or an alarm for today that is not more than 15 minutes past.
func (s *Store) MedicationStats(now time.Time) models.MedicationStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.MedicationStats{TotalMedications: len(s.medications)}
	for _, med := range s.medications {
		i := s.todayLogIndex(med.ID, now)
		switch {
		case i >= 0 && s.medicationLog[i].Completed():
			stats.CompletedToday++
		case i >= 0 || alarmActive(med, now):
			stats.PendingToday++
		}
	}
	return stats
}

func alarmActive(med models.Medication, now time.Time) bool {
	if !med.AlarmEnabled || med.AlarmTime == "" {
		return false
	}
	if !slices.Contains(med.AlarmDays, int(now.Weekday())) {
		return false
	}
	offset, err := validation.ParseClock(med.AlarmTime)
	if err != nil {
		return false
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !now.After(midnight.Add(offset + alarmGracePeriod))
}

// todayLogIndex returns the last log entry for id on now's calendar day. Callers must hold the lock.
func (s *Store) todayLogIndex(id uuid.UUID, now time.Time) int {
	y, m, d := now.Date()
	for i := len(s.medicationLog) - 1; i >= 0; i-- {
		e := s.medicationLog[i]
		if e.MedicationID != id {
			continue
		}
		ey, em, ed := e.Timestamp.In(now.Location()).Date()
		if ey == y && em == m && ed == d {
			return i
		}
	}
	return -1
}

func (s *Store) medicationIndex(id uuid.UUID) int {
	return slices.IndexFunc(s.medications, func(m models.Medication) bool { return m.ID == id })
}

func sanitizeMedication(med *models.Medication) {
	med.Name = validation.SanitizeText(validation.SanitizeInput(med.Name))
	med.Dosage = validation.SanitizeText(validation.SanitizeInput(med.Dosage))
	med.Frequency = validation.SanitizeText(validation.SanitizeInput(med.Frequency))
	med.Prescription = validation.SanitizeText(validation.SanitizeInput(med.Prescription))
	med.Notes = validation.SanitizeInput(med.Notes)
	if med.AlarmDays == nil {
		med.AlarmDays = []int{}
	}
}

func cloneMedication(m models.Medication) models.Medication {
	m.AlarmDays = slices.Clone(m.AlarmDays)
	return m
}
