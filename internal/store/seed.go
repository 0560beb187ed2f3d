package store

import (
	"context"
	"errors"

	"github.com/tonyarciria-byte/psycomed/internal/models"
)

// SeedEntries returns the sample week shown to first-time users, oldest first
func SeedEntries() []models.MoodEntry {
	return []models.MoodEntry{
		{Date: "2024-07-15", Rating: 6, SleepQuality: models.SleepQualityMax, Tags: []string{"Calma"}, Note: "Día normal."},
		{Date: "2024-07-16", Rating: 8, SleepQuality: models.SleepQualityMax, Tags: []string{"Felicidad"}, Note: "Muy productivo."},
		{Date: "2024-07-17", Rating: 3, SleepQuality: models.SleepQualityMin, Tags: []string{"Ansiedad"}, Note: "Día difícil."},
		{Date: "2024-07-18", Rating: 5, SleepQuality: models.SleepQualityMin, Tags: []string{"Cansancio"}, Note: "Mejor que ayer."},
		{Date: "2024-07-19", Rating: 9, SleepQuality: models.SleepQualityMax, Tags: []string{"Felicidad"}, Note: "Excelente día."},
		{Date: "2024-07-20", Rating: 7, SleepQuality: models.SleepQualityMax, Tags: []string{"Calma"}, Note: "Día tranquilo."},
	}
}

// Seed upserts the sample entries. Existing entries for the same dates are merged.
func (s *Store) Seed(ctx context.Context) ([]models.MoodEntry, error) {
	var persistErr error
	for _, e := range SeedEntries() {
		_, msgs, err := s.UpsertEntry(ctx, InputFromEntry(e))
		if len(msgs) > 0 {
			return nil, err
		}
		if err != nil {
			persistErr = errors.Join(persistErr, err)
		}
	}
	return s.Entries(), persistErr
}

// InputFromEntry converts a full entry into a submission that sets every field
func InputFromEntry(e models.MoodEntry) models.EntryInput {
	e = e.Clone()
	in := models.EntryInput{
		Date:         e.Date,
		Rating:       &e.Rating,
		SleepQuality: &e.SleepQuality,
		Tags:         &e.Tags,
		Note:         &e.Note,
		Title:        &e.Title,
		RecordedAt:   e.RecordedAt,
	}
	if e.Tags == nil {
		empty := []string{}
		in.Tags = &empty
	}
	return in
}
