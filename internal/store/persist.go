package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/models"
	"github.com/tonyarciria-byte/psycomed/internal/storage"
	"github.com/tonyarciria-byte/psycomed/internal/validation"
	"go.uber.org/zap"
)

// Load replaces in-memory state with persisted state. Sections that are missing
// start from defaults. Sections that cannot be decrypted or parsed also start from
// defaults and the causes are returned joined under ErrLoadFallback; the store stays usable.
func (s *Store) Load(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}

	var causes []error

	var rawProfile json.RawMessage
	profile := models.DefaultProfile()
	if found, err := s.storage.GetItem(ctx, storage.KeyUserProfile, &rawProfile); err != nil {
		causes = append(causes, err)
	} else if found {
		merged, err := models.MergeProfile(rawProfile)
		if err != nil {
			causes = append(causes, fmt.Errorf("parse %s: %w", storage.KeyUserProfile, err))
		} else {
			profile = merged
		}
	}

	var stored []models.MoodEntry
	if _, err := s.storage.GetItem(ctx, storage.KeyMoodEntries, &stored); err != nil {
		causes = append(causes, err)
		stored = nil
	}
	entries := s.admitEntries(stored)

	medications := []models.Medication{}
	if _, err := s.storage.GetItem(ctx, storage.KeyMedications, &medications); err != nil {
		causes = append(causes, err)
		medications = []models.Medication{}
	}
	if medications == nil {
		medications = []models.Medication{}
	}

	medicationLog := []models.MedicationLogEntry{}
	if _, err := s.storage.GetItem(ctx, storage.KeyMedicationLog, &medicationLog); err != nil {
		causes = append(causes, err)
		medicationLog = []models.MedicationLogEntry{}
	}
	if medicationLog == nil {
		medicationLog = []models.MedicationLogEntry{}
	}

	s.mu.Lock()
	s.profile = profile
	s.entries = entries
	s.medications = medications
	s.medicationLog = medicationLog
	s.mu.Unlock()

	s.logger.Info("state_loaded",
		zap.Int("entries", len(entries)),
		zap.Int("medications", len(medications)),
		zap.Int("fallbacks", len(causes)),
	)

	if len(causes) > 0 {
		err := fmt.Errorf("%w: %w", ErrLoadFallback, errors.Join(causes...))
		s.logger.Warn("state_load_fallback", zap.String("error", logger.SanitizeError(err)))
		return err
	}
	return nil
}

// admitEntries drops stored entries that no longer validate or repeat an earlier date
func (s *Store) admitEntries(stored []models.MoodEntry) []models.MoodEntry {
	out := make([]models.MoodEntry, 0, len(stored))
	seen := make(map[string]bool, len(stored))
	for _, e := range stored {
		if e.Tags == nil {
			e.Tags = []string{}
		}
		if msgs := validation.ValidateMoodEntry(&e); len(msgs) > 0 {
			s.logger.Warn("stored_entry_rejected",
				zap.String("date", logger.SanitizeString(e.Date, 32)),
				zap.Strings("violations", msgs),
			)
			continue
		}
		if seen[e.Date] {
			continue
		}
		seen[e.Date] = true
		out = append(out, e)
	}
	return out
}

// Save writes every section. All sections are attempted; failures are joined.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return errors.Join(
		s.persist(ctx, storage.KeyUserProfile, s.profile),
		s.persist(ctx, storage.KeyMoodEntries, s.entries),
		s.persist(ctx, storage.KeyMedications, s.medications),
		s.persist(ctx, storage.KeyMedicationLog, s.medicationLog),
	)
}
