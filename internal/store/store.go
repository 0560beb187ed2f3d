// Package store holds the entry history, user profile and medication log for the
// single local user and persists them through encrypted storage.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/models"
	"github.com/tonyarciria-byte/psycomed/internal/storage"
	"github.com/tonyarciria-byte/psycomed/internal/validation"
	"go.uber.org/zap"
)

var (
	// ErrValidation is returned alongside the violated-rule messages when a candidate is rejected
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when the addressed entry or medication does not exist
	ErrNotFound = errors.New("not found")
	// ErrLoadFallback wraps the causes that forced Load to fall back to defaults
	ErrLoadFallback = errors.New("stored state unreadable, using defaults")
)

// Store is the in-memory authority for user state. Every mutation is persisted
// immediately; a failed write is logged and returned but the in-memory change stands.
type Store struct {
	mu      sync.RWMutex
	storage *storage.SecureStorage
	logger  *zap.Logger

	entries       []models.MoodEntry
	profile       models.UserProfile
	medications   []models.Medication
	medicationLog []models.MedicationLogEntry
}

// New returns a store with default state. Call Load to read persisted state.
func New(secure *storage.SecureStorage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		storage:       secure,
		logger:        log,
		entries:       []models.MoodEntry{},
		profile:       models.DefaultProfile(),
		medications:   []models.Medication{},
		medicationLog: []models.MedicationLogEntry{},
	}
}

// UpsertEntry merges candidate into the entry for its date, or prepends a new entry.
// Only fields present in candidate overwrite stored values. On validation failure
// nothing changes and the messages are returned with ErrValidation.
func (s *Store) UpsertEntry(ctx context.Context, candidate models.EntryInput) ([]models.MoodEntry, []string, error) {
	if candidate.Note != nil {
		note := validation.SanitizeInput(*candidate.Note)
		candidate.Note = &note
	}
	if candidate.Title != nil {
		title := validation.SanitizeText(validation.SanitizeInput(*candidate.Title))
		candidate.Title = &title
	}
	if candidate.Tags != nil {
		tags := normalizeTags(*candidate.Tags)
		candidate.Tags = &tags
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(candidate.Date)
	var base models.MoodEntry
	if idx >= 0 {
		base = s.entries[idx]
	}
	merged := candidate.ApplyTo(base)
	if msgs := validation.ValidateMoodEntry(&merged); len(msgs) > 0 {
		return nil, msgs, ErrValidation
	}

	if idx >= 0 {
		s.entries[idx] = merged
	} else {
		s.entries = append([]models.MoodEntry{merged}, s.entries...)
	}

	err := s.persist(ctx, storage.KeyMoodEntries, s.entries)
	return cloneEntries(s.entries), nil, err
}

// UpdateNote replaces the title and note of an existing entry.
// A blank title is stored as models.UntitledLabel.
func (s *Store) UpdateNote(ctx context.Context, date, title, note string) (models.MoodEntry, error) {
	title = validation.SanitizeText(validation.SanitizeInput(title))
	if title == "" {
		title = models.UntitledLabel
	}
	note = validation.SanitizeInput(note)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(date)
	if idx < 0 {
		return models.MoodEntry{}, fmt.Errorf("entry %s: %w", date, ErrNotFound)
	}
	s.entries[idx].Title = title
	s.entries[idx].Note = note
	updated := s.entries[idx].Clone()
	return updated, s.persist(ctx, storage.KeyMoodEntries, s.entries)
}

// DeleteEntry removes the entry for date. The bool result reports whether one existed.
func (s *Store) DeleteEntry(ctx context.Context, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(date)
	if idx < 0 {
		return false, nil
	}
	s.entries = append(s.entries[:idx:idx], s.entries[idx+1:]...)
	return true, s.persist(ctx, storage.KeyMoodEntries, s.entries)
}

// ClearAll removes every entry
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = []models.MoodEntry{}
	return s.persist(ctx, storage.KeyMoodEntries, s.entries)
}

// Entries returns a copy of every entry in store order (most recently added first)
func (s *Store) Entries() []models.MoodEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries)
}

// Entry returns the entry for date
func (s *Store) Entry(date string) (models.MoodEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(date)
	if idx < 0 {
		return models.MoodEntry{}, false
	}
	return s.entries[idx].Clone(), true
}

// EntriesInRange returns entries dated within [from, to], sorted descending by date.
// An empty bound is open.
func (s *Store) EntriesInRange(from, to string) []models.MoodEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MoodEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if from != "" && e.Date < from {
			continue
		}
		if to != "" && e.Date > to {
			continue
		}
		out = append(out, e.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// Search returns entries whose title, note or tags contain query, case-insensitively,
// sorted descending by date. An empty query matches everything.
func (s *Store) Search(query string) []models.MoodEntry {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MoodEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if q == "" || matches(e, q) {
			out = append(out, e.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func matches(e models.MoodEntry, q string) bool {
	if strings.Contains(strings.ToLower(e.Title), q) || strings.Contains(strings.ToLower(e.Note), q) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func (s *Store) indexOf(date string) int {
	for i := range s.entries {
		if s.entries[i].Date == date {
			return i
		}
	}
	return -1
}

// persist writes one key. Callers must hold the write lock.
func (s *Store) persist(ctx context.Context, key string, v any) error {
	if s.storage == nil {
		return nil
	}
	if err := s.storage.SetItem(ctx, key, v); err != nil {
		s.logger.Warn("state_persist_failed",
			zap.String("key", key),
			zap.String("error", logger.SanitizeError(err)),
		)
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// normalizeTags trims tags and drops blanks and duplicates, keeping first occurrence order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = validation.SanitizeText(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func cloneEntries(in []models.MoodEntry) []models.MoodEntry {
	out := make([]models.MoodEntry, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
