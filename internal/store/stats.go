package store

import (
	"math"

	"github.com/tonyarciria-byte/psycomed/internal/models"
)

// Stats summarises the current entries
func (s *Store) Stats() models.EntryStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ComputeStats(s.entries)
}

// ComputeStats returns total, mean rating as a percentage of the scale, best and worst.
// An empty list yields all zeros.
func ComputeStats(entries []models.MoodEntry) models.EntryStats {
	if len(entries) == 0 {
		return models.EntryStats{}
	}
	sum := 0
	best, worst := entries[0].Rating, entries[0].Rating
	for _, e := range entries {
		sum += e.Rating
		best = max(best, e.Rating)
		worst = min(worst, e.Rating)
	}
	mean := float64(sum) / float64(len(entries))
	return models.EntryStats{
		Total:   len(entries),
		Average: int(math.Round(mean * 100 / models.RatingMax)),
		Best:    best,
		Worst:   worst,
	}
}
