package analytics

import (
	"math"
	"sort"

	"github.com/tonyarciria-byte/psycomed/internal/models"
)

// sortedByDate returns a copy of entries sorted ascending by date.
// Entries sharing a date keep their relative order.
func sortedByDate(entries []models.MoodEntry) []models.MoodEntry {
	out := make([]models.MoodEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func meanRating(entries []models.MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.Rating
	}
	return float64(sum) / float64(len(entries))
}

// Volatility is the population standard deviation of the ratings.
// Fewer than two entries have volatility 0.
func Volatility(entries []models.MoodEntry) float64 {
	if len(entries) < 2 {
		return 0
	}
	mean := meanRating(entries)
	var sq float64
	for _, e := range entries {
		d := float64(e.Rating) - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(entries)))
}

// ComputeBaseline returns the rounded mean rating and the rating range.
// It returns nil for an empty list.
func ComputeBaseline(entries []models.MoodEntry) *models.Baseline {
	if len(entries) == 0 {
		return nil
	}
	b := &models.Baseline{Min: entries[0].Rating, Max: entries[0].Rating}
	for _, e := range entries {
		b.Min = min(b.Min, e.Rating)
		b.Max = max(b.Max, e.Rating)
	}
	b.Average = meanRating(entries)
	b.BaselineMood = int(math.Round(b.Average))
	return b
}
