package analytics

import (
	"math"

	"github.com/tonyarciria-byte/psycomed/internal/models"
)

const (
	strongCorrelation   = 0.5
	moderateCorrelation = 0.3
)

// SleepCorrelations multiplies the mood change and sleep change between consecutive
// entries and averages the products. Pairs where either side has no sleep quality
// recorded are skipped.
func SleepCorrelations(entries []models.MoodEntry) models.SleepCorrelation {
	sorted := sortedByDate(entries)
	pairs := make([]models.SleepPair, 0, len(sorted))
	var sum float64
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if !prev.SleepQuality.Recorded() || !cur.SleepQuality.Recorded() {
			continue
		}
		moodChange := cur.Rating - prev.Rating
		sleepChange := int(cur.SleepQuality - prev.SleepQuality)
		corr := float64(moodChange * sleepChange)
		sum += corr
		pairs = append(pairs, models.SleepPair{
			Date:        cur.Date,
			MoodChange:  moodChange,
			SleepChange: sleepChange,
			Correlation: corr,
		})
	}

	out := models.SleepCorrelation{Correlations: pairs, Strength: models.StrengthWeak}
	if len(pairs) > 0 {
		out.AverageCorrelation = sum / float64(len(pairs))
	}
	switch abs := math.Abs(out.AverageCorrelation); {
	case abs > strongCorrelation:
		out.Strength = models.StrengthStrong
	case abs > moderateCorrelation:
		out.Strength = models.StrengthModerate
	}
	return out
}
