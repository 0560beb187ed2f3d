package analytics

import (
	"time"

	"github.com/tonyarciria-byte/psycomed/internal/models"
)

const (
	minImprovementEntries = 7
	improvementWindow     = 14
	improvementThreshold  = 0.5

	highConsistencyVolatility     = 1
	moderateConsistencyVolatility = 2
)

// Improvement compares the mean rating of the latest 14 entries dated on or before
// now with the 14 before them. With fewer than 7 such entries only InsufficientData
// is set. When there is no older window the improvement is 0. A zero now includes
// every entry.
func Improvement(entries []models.MoodEntry, now time.Time) models.ImprovementMetrics {
	sorted := sortedByDate(entries)
	if !now.IsZero() {
		cutoff := now.Format(models.DateLayout)
		end := len(sorted)
		for end > 0 && sorted[end-1].Date > cutoff {
			end--
		}
		sorted = sorted[:end]
	}
	if len(sorted) < minImprovementEntries {
		return models.ImprovementMetrics{InsufficientData: true}
	}

	recentStart := max(0, len(sorted)-improvementWindow)
	olderStart := max(0, len(sorted)-2*improvementWindow)
	recent := sorted[recentStart:]
	older := sorted[olderStart:recentStart]

	recentAvg := meanRating(recent)
	olderAvg := recentAvg
	if len(older) > 0 {
		olderAvg = meanRating(older)
	}
	improvement := recentAvg - olderAvg

	trend := models.TrendStable
	switch {
	case improvement > improvementThreshold:
		trend = models.TrendImproving
	case improvement < -improvementThreshold:
		trend = models.TrendDeclining
	}

	volatility := Volatility(recent)
	consistency := models.ConsistencyLow
	switch {
	case volatility < highConsistencyVolatility:
		consistency = models.ConsistencyHigh
	case volatility < moderateConsistencyVolatility:
		consistency = models.ConsistencyModerate
	}

	streaks := Streaks(sorted)
	return models.ImprovementMetrics{
		RecentAverage:  recentAvg,
		OlderAverage:   olderAvg,
		Improvement:    improvement,
		Trend:          trend,
		Consistency:    consistency,
		Volatility:     volatility,
		StreakAnalysis: &streaks,
	}
}

// Streaks measures runs of consecutive improving or declining transitions.
// A transition with no change ends the current run.
func Streaks(entries []models.MoodEntry) models.StreakAnalysis {
	sorted := sortedByDate(entries)
	out := models.StreakAnalysis{StreakType: models.StreakNeutral, BestStreakType: models.StreakNeutral}
	for i := 1; i < len(sorted); i++ {
		var direction string
		switch {
		case sorted[i].Rating > sorted[i-1].Rating:
			direction = models.StreakImproving
		case sorted[i].Rating < sorted[i-1].Rating:
			direction = models.StreakDeclining
		default:
			out.CurrentStreak = 0
			out.StreakType = models.StreakNeutral
			continue
		}

		if direction == out.StreakType {
			out.CurrentStreak++
		} else {
			out.CurrentStreak = 1
			out.StreakType = direction
		}
		if out.CurrentStreak > out.BestStreak {
			out.BestStreak = out.CurrentStreak
			out.BestStreakType = direction
		}
	}
	return out
}
