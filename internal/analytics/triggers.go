package analytics

import "github.com/tonyarciria-byte/psycomed/internal/models"

// suddenChangeThreshold is the minimum rating jump between consecutive entries reported as sudden
const suddenChangeThreshold = 3

var (
	lowMoodThreshold  = models.FromReferenceScale(3)
	highMoodThreshold = models.FromReferenceScale(8)
)

// Triggers collects low and high mood days, sudden changes between consecutive
// entries and per-tag rating averages.
func Triggers(entries []models.MoodEntry) models.TriggerAnalysis {
	sorted := sortedByDate(entries)
	out := models.TriggerAnalysis{
		LowMoodDays:   []models.MoodDay{},
		HighMoodDays:  []models.MoodDay{},
		SuddenChanges: []models.MoodChange{},
		Patterns:      make(map[string]models.TagPattern),
	}

	tagSums := make(map[string]int)
	for i, e := range sorted {
		if e.Rating <= lowMoodThreshold {
			out.LowMoodDays = append(out.LowMoodDays, moodDay(e))
		}
		if e.Rating >= highMoodThreshold {
			out.HighMoodDays = append(out.HighMoodDays, moodDay(e))
		}

		if i > 0 {
			prev := sorted[i-1]
			change := e.Rating - prev.Rating
			if abs(change) >= suddenChangeThreshold {
				direction := models.DirectionDecrease
				if change > 0 {
					direction = models.DirectionIncrease
				}
				out.SuddenChanges = append(out.SuddenChanges, models.MoodChange{
					Date:      e.Date,
					Change:    abs(change),
					Direction: direction,
					From:      prev.Rating,
					To:        e.Rating,
				})
			}
		}

		for _, tag := range e.Tags {
			p := out.Patterns[tag]
			p.Count++
			p.Dates = append(p.Dates, e.Date)
			tagSums[tag] += e.Rating
			p.AvgRating = float64(tagSums[tag]) / float64(p.Count)
			out.Patterns[tag] = p
		}
	}
	return out
}

func moodDay(e models.MoodEntry) models.MoodDay {
	tags := append([]string{}, e.Tags...)
	return models.MoodDay{Date: e.Date, Rating: e.Rating, Tags: tags, Note: e.Note}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
