package analytics

import "github.com/tonyarciria-byte/psycomed/internal/models"

const trendWindow = 7

// MoodTrends compares each entry with the mean of up to seven entries before it.
// The first entry, having no history, has trend 0. Volatility covers the window
// and the entry itself.
func MoodTrends(entries []models.MoodEntry) []models.TrendPoint {
	sorted := sortedByDate(entries)
	points := make([]models.TrendPoint, 0, len(sorted))
	for i, e := range sorted {
		window := sorted[max(0, i-trendWindow):i]
		avg := float64(e.Rating)
		if len(window) > 0 {
			avg = meanRating(window)
		}
		withEntry := append(window[:len(window):len(window)], e)
		points = append(points, models.TrendPoint{
			Date:        e.Date,
			Rating:      e.Rating,
			Trend:       float64(e.Rating) - avg,
			WeekAverage: avg,
			Volatility:  Volatility(withEntry),
		})
	}
	return points
}
