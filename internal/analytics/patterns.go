package analytics

import (
	"time"

	"github.com/tonyarciria-byte/psycomed/internal/models"
)

// Hour boundaries for time-of-day buckets: morning [6,12), afternoon [12,18), evening [18,22)
const (
	morningStart   = 6
	afternoonStart = 12
	eveningStart   = 18
	nightStart     = 22
)

const monthKeyLayout = "2006-01"

type bucketBuilder struct {
	sum   int
	dates []string
}

func (b *bucketBuilder) add(e models.MoodEntry) {
	b.sum += e.Rating
	b.dates = append(b.dates, e.Date)
}

func (b *bucketBuilder) bucket() models.Bucket {
	out := models.Bucket{Count: len(b.dates), Dates: b.dates}
	if out.Dates == nil {
		out.Dates = []string{}
	}
	if out.Count > 0 {
		out.Average = float64(b.sum) / float64(out.Count)
	}
	return out
}

// ActivityPatternsFor buckets entries by weekday or weekend, time of day and month.
// Weekday comes from the calendar date; weekend is Saturday and Sunday.
func ActivityPatternsFor(entries []models.MoodEntry) models.ActivityPatterns {
	var weekday, weekend, morning, afternoon, evening, night bucketBuilder
	monthly := make(map[string]*bucketBuilder)
	var months []string

	for _, e := range sortedByDate(entries) {
		day, ok := e.Day()
		if !ok {
			continue
		}

		switch day.Weekday() {
		case time.Saturday, time.Sunday:
			weekend.add(e)
		default:
			weekday.add(e)
		}

		switch h := e.Hour(); {
		case h >= morningStart && h < afternoonStart:
			morning.add(e)
		case h >= afternoonStart && h < eveningStart:
			afternoon.add(e)
		case h >= eveningStart && h < nightStart:
			evening.add(e)
		default:
			night.add(e)
		}

		key := day.Format(monthKeyLayout)
		if monthly[key] == nil {
			monthly[key] = &bucketBuilder{}
			months = append(months, key)
		}
		monthly[key].add(e)
	}

	out := models.ActivityPatterns{
		Weekday:   weekday.bucket(),
		Weekend:   weekend.bucket(),
		Morning:   morning.bucket(),
		Afternoon: afternoon.bucket(),
		Evening:   evening.bucket(),
		Night:     night.bucket(),
		Monthly:   make(map[string]models.Bucket, len(months)),
	}
	for _, key := range months {
		out.Monthly[key] = monthly[key].bucket()
	}
	return out
}
