// Package recommend maps a current mood rating and the entry history to
// activities, advice, a motivational message and short insights.
package recommend

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/tonyarciria-byte/psycomed/internal/analytics"
	"github.com/tonyarciria-byte/psycomed/internal/logger"
	"github.com/tonyarciria-byte/psycomed/internal/models"
	"go.uber.org/zap"
)

const (
	recentWindow      = 7
	minInsightEntries = 3
	trendThreshold    = 2
	sleepThreshold    = 0.5
	weeklyGap         = 1
)

// Recommendation is the engine output for one mood level
type Recommendation struct {
	Category            string   `json:"category"`
	Activities          []string `json:"activities"`
	Advice              string   `json:"advice"`
	MotivationalMessage string   `json:"motivationalMessage"`
	Insights            []string `json:"insights"`
	Personalized        bool     `json:"personalized,omitempty"`
}

// Advisor produces free-text advice for a mood category
type Advisor interface {
	PersonalizedAdvice(ctx context.Context, category, summary string) (string, error)
}

// Engine selects recommendations from a catalog
type Engine struct {
	catalog  *Catalog
	selector Selector
	advisor  Advisor
	logger   *zap.Logger
}

// NewEngine creates an engine. A nil catalog uses the embedded one and a nil
// selector uses a time-seeded random selector.
func NewEngine(catalog *Catalog, selector Selector, log *zap.Logger) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if selector == nil {
		selector = NewRandomSelector(uint64(time.Now().UnixNano()))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{catalog: catalog, selector: selector, logger: log}
}

// WithAdvisor sets the advisor consulted by RecommendContext
func (e *Engine) WithAdvisor(a Advisor) *Engine {
	e.advisor = a
	return e
}

// Catalog returns the catalog the engine selects from
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// empty is the renderable "no recommendation" result
func empty() Recommendation {
	return Recommendation{Activities: []string{}, Insights: []string{}}
}

// Recommend builds a recommendation for currentMood. An empty history or a
// rating outside the scale yields an empty result rather than an error.
func (e *Engine) Recommend(entries []models.MoodEntry, currentMood int) Recommendation {
	if len(entries) == 0 || currentMood < models.RatingMin || currentMood > models.RatingMax {
		return empty()
	}

	category := e.catalog.Category(currentMood)
	return Recommendation{
		Category:            category,
		Activities:          e.catalog.ActivitiesFor(currentMood),
		Advice:              pick(e.selector, e.catalog.Advice[category]),
		MotivationalMessage: pick(e.selector, e.catalog.MotivationalMessages),
		Insights:            e.insights(byDate(entries), currentMood),
	}
}

// RecommendContext is Recommend plus advisor-written advice when an advisor is set.
// Advisor failures keep the catalog advice.
func (e *Engine) RecommendContext(ctx context.Context, entries []models.MoodEntry, currentMood int) Recommendation {
	rec := e.Recommend(entries, currentMood)
	if e.advisor == nil || rec.Category == "" {
		return rec
	}

	advice, err := e.advisor.PersonalizedAdvice(ctx, rec.Category, summarize(byDate(entries), currentMood, rec.Insights))
	if err != nil {
		e.logger.Warn("personalized_advice_failed",
			zap.String("category", rec.Category),
			zap.String("error", logger.SanitizeError(err)),
		)
		return rec
	}
	if advice = strings.TrimSpace(advice); advice != "" {
		rec.Advice = advice
		rec.Personalized = true
	}
	return rec
}

func (e *Engine) insights(sorted []models.MoodEntry, currentMood int) []string {
	texts := e.catalog.Insights
	if len(sorted) < minInsightEntries {
		return []string{texts.InsufficientHistory}
	}

	insights := []string{}
	switch trend := float64(currentMood) - recentAverage(sorted); {
	case trend > trendThreshold:
		insights = append(insights, texts.Improving)
	case trend < -trendThreshold:
		insights = append(insights, texts.Declining)
	}

	switch sleep := analytics.SleepCorrelations(sorted).AverageCorrelation; {
	case sleep > sleepThreshold:
		insights = append(insights, texts.SleepPositive)
	case sleep < -sleepThreshold:
		insights = append(insights, texts.SleepNegative)
	}

	patterns := analytics.ActivityPatternsFor(sorted)
	if patterns.Weekday.Count > 0 && patterns.Weekend.Count > 0 {
		if patterns.Weekend.Average > patterns.Weekday.Average+weeklyGap {
			insights = append(insights, texts.WeekendBetter)
		}
		if patterns.Weekday.Average < patterns.Weekend.Average-weeklyGap {
			insights = append(insights, texts.WeekdayStress)
		}
	}
	return insights
}

// recentAverage is the mean rating of the last seven entries by date
func recentAverage(sorted []models.MoodEntry) float64 {
	recent := sorted[max(0, len(sorted)-recentWindow):]
	if len(recent) == 0 {
		return 0
	}
	sum := 0
	for _, e := range recent {
		sum += e.Rating
	}
	return float64(sum) / float64(len(recent))
}

func summarize(sorted []models.MoodEntry, currentMood int, insights []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current mood: %d/%d. ", currentMood, models.RatingMax)
	fmt.Fprintf(&b, "Average of the last %d entries: %.1f. ", min(len(sorted), recentWindow), recentAverage(sorted))
	recent := sorted[max(0, len(sorted)-recentWindow):]
	var tags []string
	for _, e := range recent {
		for _, t := range e.Tags {
			if !slices.Contains(tags, t) {
				tags = append(tags, t)
			}
		}
	}
	if len(tags) > 0 {
		fmt.Fprintf(&b, "Recent tags: %s. ", strings.Join(tags, ", "))
	}
	if len(insights) > 0 {
		fmt.Fprintf(&b, "Observations: %s", strings.Join(insights, " "))
	}
	return strings.TrimSpace(b.String())
}

// byDate returns a copy of entries sorted ascending by date
func byDate(entries []models.MoodEntry) []models.MoodEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b models.MoodEntry) int { return strings.Compare(a.Date, b.Date) })
	return out
}
