package models

import "time"

// Trend labels for ImprovementMetrics.Trend
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// Consistency labels for ImprovementMetrics.Consistency
const (
	ConsistencyHigh     = "high"
	ConsistencyModerate = "moderate"
	ConsistencyLow      = "low"
)

// Correlation strength labels
const (
	StrengthStrong   = "strong"
	StrengthModerate = "moderate"
	StrengthWeak     = "weak"
)

// Streak types
const (
	StreakImproving = "improving"
	StreakDeclining = "declining"
	StreakNeutral   = "neutral"
)

// Change directions for sudden mood changes
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

// TrendPoint is one entry's position relative to the week before it
type TrendPoint struct {
	Date        string  `json:"date"`
	Rating      int     `json:"rating"`
	Trend       float64 `json:"trend"`
	WeekAverage float64 `json:"weekAverage"`
	Volatility  float64 `json:"volatility"`
}

// Bucket groups entries that share a calendar or clock attribute
type Bucket struct {
	Count   int      `json:"count"`
	Average float64  `json:"average"`
	Dates   []string `json:"dates"`
}

// ActivityPatterns partitions entries by day type, time of day and month
type ActivityPatterns struct {
	Weekday   Bucket            `json:"weekday"`
	Weekend   Bucket            `json:"weekend"`
	Morning   Bucket            `json:"morning"`
	Afternoon Bucket            `json:"afternoon"`
	Evening   Bucket            `json:"evening"`
	Night     Bucket            `json:"night"`
	Monthly   map[string]Bucket `json:"monthly"`
}

// SleepPair is the change in mood and sleep between two consecutive entries
type SleepPair struct {
	Date        string  `json:"date"`
	MoodChange  int     `json:"moodChange"`
	SleepChange int     `json:"sleepChange"`
	Correlation float64 `json:"correlation"`
}

// SleepCorrelation summarises how sleep changes track mood changes
type SleepCorrelation struct {
	Correlations       []SleepPair `json:"correlations"`
	AverageCorrelation float64     `json:"averageCorrelation"`
	Strength           string      `json:"strength"`
}

// MoodDay is a notable day kept for trigger review
type MoodDay struct {
	Date   string   `json:"date"`
	Rating int      `json:"rating"`
	Tags   []string `json:"tags"`
	Note   string   `json:"note,omitempty"`
}

// MoodChange is a large jump between two consecutive entries
type MoodChange struct {
	Date      string `json:"date"`
	Change    int    `json:"change"`
	Direction string `json:"direction"`
	From      int    `json:"from"`
	To        int    `json:"to"`
}

// TagPattern aggregates the ratings of entries carrying one tag
type TagPattern struct {
	Count     int      `json:"count"`
	AvgRating float64  `json:"avgRating"`
	Dates     []string `json:"dates"`
}

// TriggerAnalysis collects low days, high days, sudden changes and tag patterns
type TriggerAnalysis struct {
	LowMoodDays   []MoodDay             `json:"lowMoodDays"`
	HighMoodDays  []MoodDay             `json:"highMoodDays"`
	SuddenChanges []MoodChange          `json:"suddenChanges"`
	Patterns      map[string]TagPattern `json:"patterns"`
}

// StreakAnalysis tracks runs of consecutive improving or declining transitions
type StreakAnalysis struct {
	CurrentStreak  int    `json:"currentStreak"`
	StreakType     string `json:"streakType"`
	BestStreak     int    `json:"bestStreak"`
	BestStreakType string `json:"bestStreakType"`
}

// ImprovementMetrics compares the last two weeks against the two before them.
// When InsufficientData is set no other field is meaningful.
type ImprovementMetrics struct {
	InsufficientData bool            `json:"insufficientData,omitempty"`
	RecentAverage    float64         `json:"recentAverage"`
	OlderAverage     float64         `json:"olderAverage"`
	Improvement      float64         `json:"improvement"`
	Trend            string          `json:"trend,omitempty"`
	Consistency      string          `json:"consistency,omitempty"`
	Volatility       float64         `json:"volatility"`
	StreakAnalysis   *StreakAnalysis `json:"streakAnalysis,omitempty"`
}

// Baseline is the user's typical mood over the whole history
type Baseline struct {
	BaselineMood int     `json:"baselineMood"`
	Min          int     `json:"min"`
	Max          int     `json:"max"`
	Average      float64 `json:"average"`
}

// DerivedMetrics is the full analytic projection of an entry list.
// It is never persisted and is recomputed from scratch on every pass.
type DerivedMetrics struct {
	EntryCount         int                `json:"entryCount"`
	AsOf               time.Time          `json:"asOf"`
	MoodTrends         []TrendPoint       `json:"moodTrends"`
	ActivityPatterns   ActivityPatterns   `json:"activityPatterns"`
	SleepCorrelations  SleepCorrelation   `json:"sleepCorrelations"`
	TriggerAnalysis    TriggerAnalysis    `json:"triggerAnalysis"`
	ImprovementMetrics ImprovementMetrics `json:"improvementMetrics"`
	Baseline           *Baseline          `json:"baseline,omitempty"`
}

// Insight is a short statement produced by thresholding a computed metric
type Insight struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}
