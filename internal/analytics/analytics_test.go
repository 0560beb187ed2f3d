package analytics

import (
	"encoding/json"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/tonyarciria-byte/psycomed/internal/models"
	"github.com/tonyarciria-byte/psycomed/internal/security"
)

var analysisNow = time.Date(2024, time.August, 31, 12, 0, 0, 0, time.UTC)

// series builds one entry per day starting 2024-07-01 with the given ratings
func series(ratings ...int) []models.MoodEntry {
	start := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.MoodEntry, len(ratings))
	for i, r := range ratings {
		out[i] = models.MoodEntry{
			Date:   start.AddDate(0, 0, i).Format(models.DateLayout),
			Rating: r,
			Tags:   []string{},
		}
	}
	return out
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestMoodTrends_ConstantSeries(t *testing.T) {
	t.Parallel()
	points := MoodTrends(series(repeat(10, 10)...))
	if len(points) != 10 {
		t.Fatalf("len(points) = %d, want 10", len(points))
	}
	for i, p := range points {
		if p.Trend != 0 || p.Volatility != 0 {
			t.Errorf("point %d = %+v, want trend 0 and volatility 0", i, p)
		}
	}
}

func TestMoodTrends_Window(t *testing.T) {
	t.Parallel()
	points := MoodTrends(series(2, 4, 6))
	want := []models.TrendPoint{
		{Date: "2024-07-01", Rating: 2, Trend: 0, WeekAverage: 2, Volatility: 0},
		{Date: "2024-07-02", Rating: 4, Trend: 2, WeekAverage: 2, Volatility: 1},
		{Date: "2024-07-03", Rating: 6, Trend: 3, WeekAverage: 3, Volatility: math.Sqrt(8.0 / 3.0)},
	}
	for i := range want {
		got := points[i]
		if got.Date != want[i].Date || got.Rating != want[i].Rating || !approx(got.Trend, want[i].Trend) ||
			!approx(got.WeekAverage, want[i].WeekAverage) || !approx(got.Volatility, want[i].Volatility) {
			t.Errorf("point %d = %+v, want %+v", i, got, want[i])
		}
	}
}

func TestMoodTrends_WindowIsSevenEntries(t *testing.T) {
	t.Parallel()
	// One outlier eight entries back must no longer affect the average
	points := MoodTrends(series(append([]int{20}, repeat(4, 8)...)...))
	if last := points[len(points)-1]; last.WeekAverage != 4 || last.Trend != 0 {
		t.Errorf("last point = %+v, want week average 4 and trend 0", last)
	}
	if p := points[7]; !approx(p.WeekAverage, (20.0+6*4.0)/7.0) {
		t.Errorf("point 7 week average = %v, want outlier included", p.WeekAverage)
	}
}

func TestMoodTrends_SortsWithoutMutatingInput(t *testing.T) {
	t.Parallel()
	entries := series(3, 5, 7)
	reversed := []models.MoodEntry{entries[2], entries[0], entries[1]}
	points := MoodTrends(reversed)
	if points[0].Date != "2024-07-01" || points[2].Date != "2024-07-03" {
		t.Errorf("points not in ascending date order: %v, %v", points[0].Date, points[2].Date)
	}
	if reversed[0].Date != "2024-07-03" {
		t.Error("MoodTrends reordered the caller's slice")
	}
}

func TestVolatility(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{"empty", nil, 0},
		{"single", []int{7}, 0},
		{"pair", []int{2, 4}, 1},
		{"population", []int{2, 4, 4, 4, 5, 5, 7, 9}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Volatility(series(tt.ratings...)); !approx(got, tt.want) {
				t.Errorf("Volatility() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImprovement_Improving(t *testing.T) {
	t.Parallel()
	entries := series(append(repeat(5, 14), repeat(9, 14)...)...)
	got := Improvement(entries, analysisNow)
	if got.InsufficientData {
		t.Fatal("InsufficientData = true, want false")
	}
	if got.Trend != models.TrendImproving || !approx(got.Improvement, 4) {
		t.Errorf("Improvement() = %+v, want improving by 4", got)
	}
	if got.RecentAverage != 9 || got.OlderAverage != 5 {
		t.Errorf("averages = %v / %v, want 9 / 5", got.RecentAverage, got.OlderAverage)
	}
	if got.Consistency != models.ConsistencyHigh || got.Volatility != 0 {
		t.Errorf("consistency = %s (%v), want high", got.Consistency, got.Volatility)
	}
}

func TestImprovement_Labels(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		ratings     []int
		trend       string
		consistency string
	}{
		{"declining", append(repeat(12, 14), repeat(8, 14)...), models.TrendDeclining, models.ConsistencyHigh},
		{"stable within threshold", append(repeat(8, 14), repeat(8, 13)...), models.TrendStable, models.ConsistencyHigh},
		{"no older window", repeat(10, 7), models.TrendStable, models.ConsistencyHigh},
		{"moderate consistency", append(repeat(10, 14), 9, 11, 9, 11, 9, 11, 9, 11, 9, 11, 9, 11, 8, 12), models.TrendStable, models.ConsistencyModerate},
		{"low consistency", append(repeat(10, 14), 5, 15, 5, 15, 5, 15, 5, 15, 5, 15, 5, 15, 5, 15), models.TrendStable, models.ConsistencyLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Improvement(series(tt.ratings...), analysisNow)
			if got.Trend != tt.trend || got.Consistency != tt.consistency {
				t.Errorf("Improvement() trend = %s consistency = %s, want %s / %s", got.Trend, got.Consistency, tt.trend, tt.consistency)
			}
		})
	}
}

func TestImprovement_ConstantSeriesKeepsZeroFields(t *testing.T) {
	t.Parallel()
	data, err := json.Marshal(Improvement(series(repeat(10, 10)...), analysisNow))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	for _, key := range []string{"improvement", "volatility", "recentAverage", "olderAverage"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("%s missing from %s", key, data)
		}
	}
	if fields["improvement"] != 0.0 || fields["volatility"] != 0.0 {
		t.Errorf("improvement, volatility = %v, %v; want 0, 0", fields["improvement"], fields["volatility"])
	}
}

func TestImprovement_InsufficientData(t *testing.T) {
	t.Parallel()
	got := Improvement(series(5, 6, 7, 8, 9), analysisNow)
	if !got.InsufficientData {
		t.Fatal("InsufficientData = false, want true")
	}
	if got.Trend != "" || got.StreakAnalysis != nil {
		t.Errorf("Improvement() = %+v, want no comparison", got)
	}
}

func TestImprovement_ExcludesFutureEntries(t *testing.T) {
	t.Parallel()
	entries := series(repeat(10, 10)...)
	now := time.Date(2024, time.July, 5, 23, 0, 0, 0, time.UTC)
	if got := Improvement(entries, now); !got.InsufficientData {
		t.Errorf("Improvement() = %+v, want insufficient data with only 5 entries up to now", got)
	}
	if got := Improvement(entries, time.Time{}); got.InsufficientData {
		t.Error("Improvement() with zero now = insufficient, want every entry included")
	}
}

func TestStreaks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		ratings []int
		want    models.StreakAnalysis
	}{
		{"empty", nil, models.StreakAnalysis{StreakType: "neutral", BestStreakType: "neutral"}},
		{"improving run", []int{1, 2, 3, 4}, models.StreakAnalysis{CurrentStreak: 3, StreakType: "improving", BestStreak: 3, BestStreakType: "improving"}},
		{"direction change", []int{5, 4, 3, 2, 4}, models.StreakAnalysis{CurrentStreak: 1, StreakType: "improving", BestStreak: 3, BestStreakType: "declining"}},
		{"flat resets", []int{1, 2, 3, 3}, models.StreakAnalysis{CurrentStreak: 0, StreakType: "neutral", BestStreak: 2, BestStreakType: "improving"}},
		{"flat then improving", []int{3, 3, 4}, models.StreakAnalysis{CurrentStreak: 1, StreakType: "improving", BestStreak: 1, BestStreakType: "improving"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Streaks(series(tt.ratings...)); got != tt.want {
				t.Errorf("Streaks() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestActivityPatternsFor(t *testing.T) {
	t.Parallel()
	morning := time.Date(2024, time.July, 15, 8, 30, 0, 0, time.UTC)
	evening := time.Date(2024, time.July, 16, 20, 0, 0, 0, time.UTC)
	late := time.Date(2024, time.August, 1, 23, 0, 0, 0, time.UTC)
	// Saturday and Sunday without a time, then Monday, Tuesday and a Thursday in August
	entries := []models.MoodEntry{
		{Date: "2024-07-13", Rating: 12},
		{Date: "2024-07-14", Rating: 14},
		{Date: "2024-07-15", Rating: 6, RecordedAt: &morning},
		{Date: "2024-07-16", Rating: 8, RecordedAt: &evening},
		{Date: "2024-08-01", Rating: 4, RecordedAt: &late},
	}
	p := ActivityPatternsFor(entries)

	if p.Weekend.Count != 2 || p.Weekend.Average != 13 {
		t.Errorf("Weekend = %+v, want 2 entries averaging 13", p.Weekend)
	}
	if p.Weekday.Count != 3 || p.Weekday.Average != 6 {
		t.Errorf("Weekday = %+v, want 3 entries averaging 6", p.Weekday)
	}
	if p.Afternoon.Count != 2 || p.Morning.Count != 1 || p.Evening.Count != 1 || p.Night.Count != 1 {
		t.Errorf("time of day counts = m%d a%d e%d n%d, want 1/2/1/1",
			p.Morning.Count, p.Afternoon.Count, p.Evening.Count, p.Night.Count)
	}
	if got := p.Monthly["2024-07"]; got.Count != 4 || got.Average != 10 {
		t.Errorf("Monthly[2024-07] = %+v, want 4 entries averaging 10", got)
	}
	if got := p.Monthly["2024-08"]; !slices.Equal(got.Dates, []string{"2024-08-01"}) {
		t.Errorf("Monthly[2024-08] = %+v", got)
	}
}

func TestSleepCorrelations(t *testing.T) {
	t.Parallel()
	entries := series(4, 8, 6, 10)
	entries[0].SleepQuality = 1
	entries[1].SleepQuality = 3
	entries[2].SleepQuality = 2
	// entries[3] has no sleep recorded; its pair is skipped
	got := SleepCorrelations(entries)
	if len(got.Correlations) != 2 {
		t.Fatalf("len(Correlations) = %d, want 2", len(got.Correlations))
	}
	first := got.Correlations[0]
	if first.MoodChange != 4 || first.SleepChange != 2 || first.Correlation != 8 {
		t.Errorf("first pair = %+v, want 4 x 2 = 8", first)
	}
	if got.AverageCorrelation != 5 || got.Strength != models.StrengthStrong {
		t.Errorf("average = %v strength = %s, want 5 strong", got.AverageCorrelation, got.Strength)
	}
}

func TestSleepCorrelations_Strength(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		sleep []models.SleepQuality
		want  string
	}{
		{"none recorded", []models.SleepQuality{0, 0, 0}, models.StrengthWeak},
		{"negative strong", []models.SleepQuality{5, 1, 5}, models.StrengthStrong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			entries := series(5, 9, 5)
			for i := range entries {
				entries[i].SleepQuality = tt.sleep[i]
			}
			if got := SleepCorrelations(entries).Strength; got != tt.want {
				t.Errorf("Strength = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTriggers(t *testing.T) {
	t.Parallel()
	entries := series(6, 16, 12, 13)
	entries[0].Tags = []string{"Ansiedad"}
	entries[1].Tags = []string{"Felicidad", "Calma"}
	entries[2].Tags = []string{"Calma"}
	entries[3].Tags = []string{"Calma"}

	got := Triggers(entries)
	if len(got.LowMoodDays) != 1 || got.LowMoodDays[0].Rating != 6 {
		t.Errorf("LowMoodDays = %+v, want the rating 6 day", got.LowMoodDays)
	}
	if len(got.HighMoodDays) != 1 || got.HighMoodDays[0].Rating != 16 {
		t.Errorf("HighMoodDays = %+v, want the rating 16 day", got.HighMoodDays)
	}
	wantChanges := []models.MoodChange{
		{Date: "2024-07-02", Change: 10, Direction: models.DirectionIncrease, From: 6, To: 16},
		{Date: "2024-07-03", Change: 4, Direction: models.DirectionDecrease, From: 16, To: 12},
	}
	if !slices.Equal(got.SuddenChanges, wantChanges) {
		t.Errorf("SuddenChanges = %+v, want %+v", got.SuddenChanges, wantChanges)
	}
	calma := got.Patterns["Calma"]
	if calma.Count != 3 || calma.AvgRating != (16.0+12+13)/3 {
		t.Errorf("Patterns[Calma] = %+v, want cumulative mean over 3 entries", calma)
	}
}

func TestComputeBaseline(t *testing.T) {
	t.Parallel()
	if got := ComputeBaseline(nil); got != nil {
		t.Errorf("ComputeBaseline(nil) = %+v, want nil", got)
	}
	got := ComputeBaseline(series(6, 8, 3, 5, 9, 7))
	if got.BaselineMood != 6 || got.Min != 3 || got.Max != 9 || !approx(got.Average, 38.0/6) {
		t.Errorf("ComputeBaseline() = %+v", got)
	}
}

func TestEngine_AnalyzeIsDeterministic(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil, nil)
	entries := series(6, 8, 3, 5, 9, 7, 10, 12)
	a := e.Analyze(entries, analysisNow)
	b := e.Analyze(entries, analysisNow)
	if a.EntryCount != 8 || !slices.Equal(a.MoodTrends, b.MoodTrends) {
		t.Errorf("Analyze() not repeatable: %+v vs %+v", a.MoodTrends, b.MoodTrends)
	}
	ai, bi := a.ImprovementMetrics, b.ImprovementMetrics
	if ai.Trend != bi.Trend || ai.Improvement != bi.Improvement || *ai.StreakAnalysis != *bi.StreakAnalysis {
		t.Errorf("Analyze() improvement metrics differ between runs: %+v vs %+v", ai, bi)
	}
}

func TestEngine_AnalyzeEmpty(t *testing.T) {
	t.Parallel()
	got := NewEngine(nil, nil).Analyze(nil, analysisNow)
	if got.EntryCount != 0 || got.Baseline != nil || !got.ImprovementMetrics.InsufficientData {
		t.Errorf("Analyze(nil) = %+v", got)
	}
	if got.MoodTrends == nil || got.TriggerAnalysis.Patterns == nil || got.ActivityPatterns.Monthly == nil {
		t.Error("Analyze(nil) returned nil collections, want empty")
	}
	if insights := Insights(got); len(insights) != 1 || insights[0].Type != InsightInfo {
		t.Errorf("Insights() for no data = %+v, want the keep-logging insight", insights)
	}
}

func TestInsights(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		m     models.DerivedMetrics
		types []string
	}{
		{
			"improving",
			models.DerivedMetrics{EntryCount: 10, ImprovementMetrics: models.ImprovementMetrics{Trend: models.TrendImproving}},
			[]string{InsightPositive},
		},
		{
			"declining",
			models.DerivedMetrics{EntryCount: 10, ImprovementMetrics: models.ImprovementMetrics{Trend: models.TrendDeclining}},
			[]string{InsightWarning},
		},
		{
			"strong sleep",
			models.DerivedMetrics{EntryCount: 10, SleepCorrelations: models.SleepCorrelation{Strength: models.StrengthStrong}},
			[]string{InsightCorrelation},
		},
		{
			"weekend better",
			models.DerivedMetrics{EntryCount: 10, ActivityPatterns: models.ActivityPatterns{
				Weekday: models.Bucket{Count: 5, Average: 8},
				Weekend: models.Bucket{Count: 2, Average: 12},
			}},
			[]string{InsightPattern},
		},
		{
			"no weekend entries",
			models.DerivedMetrics{EntryCount: 10, ActivityPatterns: models.ActivityPatterns{
				Weekday: models.Bucket{Count: 5, Average: 8},
			}},
			[]string{},
		},
		{
			"short history skips every rule",
			models.DerivedMetrics{
				EntryCount:         2,
				ImprovementMetrics: models.ImprovementMetrics{Trend: models.TrendImproving},
				SleepCorrelations:  models.SleepCorrelation{Strength: models.StrengthStrong},
			},
			[]string{InsightInfo},
		},
		{
			"improving streak",
			models.DerivedMetrics{EntryCount: 10, ImprovementMetrics: models.ImprovementMetrics{
				Trend:          models.TrendStable,
				StreakAnalysis: &models.StreakAnalysis{CurrentStreak: 3, StreakType: models.StreakImproving},
			}},
			[]string{InsightStreak},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Insights(tt.m)
			types := make([]string, len(got))
			for i, in := range got {
				types[i] = in.Type
				if in.Title == "" || in.Description == "" || in.Icon == "" {
					t.Errorf("insight %+v has empty fields", in)
				}
			}
			if !slices.Equal(types, tt.types) {
				t.Errorf("Insights() types = %v, want %v", types, tt.types)
			}
		})
	}
}

func TestInsights_WeeklyDescriptions(t *testing.T) {
	t.Parallel()
	m := models.DerivedMetrics{EntryCount: 10, ActivityPatterns: models.ActivityPatterns{
		Weekday: models.Bucket{Count: 5, Average: 12},
		Weekend: models.Bucket{Count: 2, Average: 8},
	}}
	got := Insights(m)
	if len(got) != 1 || got[0].Description != "Tu ánimo tiende a ser más bajo durante los fines de semana." {
		t.Errorf("Insights() = %+v", got)
	}
}

func TestEngine_InsightsShortHistory(t *testing.T) {
	t.Parallel()
	history := []models.MoodEntry{
		{Date: "2024-07-19", Rating: 4, SleepQuality: 2, Tags: []string{}},
		{Date: "2024-07-20", Rating: 10, SleepQuality: 4, Tags: []string{}},
		{Date: "2024-07-21", Rating: 14, SleepQuality: 5, Tags: []string{}},
	}
	now := time.Date(2024, time.July, 22, 12, 0, 0, 0, time.UTC)
	e := NewEngine(nil, nil)

	for n := 0; n < 3; n++ {
		got := e.Insights(history[:n], now)
		if len(got) != 1 || got[0] != keepLogging {
			t.Errorf("Insights(%d entries) = %+v, want only the keep-logging insight", n, got)
		}
	}

	got := e.Insights(history, now)
	var sleep bool
	for _, in := range got {
		if in.Type == InsightInfo {
			t.Errorf("Insights(3 entries) still contains keep-logging: %+v", got)
		}
		if in.Type == InsightCorrelation {
			sleep = true
		}
	}
	if !sleep {
		t.Errorf("Insights(3 entries) = %+v, want the sleep correlation insight", got)
	}
}

func TestEngine_Export(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil, nil)
	cipher := security.NewCipher("export")
	derived := e.Analyze(series(6, 8, 3), analysisNow)
	blob, err := e.Export(cipher, derived, SessionSnapshot{Interactions: 4}, analysisNow)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	var doc ExportDocument
	if err := cipher.Decrypt(blob, &doc); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if doc.Metrics.EntryCount != 3 || doc.RealTime.Interactions != 4 || !doc.ExportDate.Equal(analysisNow) {
		t.Errorf("exported document = %+v", doc)
	}
}
