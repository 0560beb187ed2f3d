package recommend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/tonyarciria-byte/psycomed/internal/models"
)

// fixedSelector always picks the same index, modulo the list length
type fixedSelector int

func (s fixedSelector) Intn(n int) int { return int(s) % n }

func seedEntries() []models.MoodEntry {
	return []models.MoodEntry{
		{Date: "2024-07-15", Rating: 6, SleepQuality: 5, Tags: []string{"Calma"}},
		{Date: "2024-07-16", Rating: 8, SleepQuality: 5, Tags: []string{"Felicidad"}},
		{Date: "2024-07-17", Rating: 3, SleepQuality: 1, Tags: []string{"Ansiedad"}},
		{Date: "2024-07-18", Rating: 5, SleepQuality: 1, Tags: []string{"Cansancio"}},
		{Date: "2024-07-19", Rating: 9, SleepQuality: 5, Tags: []string{"Felicidad"}},
		{Date: "2024-07-20", Rating: 7, SleepQuality: 5, Tags: []string{"Calma"}},
	}
}

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()
	if len(c.MotivationalMessages) != 30 {
		t.Errorf("motivational messages = %d, want 30", len(c.MotivationalMessages))
	}
	for _, category := range []string{"Alegría", "Tristeza", "Ansiedad", "Estrés", "Calma", "Cansancio", "Frustración"} {
		if got := len(c.Advice[category]); got != 16 {
			t.Errorf("advice[%s] = %d entries, want 16", category, got)
		}
	}
	for _, band := range c.Activities {
		if len(band.Items) != 7 {
			t.Errorf("activity band %d has %d items, want 7", band.MaxRating, len(band.Items))
		}
	}
	if len(c.TagVocabulary()) != 4 {
		t.Errorf("tag families = %d, want 4", len(c.TagVocabulary()))
	}
}

func TestCatalog_Category(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()
	tests := []struct {
		rating int
		want   string
	}{
		{1, "Tristeza"},
		{5, "Tristeza"},
		{6, "Ansiedad"},
		{10, "Ansiedad"},
		{11, "Estrés"},
		{15, "Estrés"},
		{16, "Alegría"},
		{20, "Alegría"},
		{99, "Alegría"},
	}
	for _, tt := range tests {
		if got := c.Category(tt.rating); got != tt.want {
			t.Errorf("Category(%d) = %q, want %q", tt.rating, got, tt.want)
		}
	}
}

func TestParseCatalog_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "categories: [\n"},
		{"empty document", ""},
		{"unnamed band", "categories:\n  - max_rating: 5\nactivities:\n  - max_rating: 5\n    items: [a]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseCatalog([]byte(tt.data)); err == nil {
				t.Error("ParseCatalog() error = nil, want error")
			}
		})
	}
}

func TestLoadCatalog_File(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := "categories:\n  - max_rating: 20\n    name: Alto\n  - max_rating: 10\n    name: Bajo\n" +
		"activities:\n  - max_rating: 20\n    items: [Caminar]\n" +
		"advice:\n  Bajo: [Descansa]\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if got := c.Category(4); got != "Bajo" {
		t.Errorf("bands not sorted: Category(4) = %q", got)
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadCatalog(missing) error = nil")
	}
	if c, err := LoadCatalog(""); err != nil || c != DefaultCatalog() {
		t.Errorf("LoadCatalog(\"\") = %p, %v, want embedded catalog", c, err)
	}
}

func TestRecommend_EmptyHistory(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil, fixedSelector(0), nil)
	for _, tc := range []struct {
		name    string
		entries []models.MoodEntry
		mood    int
	}{
		{"no entries", nil, 10},
		{"missing mood", seedEntries(), 0},
		{"mood above scale", seedEntries(), 21},
	} {
		got := e.Recommend(tc.entries, tc.mood)
		if got.Category != "" || got.Advice != "" || got.MotivationalMessage != "" {
			t.Errorf("%s: Recommend() = %+v, want empty", tc.name, got)
		}
		if got.Activities == nil || len(got.Activities) != 0 || got.Insights == nil || len(got.Insights) != 0 {
			t.Errorf("%s: want non-nil empty arrays, got %+v", tc.name, got)
		}
	}
}

func TestRecommend_SeedHistory(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()
	e := NewEngine(c, fixedSelector(2), nil)

	entries := seedEntries()
	slices.Reverse(entries)
	got := e.Recommend(entries, 10)

	if got.Category != "Ansiedad" {
		t.Errorf("Category = %q, want Ansiedad", got.Category)
	}
	if !slices.Equal(got.Activities, c.Activities[1].Items) {
		t.Errorf("Activities = %q", got.Activities)
	}
	if got.Advice != c.Advice["Ansiedad"][2] {
		t.Errorf("Advice = %q, want third Ansiedad entry", got.Advice)
	}
	if got.MotivationalMessage != c.MotivationalMessages[2] {
		t.Errorf("MotivationalMessage = %q", got.MotivationalMessage)
	}
	want := []string{c.Insights.Improving, c.Insights.SleepPositive}
	if !slices.Equal(got.Insights, want) {
		t.Errorf("Insights = %q, want %q", got.Insights, want)
	}
}

func TestRecommend_Insights(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()
	e := NewEngine(c, fixedSelector(0), nil)

	tests := []struct {
		name    string
		entries []models.MoodEntry
		mood    int
		want    []string
	}{
		{
			"short history",
			[]models.MoodEntry{{Date: "2024-07-15", Rating: 5}, {Date: "2024-07-16", Rating: 6}},
			12,
			[]string{c.Insights.InsufficientHistory},
		},
		{
			"declined against recent average",
			[]models.MoodEntry{{Date: "2024-07-15", Rating: 12}, {Date: "2024-07-16", Rating: 12}, {Date: "2024-07-17", Rating: 12}},
			9,
			[]string{c.Insights.Declining},
		},
		{
			"inside trend band",
			[]models.MoodEntry{{Date: "2024-07-15", Rating: 12}, {Date: "2024-07-16", Rating: 12}, {Date: "2024-07-17", Rating: 12}},
			14,
			[]string{},
		},
		{
			"weekend better than weekdays",
			// 2024-07-19 is a Friday
			[]models.MoodEntry{{Date: "2024-07-19", Rating: 8}, {Date: "2024-07-20", Rating: 14}, {Date: "2024-07-21", Rating: 14}},
			12,
			[]string{c.Insights.WeekendBetter, c.Insights.WeekdayStress},
		},
		{
			"sleep moves against mood",
			[]models.MoodEntry{
				{Date: "2024-07-16", Rating: 10, SleepQuality: 1},
				{Date: "2024-07-17", Rating: 12, SleepQuality: 0},
				{Date: "2024-07-18", Rating: 14, SleepQuality: 1},
				{Date: "2024-07-19", Rating: 10, SleepQuality: 4},
			},
			11,
			[]string{c.Insights.SleepNegative},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := e.Recommend(tt.entries, tt.mood).Insights
			if !slices.Equal(got, tt.want) {
				t.Errorf("Insights = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecommend_RecentWindow(t *testing.T) {
	t.Parallel()
	e := NewEngine(nil, fixedSelector(0), nil)
	start := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	var entries []models.MoodEntry
	// Three old entries at 1 followed by seven at 10
	for i := range 10 {
		rating := 10
		if i < 3 {
			rating = 1
		}
		entries = append(entries, models.MoodEntry{Date: start.AddDate(0, 0, i).Format(models.DateLayout), Rating: rating})
	}
	got := e.Recommend(entries, 11).Insights
	for _, s := range got {
		if s == DefaultCatalog().Insights.Improving {
			t.Errorf("older entries leaked into the recent average: %q", got)
		}
	}
}

type stubAdvisor struct {
	advice string
	err    error
	got    string
}

func (s *stubAdvisor) PersonalizedAdvice(_ context.Context, category, summary string) (string, error) {
	s.got = category + "|" + summary
	return s.advice, s.err
}

func TestRecommendContext_Advisor(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()

	ok := &stubAdvisor{advice: "  Sal a caminar con un amigo.  "}
	got := NewEngine(c, fixedSelector(0), nil).WithAdvisor(ok).RecommendContext(context.Background(), seedEntries(), 10)
	if got.Advice != "Sal a caminar con un amigo." || !got.Personalized {
		t.Errorf("advisor advice not used: %+v", got)
	}
	if !strings.HasPrefix(ok.got, "Ansiedad|Current mood: 10/20.") {
		t.Errorf("advisor input = %q", ok.got)
	}

	failing := &stubAdvisor{err: errors.New("upstream unavailable")}
	got = NewEngine(c, fixedSelector(0), nil).WithAdvisor(failing).RecommendContext(context.Background(), seedEntries(), 10)
	if got.Advice != c.Advice["Ansiedad"][0] || got.Personalized {
		t.Errorf("advisor failure should keep catalog advice: %+v", got)
	}

	unused := &stubAdvisor{}
	NewEngine(c, fixedSelector(0), nil).WithAdvisor(unused).RecommendContext(context.Background(), nil, 10)
	if unused.got != "" {
		t.Error("advisor consulted for an empty recommendation")
	}
}

func TestNewRandomSelector(t *testing.T) {
	t.Parallel()
	a, b := NewRandomSelector(7), NewRandomSelector(7)
	for range 50 {
		x, y := a.Intn(30), b.Intn(30)
		if x != y {
			t.Fatalf("same seed diverged: %d vs %d", x, y)
		}
		if x < 0 || x >= 30 {
			t.Fatalf("Intn(30) = %d out of range", x)
		}
	}
}

func TestSmartNotifications(t *testing.T) {
	t.Parallel()
	c := DefaultCatalog()
	e := NewEngine(c, fixedSelector(0), nil)
	now := time.Date(2024, time.July, 21, 10, 0, 0, 0, time.UTC)

	types := func(ns []Notification) []string {
		out := []string{}
		for _, n := range ns {
			out = append(out, n.Type)
		}
		return out
	}

	t.Run("seed week", func(t *testing.T) {
		t.Parallel()
		got := e.SmartNotifications(seedEntries(), models.DefaultProfile(), now)
		if want := []string{NotificationReminder, NotificationCare}; !slices.Equal(types(got), want) {
			t.Fatalf("types = %q, want %q", types(got), want)
		}
		if got[0].Time != "09:00" || got[0].Title != c.Notifications.Reminder.Title {
			t.Errorf("reminder = %+v", got[0])
		}
		if got[1].Time != TimeNow {
			t.Errorf("care time = %q, want now", got[1].Time)
		}
	})

	t.Run("entry today and notifications off", func(t *testing.T) {
		t.Parallel()
		entries := []models.MoodEntry{{Date: "2024-07-21", Rating: 18}}
		profile := models.DefaultProfile()
		if got := e.SmartNotifications(entries, profile, now); len(got) != 0 {
			t.Errorf("got %q, want none", types(got))
		}
		profile.Notifications = false
		if got := e.SmartNotifications(nil, profile, now); len(got) != 0 {
			t.Errorf("got %q, want none with notifications off", types(got))
		}
	})

	t.Run("poor sleep yesterday", func(t *testing.T) {
		t.Parallel()
		entries := []models.MoodEntry{
			{Date: "2024-07-21", Rating: 18},
			{Date: "2024-07-20", Rating: 17, SleepQuality: 2},
		}
		got := e.SmartNotifications(entries, models.DefaultProfile(), now)
		if want := []string{NotificationSleep}; !slices.Equal(types(got), want) {
			t.Fatalf("types = %q, want %q", types(got), want)
		}
		if got[0].Time != TimeEvening {
			t.Errorf("sleep time = %q", got[0].Time)
		}
	})

	t.Run("unrecorded sleep and one good day", func(t *testing.T) {
		t.Parallel()
		entries := []models.MoodEntry{
			{Date: "2024-07-21", Rating: 14},
			{Date: "2024-07-20", Rating: 15},
			{Date: "2024-07-19", Rating: 3},
		}
		if got := e.SmartNotifications(entries, models.DefaultProfile(), now); len(got) != 0 {
			t.Errorf("got %q, want none", types(got))
		}
	})
}
