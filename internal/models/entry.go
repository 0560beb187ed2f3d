package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"
)

const (
	// RatingMin is the lowest mood rating on the canonical scale
	RatingMin = 1
	// RatingMax is the highest mood rating on the canonical scale
	RatingMax = 20
	// ReferenceScaleMax is the top of the 1-10 scale some thresholds were tuned on
	ReferenceScaleMax = 10

	// SleepQualityMin is the lowest recorded sleep quality
	SleepQualityMin = 1
	// SleepQualityMax is the highest recorded sleep quality
	SleepQualityMax = 5

	// MaxTags is the maximum number of tags on a single entry
	MaxTags = 5

	// DateLayout is the calendar date format used as the entry key
	DateLayout = "2006-01-02"

	// UntitledLabel is shown for entries without a title or note
	UntitledLabel = "Sin título"

	titlePreviewLength = 30
)

// FromReferenceScale converts a threshold expressed on the 1-10 reference scale
// to the canonical 1-20 rating scale.
func FromReferenceScale(v int) int {
	return v * RatingMax / ReferenceScaleMax
}

// SleepQuality is a 1-5 sleep rating. Zero means not recorded.
// Legacy data stored a boolean; true decodes as 5 and false as 1.
type SleepQuality int

// Recorded reports whether a sleep quality value was captured
func (s SleepQuality) Recorded() bool {
	return s != 0
}

// UnmarshalJSON accepts integers, legacy booleans and null
func (s *SleepQuality) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", "":
		*s = 0
		return nil
	case "true":
		*s = SleepQualityMax
		return nil
	case "false":
		*s = SleepQualityMin
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid sleep quality %s: %w", string(data), err)
	}
	*s = SleepQuality(int(f))
	return nil
}

// MoodEntry is one day's record of mood, sleep, tags and journal note
type MoodEntry struct {
	Date         string       `json:"date" validate:"required,isodate"`
	Rating       int          `json:"rating" validate:"min=1,max=20"`
	Tags         []string     `json:"tags" validate:"max=5"`
	SleepQuality SleepQuality `json:"sleepQuality,omitempty" validate:"sleep_quality"`
	Note         string       `json:"note,omitempty"`
	Title        string       `json:"title,omitempty"`
	RecordedAt   *time.Time   `json:"recordedAt,omitempty"`
}

// Day parses the entry date. The second return is false when the date is malformed.
func (e MoodEntry) Day() (time.Time, bool) {
	t, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Hour returns the hour of day the entry was recorded. Date-only entries count as midday.
func (e MoodEntry) Hour() int {
	if e.RecordedAt == nil {
		return 12
	}
	return e.RecordedAt.Hour()
}

// DisplayTitle returns the title, or a preview of the note when no title was set
func (e MoodEntry) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	if e.Note == "" {
		return UntitledLabel
	}
	if utf8.RuneCountInString(e.Note) <= titlePreviewLength {
		return e.Note
	}
	runes := []rune(e.Note)
	return string(runes[:titlePreviewLength]) + "..."
}

// Clone returns a deep copy of the entry
func (e MoodEntry) Clone() MoodEntry {
	c := e
	c.Tags = slices.Clone(e.Tags)
	if e.RecordedAt != nil {
		t := *e.RecordedAt
		c.RecordedAt = &t
	}
	return c
}

// EntryInput is a partial entry submission. Nil fields keep the stored value on merge.
type EntryInput struct {
	Date         string        `json:"date"`
	Rating       *int          `json:"rating,omitempty"`
	SleepQuality *SleepQuality `json:"sleepQuality,omitempty"`
	Tags         *[]string     `json:"tags,omitempty"`
	Note         *string       `json:"note,omitempty"`
	Title        *string       `json:"title,omitempty"`
	RecordedAt   *time.Time    `json:"recordedAt,omitempty"`
}

// ApplyTo shallow-merges the present fields of the input into base
func (in EntryInput) ApplyTo(base MoodEntry) MoodEntry {
	out := base.Clone()
	out.Date = in.Date
	if in.Rating != nil {
		out.Rating = *in.Rating
	}
	if in.SleepQuality != nil {
		out.SleepQuality = *in.SleepQuality
	}
	if in.Tags != nil {
		out.Tags = append([]string(nil), (*in.Tags)...)
	}
	if in.Note != nil {
		out.Note = *in.Note
	}
	if in.Title != nil {
		out.Title = *in.Title
	}
	if in.RecordedAt != nil {
		t := *in.RecordedAt
		out.RecordedAt = &t
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

// EntryStats summarises a list of entries for the history view
type EntryStats struct {
	Total int `json:"total"`
	// Average is the mean rating expressed as a percentage of RatingMax
	Average int `json:"average"`
	Best    int `json:"best"`
	Worst   int `json:"worst"`
}
