package models

import (
	"testing"
	"time"
)

func TestMoodEntry_Clone(t *testing.T) {
	t.Parallel()
	at := time.Date(2024, time.July, 20, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		tags    []string
		wantNil bool
	}{
		{"nil tags", nil, true},
		{"empty tags", []string{}, false},
		{"tags", []string{"Calma", "Gratitud"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := MoodEntry{Date: "2024-07-20", Rating: 7, Tags: tt.tags, RecordedAt: &at}
			c := e.Clone()
			if (c.Tags == nil) != tt.wantNil || len(c.Tags) != len(tt.tags) {
				t.Fatalf("Clone().Tags = %#v, want %#v", c.Tags, tt.tags)
			}
			if len(c.Tags) > 0 {
				c.Tags[0] = "changed"
				if e.Tags[0] == "changed" {
					t.Error("Clone() shares the tag slice")
				}
			}
			if c.RecordedAt == e.RecordedAt || !c.RecordedAt.Equal(at) {
				t.Errorf("Clone().RecordedAt = %v, want an equal copy", c.RecordedAt)
			}
		})
	}
}
