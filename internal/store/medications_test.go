package store

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tonyarciria-byte/psycomed/internal/models"
)

// Wednesday 2024-07-17 08:00 UTC
var medNow = time.Date(2024, time.July, 17, 8, 0, 0, 0, time.UTC)

func addTestMedication(t *testing.T, s *Store, alarm string, days ...int) models.Medication {
	t.Helper()
	med, msgs, err := s.AddMedication(context.Background(), models.Medication{
		Name:         "Sertralina",
		Dosage:       "50mg",
		Frequency:    "Diario",
		AlarmEnabled: alarm != "",
		AlarmTime:    alarm,
		AlarmDays:    days,
	}, medNow)
	if err != nil {
		t.Fatalf("AddMedication() error = %v (%v)", err, msgs)
	}
	return med
}

func TestAddMedication(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	med := addTestMedication(t, s, "")
	if med.ID == uuid.Nil {
		t.Error("AddMedication() did not assign an id")
	}
	if !med.CreatedAt.Equal(medNow) {
		t.Errorf("CreatedAt = %v, want %v", med.CreatedAt, medNow)
	}
	if got := s.Medications(); len(got) != 1 || got[0].ID != med.ID {
		t.Errorf("Medications() = %+v", got)
	}

	_, msgs, err := s.AddMedication(context.Background(), models.Medication{Name: " "}, medNow)
	if !errors.Is(err, ErrValidation) || !slices.Contains(msgs, "Medication name is required") {
		t.Errorf("AddMedication(blank) = %v, %v; want name violation", msgs, err)
	}
}

func TestUpdateAndDeleteMedication(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	ctx := context.Background()
	med := addTestMedication(t, s, "")

	updated, _, err := s.UpdateMedication(ctx, med.ID, models.Medication{Name: "Sertralina", Dosage: "100mg"})
	if err != nil {
		t.Fatalf("UpdateMedication() error = %v", err)
	}
	if updated.Dosage != "100mg" || updated.ID != med.ID || !updated.CreatedAt.Equal(med.CreatedAt) {
		t.Errorf("UpdateMedication() = %+v", updated)
	}
	if _, _, err := s.UpdateMedication(ctx, uuid.New(), updated); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateMedication(missing) error = %v, want ErrNotFound", err)
	}

	deleted, err := s.DeleteMedication(ctx, med.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteMedication() = %v, %v", deleted, err)
	}
	if len(s.Medications()) != 0 {
		t.Error("medication still listed after delete")
	}
}

func TestLogMedication_BeforeThenAfter(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	ctx := context.Background()
	med := addTestMedication(t, s, "")

	first, err := s.LogMedication(ctx, med.ID, models.MedicationMoodAnxious, "", medNow)
	if err != nil {
		t.Fatalf("LogMedication() first error = %v", err)
	}
	if first.MoodBefore != models.MedicationMoodAnxious || first.Completed() {
		t.Errorf("first log = %+v, want before-mood only", first)
	}
	if !first.FollowUpAt.Equal(medNow.Add(4 * time.Hour)) {
		t.Errorf("FollowUpAt = %v, want four hours later", first.FollowUpAt)
	}
	if got := s.MedicationStats(medNow); got.PendingToday != 1 || got.CompletedToday != 0 {
		t.Errorf("MedicationStats() after first log = %+v", got)
	}

	second, err := s.LogMedication(ctx, med.ID, models.MedicationMoodHappy, "mejor", medNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("LogMedication() second error = %v", err)
	}
	if second.ID != first.ID || second.MoodAfter != models.MedicationMoodHappy || !second.Completed() {
		t.Errorf("second log = %+v, want the same intake completed", second)
	}
	if got := s.MedicationStats(medNow); got.PendingToday != 0 || got.CompletedToday != 1 {
		t.Errorf("MedicationStats() after completion = %+v", got)
	}

	if _, err := s.LogMedication(ctx, med.ID, models.MedicationMoodSad, "", medNow.Add(2*time.Hour)); !errors.Is(err, ErrAlreadyLogged) {
		t.Errorf("third log error = %v, want ErrAlreadyLogged", err)
	}

	tomorrow, err := s.LogMedication(ctx, med.ID, models.MedicationMoodNeutral, "", medNow.Add(24*time.Hour))
	if err != nil || tomorrow.ID == first.ID {
		t.Errorf("next-day log = %+v, %v; want a new intake", tomorrow, err)
	}
	if n := len(s.MedicationLog()); n != 2 {
		t.Errorf("len(MedicationLog()) = %d, want 2", n)
	}
}

func TestLogMedication_Errors(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	med := addTestMedication(t, s, "")
	if _, err := s.LogMedication(context.Background(), med.ID, "euphoric", "", medNow); !errors.Is(err, ErrInvalidMood) {
		t.Errorf("LogMedication(bad mood) error = %v, want ErrInvalidMood", err)
	}
	if _, err := s.LogMedication(context.Background(), uuid.New(), models.MedicationMoodHappy, "", medNow); !errors.Is(err, ErrNotFound) {
		t.Errorf("LogMedication(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMedicationStats_Alarms(t *testing.T) {
	t.Parallel()
	wednesday := int(time.Wednesday)
	tests := []struct {
		name    string
		alarm   string
		days    []int
		at      time.Time
		pending int
	}{
		{"before alarm", "09:00", []int{wednesday}, medNow, 1},
		{"within grace period", "07:50", []int{wednesday}, medNow, 1},
		{"grace period over", "07:40", []int{wednesday}, medNow, 0},
		{"other weekday", "09:00", []int{int(time.Monday)}, medNow, 0},
		{"no alarm", "", nil, medNow, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, _ := newTestStore(t)
			addTestMedication(t, s, tt.alarm, tt.days...)
			got := s.MedicationStats(tt.at)
			if got.TotalMedications != 1 || got.PendingToday != tt.pending {
				t.Errorf("MedicationStats() = %+v, want pending %d", got, tt.pending)
			}
		})
	}
}

func TestDeleteLogEntry(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	ctx := context.Background()
	med := addTestMedication(t, s, "")
	entry, err := s.LogMedication(ctx, med.ID, models.MedicationMoodHappy, "", medNow)
	if err != nil {
		t.Fatalf("LogMedication() error = %v", err)
	}
	if deleted, err := s.DeleteLogEntry(ctx, entry.ID); err != nil || !deleted {
		t.Fatalf("DeleteLogEntry() = %v, %v", deleted, err)
	}
	if deleted, _ := s.DeleteLogEntry(ctx, entry.ID); deleted {
		t.Error("DeleteLogEntry(missing) = true, want false")
	}
}
