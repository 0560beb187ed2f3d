package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tonyarciria-byte/psycomed/internal/security"
)

type note struct {
	Text string `json:"text"`
}

func TestSecureStorage_RoundTrip(t *testing.T) {
	t.Parallel()
	backend := NewMemoryBackend()
	s := NewSecureStorage(backend, security.NewCipher("test"))
	ctx := context.Background()

	if err := s.SetItem(ctx, KeyMoodEntries, []note{{Text: "Día difícil."}}); err != nil {
		t.Fatalf("SetItem() error = %v", err)
	}
	raw, err := backend.Get(ctx, KeyMoodEntries)
	if err != nil {
		t.Fatalf("backend Get() error = %v", err)
	}
	if strings.Contains(string(raw), "difícil") {
		t.Errorf("stored value is not encrypted: %s", raw)
	}

	var got []note
	found, err := s.GetItem(ctx, KeyMoodEntries, &got)
	if err != nil || !found {
		t.Fatalf("GetItem() = %v, %v; want found, nil", found, err)
	}
	if len(got) != 1 || got[0].Text != "Día difícil." {
		t.Errorf("GetItem() = %+v", got)
	}
}

func TestSecureStorage_Missing(t *testing.T) {
	t.Parallel()
	s := NewSecureStorage(NewMemoryBackend(), security.NewCipher(""))
	var out note
	found, err := s.GetItem(context.Background(), KeyUserProfile, &out)
	if err != nil || found {
		t.Errorf("GetItem(missing) = %v, %v; want false, nil", found, err)
	}
}

func TestSecureStorage_Corrupt(t *testing.T) {
	t.Parallel()
	backend := NewMemoryBackend()
	ctx := context.Background()
	if err := backend.Set(ctx, KeyUserProfile, []byte("not a token")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	s := NewSecureStorage(backend, security.NewCipher(""))
	var out note
	found, err := s.GetItem(ctx, KeyUserProfile, &out)
	if !found || !errors.Is(err, security.ErrDecrypt) {
		t.Errorf("GetItem(corrupt) = %v, %v; want true, ErrDecrypt", found, err)
	}
}

func TestSecureStorage_SetNilRemoves(t *testing.T) {
	t.Parallel()
	backend := NewMemoryBackend()
	s := NewSecureStorage(backend, security.NewCipher(""))
	ctx := context.Background()
	if err := s.SetItem(ctx, KeyMedications, []string{"a"}); err != nil {
		t.Fatalf("SetItem() error = %v", err)
	}
	if err := s.SetItem(ctx, KeyMedications, nil); err != nil {
		t.Fatalf("SetItem(nil) error = %v", err)
	}
	if _, err := backend.Get(ctx, KeyMedications); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after SetItem(nil) error = %v, want ErrNotFound", err)
	}
}
