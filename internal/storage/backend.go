package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Well-known storage keys
const (
	KeyUserProfile   = "psicomed_userProfile"
	KeyMoodEntries   = "moodEntries"
	KeyMedications   = "medications"
	KeyMedicationLog = "medicationLog"
)

// ErrNotFound is returned by Get when a key has no stored value
var ErrNotFound = errors.New("storage key not found")

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_.-]{0,127}$`)

// Backend is a key-value persistence medium for opaque blobs
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// ValidateKey rejects keys that are empty, too long, or not safe as file names
func ValidateKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// Ensure concrete types implement the interface
var (
	_ Backend = (*MemoryBackend)(nil)
	_ Backend = (*FileBackend)(nil)
	_ Backend = (*PostgresBackend)(nil)
	_ Backend = (*RedisBackend)(nil)
)
