package storage

import (
	"context"
	"errors"
	"fmt"
)

// Cipher encrypts values before they reach a Backend
type Cipher interface {
	Encrypt(v any) (string, error)
	Decrypt(blob string, out any) error
}

// SecureStorage encrypts every value written to the underlying backend
type SecureStorage struct {
	backend Backend
	cipher  Cipher
}

// NewSecureStorage wraps backend with cipher
func NewSecureStorage(backend Backend, cipher Cipher) *SecureStorage {
	return &SecureStorage{backend: backend, cipher: cipher}
}

// SetItem encrypts v and stores it under key. A nil value removes the key.
func (s *SecureStorage) SetItem(ctx context.Context, key string, v any) error {
	blob, err := s.cipher.Encrypt(v)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", key, err)
	}
	if blob == "" {
		return s.RemoveItem(ctx, key)
	}
	return s.backend.Set(ctx, key, []byte(blob))
}

// GetItem decrypts the value stored under key into out.
// The bool result is false when nothing is stored under key.
func (s *SecureStorage) GetItem(ctx context.Context, key string, out any) (bool, error) {
	blob, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.cipher.Decrypt(string(blob), out); err != nil {
		return true, fmt.Errorf("decrypt %s: %w", key, err)
	}
	return true, nil
}

// RemoveItem deletes key from the backend
func (s *SecureStorage) RemoveItem(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Backend returns the underlying backend
func (s *SecureStorage) Backend() Backend {
	return s.backend
}
