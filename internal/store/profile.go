package store

import (
	"context"

	"github.com/tonyarciria-byte/psycomed/internal/models"
	"github.com/tonyarciria-byte/psycomed/internal/storage"
	"github.com/tonyarciria-byte/psycomed/internal/validation"
)

// ProfileUpdate describes side effects of a profile change the UI must apply
type ProfileUpdate struct {
	Profile         models.UserProfile `json:"profile"`
	LanguageChanged bool               `json:"languageChanged"`
	Locale          string             `json:"locale"`
}

// Profile returns the current profile
func (s *Store) Profile() models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProfile(s.profile)
}

// UpdateProfile validates candidate and replaces the stored profile with it.
// On validation failure nothing changes and the messages are returned with ErrValidation.
func (s *Store) UpdateProfile(ctx context.Context, candidate models.UserProfile) (ProfileUpdate, []string, error) {
	candidate.Name = validation.SanitizeText(validation.SanitizeInput(candidate.Name))
	candidate.Country = validation.SanitizeText(validation.SanitizeInput(candidate.Country))
	candidate.Diagnosis = validation.SanitizeText(validation.SanitizeInput(candidate.Diagnosis))
	if msgs := validation.ValidateUserProfile(&candidate); len(msgs) > 0 {
		return ProfileUpdate{}, msgs, ErrValidation
	}
	if candidate.EmergencyContacts == nil {
		candidate.EmergencyContacts = []models.EmergencyContact{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	update := ProfileUpdate{
		Profile:         cloneProfile(candidate),
		LanguageChanged: candidate.Language != s.profile.Language,
		Locale:          candidate.Locale(),
	}
	s.profile = candidate
	return update, nil, s.persist(ctx, storage.KeyUserProfile, s.profile)
}

// ResetProfile restores the default profile
func (s *Store) ResetProfile(ctx context.Context) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = models.DefaultProfile()
	return cloneProfile(s.profile), s.persist(ctx, storage.KeyUserProfile, s.profile)
}

func cloneProfile(p models.UserProfile) models.UserProfile {
	c := p
	c.EmergencyContacts = append([]models.EmergencyContact{}, p.EmergencyContacts...)
	if p.CustomTheme != nil {
		c.CustomTheme = append([]byte(nil), p.CustomTheme...)
	}
	return c
}
