// Package prefs stores the ingredient lists in the desktop app's
// preferences.
package prefs

import (
	"context"
	"sync"

	"ingredient-scanner/internal/wordlist"

	"fyne.io/fyne/v2"
)

// Store adapts fyne.Preferences to wordlist.Store. Each list is held as its
// JSON array string under the list's storage key.
type Store struct {
	mu    sync.Mutex
	prefs fyne.Preferences
}

// NewStore wraps the application's preferences.
func NewStore(p fyne.Preferences) *Store {
	return &Store{prefs: p}
}

func (s *Store) Load(_ context.Context, key string) ([]string, bool, error) {
	s.mu.Lock()
	raw := s.prefs.String(key)
	s.mu.Unlock()
	if raw == "" {
		return nil, false, nil
	}
	phrases, err := wordlist.DecodePhrases(raw)
	if err != nil {
		return nil, false, err
	}
	return phrases, true, nil
}

func (s *Store) Save(_ context.Context, key string, phrases []string) error {
	raw, err := wordlist.EncodePhrases(phrases)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.prefs.SetString(key, raw)
	s.mu.Unlock()
	return nil
}

func (s *Store) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	s.prefs.RemoveValue(key)
	s.mu.Unlock()
	return nil
}
