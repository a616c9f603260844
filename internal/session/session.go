// Package session holds the signed-in user, persisted across runs as one
// JSON blob in local storage.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/peatergripin/ecocommute/internal/models"
)

// StorageKey is the key the user record is stored under
const StorageKey = "userData"

// Session is the signed-in user, if any
type Session struct {
	store Store

	mu   sync.RWMutex
	user *models.User
}

// New creates a signed-out session backed by store
func New(store Store) *Session {
	return &Session{store: store}
}

// Load restores the user saved by a previous run. A missing record means
// signed out; an unreadable one is discarded.
func (s *Session) Load(ctx context.Context) error {
	raw, ok, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	if !ok {
		return nil
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil || u.ID == "" {
		slog.Warn("discarding unreadable session record", "error", err)
		if err := s.store.Delete(ctx, StorageKey); err != nil {
			return fmt.Errorf("discarding session: %w", err)
		}
		return nil
	}
	s.user = &u
	return nil
}

// Save signs user in and persists the record. The password is never
// stored.
func (s *Session) Save(ctx context.Context, user models.User) error {
	user.Password = ""
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.store.Put(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	return nil
}

// Clear signs out and removes the persisted record
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}

// Current returns the signed-in user
func (s *Session) Current() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// UserID returns the signed-in user's id, or "" when signed out
func (s *Session) UserID() string {
	u, _ := s.Current()
	return u.ID
}
