package store

import (
	"context"
	"slices"
	"sync"

	"github.com/i474232898/park-explorer/internal/park"
)

// MemoryStore is a concurrency-safe in-memory preferences store keyed by user.
type MemoryStore struct {
	mu sync.RWMutex

	// key: user id
	data map[string]park.UserPreferences
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]park.UserPreferences),
	}
}

// Get returns the stored preferences for userID, and false when none are stored.
func (s *MemoryStore) Get(_ context.Context, userID string) (park.UserPreferences, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefs, ok := s.data[userID]
	if !ok {
		return park.UserPreferences{}, false, nil
	}
	return clonePreferences(prefs), true, nil
}

// Put replaces the preferences of userID.
func (s *MemoryStore) Put(_ context.Context, userID string, prefs park.UserPreferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[userID] = clonePreferences(prefs)
	return nil
}

// clonePreferences copies the slice and pointer fields so callers never share
// memory with the store.
func clonePreferences(p park.UserPreferences) park.UserPreferences {
	out := p
	out.PreferredActivities = slices.Clone(p.PreferredActivities)
	out.HikingDuration = cloneFloat(p.HikingDuration)
	out.TravelDistance = cloneFloat(p.TravelDistance)
	out.Budget = cloneFloat(p.Budget)
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
