package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Store implements ports.MissionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Mission
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Mission),
	}
}

// Save persists the mission in memory.
func (s *Store) Save(ctx context.Context, mission *domain.Mission) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := mission.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[mission.ID] = copied
	return nil
}

// Load retrieves the mission from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.data[id]
	if !ok {
		return nil, domain.ErrMissionNotFound
	}

	// Copy on read so the caller can't mutate the stored record by pointer
	return m.Clone(), nil
}

// Delete removes the mission.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored mission IDs, oldest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	missions := make([]*domain.Mission, 0, len(s.data))
	for _, m := range s.data {
		missions = append(missions, m)
	}
	slices.SortFunc(missions, func(a, b *domain.Mission) int {
		return a.StartedAt.Compare(b.StartedAt)
	})

	ids := make([]string, len(missions))
	for i, m := range missions {
		ids[i] = m.ID
	}
	return ids, nil
}
