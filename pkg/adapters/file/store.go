package file

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Store implements ports.MissionStore using the local filesystem.
// It stores each mission as a JSON file in a configured directory.
type Store struct {
	BasePath string

	mu sync.RWMutex
}

// NewStore creates a new Store with the given base path.
// If basePath is empty, it defaults to ".waypoint/missions".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".waypoint", "missions")
	}
	return &Store{BasePath: basePath}
}

func (f *Store) path(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("invalid mission id %q", id)
	}
	return filepath.Join(f.BasePath, id+".json"), nil
}

// Save persists the mission to a JSON file. The write is atomic: readers see either
// the previous record or the new one.
func (f *Store) Save(ctx context.Context, mission *domain.Mission) error {
	filePath, err := f.path(mission.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(mission, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal mission: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure mission directory: %w", err)
	}
	tmp, err := os.CreateTemp(f.BasePath, ".mission-*")
	if err != nil {
		return fmt.Errorf("failed to write mission file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write mission file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write mission file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to write mission file: %w", err)
	}
	return nil
}

// Load retrieves a mission from its JSON file.
func (f *Store) Load(ctx context.Context, id string) (*domain.Mission, error) {
	filePath, err := f.path(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMissionNotFound, err)
	}

	f.mu.RLock()
	data, err := os.ReadFile(filePath)
	f.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrMissionNotFound
		}
		return nil, fmt.Errorf("failed to read mission file: %w", err)
	}

	var mission domain.Mission
	if err := json.Unmarshal(data, &mission); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mission: %w", err)
	}
	return &mission, nil
}

// Delete removes the mission file.
func (f *Store) Delete(ctx context.Context, id string) error {
	filePath, err := f.path(id)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete mission file: %w", err)
	}
	return nil
}

// List returns the stored mission IDs, oldest first.
func (f *Store) List(ctx context.Context) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(f.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}

	type stamped struct {
		id      string
		started time.Time
	}
	var found []stamped
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(f.BasePath, name))
		if err != nil {
			return nil, fmt.Errorf("failed to list missions: %w", err)
		}
		var head struct {
			StartedAt time.Time `json:"started_at"`
		}
		_ = json.Unmarshal(data, &head) // unreadable records sort first
		found = append(found, stamped{id: strings.TrimSuffix(name, ".json"), started: head.StartedAt})
	}

	slices.SortStableFunc(found, func(a, b stamped) int {
		if c := a.started.Compare(b.started); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	ids := make([]string, len(found))
	for i, s := range found {
		ids[i] = s.id
	}
	return ids, nil
}
