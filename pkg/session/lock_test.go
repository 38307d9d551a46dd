package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
)

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, mission *domain.Mission) error { return nil }
func (m *MockStore) Load(ctx context.Context, id string) (*domain.Mission, error) {
	return nil, domain.ErrMissionNotFound
}
func (m *MockStore) Delete(ctx context.Context, id string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error)  { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(&MockStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		robot := fmt.Sprintf("robot-%d", i)
		_, _ = mgr.Run(ctx, robot, nil, func(ctx context.Context, m *domain.Mission) error {
			m.Finish(domain.OutcomeCompleted)
			return nil
		})
	}

	lockCount := len(mgr.locks)
	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after %d missions", lockCount, count)
	}
}
