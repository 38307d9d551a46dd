package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	args := m.Called(ctx, key, ttl)
	if fn, ok := args.Get(0).(ports.UnlockFunc); ok {
		return fn, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestManager_SerialisesMissionsPerRobot(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	var active, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Run(ctx, "my_rob", nil, func(ctx context.Context, m *domain.Mission) error {
				n := atomic.AddInt32(&active, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond) // Simulate execution
				atomic.AddInt32(&active, -1)
				m.Finish(domain.OutcomeCompleted)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak, "missions of one robot must never overlap")

	history, err := manager.History(ctx, "my_rob")
	require.NoError(t, err)
	assert.Len(t, history, 10)
}

func TestManager_RecordsFailedMissions(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	boom := errors.New("boom")

	mission, err := manager.Run(ctx, "my_rob", []domain.Task{domain.NewTask("navigate_to", "p9")}, func(ctx context.Context, m *domain.Mission) error {
		m.Error = boom.Error()
		m.Finish(domain.OutcomeFailed)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, mission)

	loaded, err := manager.Load(ctx, mission.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailed, loaded.Outcome)
	assert.Equal(t, "boom", loaded.Error)

	others, err := manager.History(ctx, "other_rob")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestManager_DistributedLock(t *testing.T) {
	locker := new(mockLocker)
	var released bool
	unlock := ports.UnlockFunc(func(ctx context.Context) error {
		released = true
		return nil
	})
	locker.On("Lock", mock.Anything, "my_rob", 2*time.Minute).Return(unlock, nil).Once()

	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(2*time.Minute))
	_, err := manager.Run(context.Background(), "my_rob", nil, func(ctx context.Context, m *domain.Mission) error {
		assert.False(t, released, "lock must be held while the mission runs")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, released)
	locker.AssertExpectations(t)
}

func TestManager_DistributedLockFailure(t *testing.T) {
	locker := new(mockLocker)
	locker.On("Lock", mock.Anything, "my_rob", mock.Anything).Return(nil, errors.New("redis down"))

	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker))
	called := false
	_, err := manager.Run(context.Background(), "my_rob", nil, func(ctx context.Context, m *domain.Mission) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}
