package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates robot access, ensuring one mission at a time per robot.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.MissionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks (default 5 minutes).
// It should exceed the longest mission.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new Manager with the given mission store.
func NewManager(store ports.MissionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 5 * time.Minute,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(robotID) after unlocking.
func (m *Manager) acquire(robotID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[robotID]
	if !exists {
		entry = &lockEntry{}
		m.locks[robotID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(robotID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[robotID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, robotID)
	}
}

// WithLock executes fn while holding the lock of the robot.
func (m *Manager) WithLock(ctx context.Context, robotID string, fn func(context.Context) error) error {
	entry := m.acquire(robotID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(robotID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, robotID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// The mission context may be done by now; release with a fresh one.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"robot_id", robotID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Run executes a mission for robotID under its lock and records the result.
// run receives the pending mission and fills it in; the record is saved even when run
// fails, and run's error is returned.
func (m *Manager) Run(ctx context.Context, robotID string, tasks []domain.Task, run func(context.Context, *domain.Mission) error) (*domain.Mission, error) {
	mission := domain.NewMission(robotID, tasks)

	err := m.WithLock(ctx, robotID, func(ctx context.Context) error {
		runErr := run(ctx, mission)
		if saveErr := m.store.Save(context.WithoutCancel(ctx), mission); saveErr != nil {
			return errors.Join(runErr, fmt.Errorf("failed to record mission %s: %w", mission.ID, saveErr))
		}
		return runErr
	})
	return mission, err
}

// Load retrieves a mission record.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Mission, error) {
	return m.store.Load(ctx, id)
}

// Delete removes a mission record.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// History returns the recorded missions of robotID in store order.
// An empty robotID returns every mission.
func (m *Manager) History(ctx context.Context, robotID string) ([]*domain.Mission, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	missions := make([]*domain.Mission, 0, len(ids))
	for _, id := range ids {
		mission, err := m.store.Load(ctx, id)
		if errors.Is(err, domain.ErrMissionNotFound) {
			continue // expired between List and Load
		}
		if err != nil {
			return nil, err
		}
		if robotID == "" || mission.RobotID == robotID {
			missions = append(missions, mission)
		}
	}
	return missions, nil
}

// Store returns the underlying mission store.
func (m *Manager) Store() ports.MissionStore {
	return m.store
}
