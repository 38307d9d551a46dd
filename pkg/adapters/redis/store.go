package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "waypoint:mission:"

// Store implements ports.MissionStore on Redis.
// Missions are stored as JSON under prefix+"id:"+id; a sorted set at prefix+"index" scored by
// expiry time (or start time when there is no TTL) backs List.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithPrefix sets the key prefix (default "waypoint:mission:").
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL expires missions after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New connects to Redis at addr.
func New(addr, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Records live under prefix+"id:" so no mission ID can name the index key.
func (s *Store) key(id string) string {
	return s.prefix + "id:" + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the mission as JSON and indexes it.
func (s *Store) Save(ctx context.Context, mission *domain.Mission) error {
	data, err := json.Marshal(mission)
	if err != nil {
		return fmt.Errorf("failed to marshal mission: %w", err)
	}

	score := float64(mission.StartedAt.UnixNano())
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).UnixNano())
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.key(mission.ID), data, s.ttl)
		pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: mission.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save mission %s: %w", mission.ID, err)
	}
	return nil
}

// Load retrieves a mission.
func (s *Store) Load(ctx context.Context, id string) (*domain.Mission, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, domain.ErrMissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mission %s: %w", id, err)
	}

	var m domain.Mission
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mission %s: %w", id, err)
	}
	return &m, nil
}

// Delete removes a mission and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, s.key(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete mission %s: %w", id, err)
	}
	return nil
}

// List returns the indexed mission IDs in score order.
// With a TTL, expired entries are removed from the index lazily.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if s.ttl > 0 {
		now := strconv.FormatInt(time.Now().UnixNano(), 10)
		if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", now).Err(); err != nil {
			return nil, fmt.Errorf("failed to clean mission index: %w", err)
		}
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	return ids, nil
}
