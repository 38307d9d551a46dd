package http

import (
	"log/slog"
	"sync"
)

// Event is one server-sent event.
type Event struct {
	Name string
	Data []byte
}

// StreamManager fans events out to SSE subscribers keyed by robot ID.
// Subscribers registered under the empty key receive every robot's events.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Event]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Event]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for robotID and returns it with its cancel function.
func (sm *StreamManager) Subscribe(robotID string) (<-chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 32)
	if _, ok := sm.subscribers[robotID]; !ok {
		sm.subscribers[robotID] = make(map[chan<- Event]struct{})
	}
	sm.subscribers[robotID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[robotID]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, robotID)
			}
		}
	}
}

// Broadcast sends ev to the subscribers of robotID and to the global subscribers.
func (sm *StreamManager) Broadcast(robotID string, ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("StreamManager: Broadcasting", "robot_id", robotID, "event", ev.Name, "payload_size", len(ev.Data))

	keys := []string{robotID}
	if robotID != "" {
		keys = append(keys, "")
	}
	for _, key := range keys {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- ev:
			default:
				// Slow client.
				sm.logger.Warn("SSE: Client buffer full, dropping event", "robot_id", robotID, "event", ev.Name)
			}
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (sm *StreamManager) Subscribers() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	n := 0
	for _, subs := range sm.subscribers {
		n += len(subs)
	}
	return n
}
