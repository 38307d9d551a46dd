package simulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/navigation"
	"github.com/aretw0/waypoint/pkg/worldmap"
)

// ErrRejected is returned when the simulated world refuses an action.
var ErrRejected = errors.New("action rejected")

type action func(args []string) error

// Simulator is a robot moving on a live copy of a map.
// It is safe for concurrent use; actions are applied one at a time.
type Simulator struct {
	mu    sync.Mutex
	m     *worldmap.Map
	state *domain.WorldState

	delay       time.Duration
	dynamic     bool
	probability float64
	rng         *rand.Rand
	logger      *slog.Logger

	actions map[string]action
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithStepDelay makes every action take d.
func WithStepDelay(d time.Duration) Option {
	return func(s *Simulator) {
		s.delay = d
	}
}

// WithReshuffle enables the dynamic world: after each move every uncarried box jumps to
// a random point with the given probability. The seed makes runs reproducible.
func WithReshuffle(probability float64, seed uint64) Option {
	return func(s *Simulator) {
		s.dynamic = probability > 0
		s.probability = probability
		s.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// WithState starts the simulation from state instead of the map's initial placement.
func WithState(state *domain.WorldState) Option {
	return func(s *Simulator) {
		s.state = state.Clone()
		s.state.ResetSearch()
	}
}

// New creates a simulator over m.
func New(m *worldmap.Map, opts ...Option) *Simulator {
	s := &Simulator{
		m:      m,
		state:  m.InitialState(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.actions = map[string]action{
		navigation.OpMoveTo:  s.moveTo,
		navigation.OpCross:   s.cross,
		navigation.OpOpen:    s.open,
		navigation.OpClose:   s.close,
		navigation.OpPickup:  s.pickup,
		navigation.OpPutdown: s.putdown,
	}
	return s
}

// Map returns the static map the simulator runs on.
func (s *Simulator) Map() *worldmap.Map {
	return s.m
}

// Sense returns a snapshot of the live world.
func (s *Simulator) Sense(ctx context.Context) (*domain.WorldState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state.Clone()
	snap.Crossed = nil
	snap.ResetSearch()
	return snap, nil
}

// Perceive returns the objects of the room the robot is in.
func (s *Simulator) Perceive() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.m.RoomOf(s.state.RobotAt())
	if !ok {
		return nil
	}
	r, _ := s.m.Room(room)
	return slices.Clone(r.Objects)
}

// Supports reports whether the simulator implements the operator.
func (s *Simulator) Supports(operator string) bool {
	_, ok := s.actions[operator]
	return ok
}

// Execute performs one primitive task.
func (s *Simulator) Execute(ctx context.Context, task domain.Task) error {
	act, ok := s.actions[task.Name]
	if !ok {
		return fmt.Errorf("%w: unknown operator %q", ErrRejected, task.Name)
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := act(task.Args); err != nil {
		s.logger.Warn("Action rejected", "task", task.String(), "at", s.state.RobotAt(), "err", err)
		return err
	}
	s.logger.Debug("Action done", "task", task.String(), "at", s.state.RobotAt())
	return nil
}

func rejectf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRejected, fmt.Sprintf(format, args...))
}

func arity(name string, args []string, n int) error {
	if len(args) != n {
		return rejectf("%s expects %d arguments, got %d", name, n, len(args))
	}
	return nil
}

// reachable reports whether the robot can step from its point to p, and through
// which door.
func (s *Simulator) reachable(p string) (worldmap.Door, bool, error) {
	here := s.state.RobotAt()
	if !slices.Contains(s.m.Adjacent(here), p) {
		return worldmap.Door{}, false, rejectf("cannot move from %s to %s", here, p)
	}
	if s.m.SameRoom(here, p) {
		return worldmap.Door{}, false, nil
	}
	d, ok := s.m.DoorBetween(here, p)
	if !ok {
		return worldmap.Door{}, false, rejectf("no door between %s and %s", here, p)
	}
	if s.state.Doors[d.Name] != domain.DoorOpen {
		return d, true, rejectf("%s is closed", d.Name)
	}
	return d, true, nil
}

func (s *Simulator) moveTo(args []string) error {
	if err := arity(navigation.OpMoveTo, args, 1); err != nil {
		return err
	}
	if _, _, err := s.reachable(args[0]); err != nil {
		return err
	}
	s.state.Positions[domain.Robot] = args[0]
	s.reshuffle()
	return nil
}

func (s *Simulator) cross(args []string) error {
	if err := arity(navigation.OpCross, args, 2); err != nil {
		return err
	}
	door, p := args[0], args[1]
	d, viaDoor, err := s.reachable(p)
	if err != nil {
		return err
	}
	if !viaDoor || d.Name != door {
		return rejectf("cannot cross %s from %s to %s", door, s.state.RobotAt(), p)
	}
	s.state.Positions[domain.Robot] = p
	s.state.Crossed = append(s.state.Crossed, door)
	s.reshuffle()
	return nil
}

func (s *Simulator) open(args []string) error {
	return s.setDoor(navigation.OpOpen, domain.DoorOpen, args)
}

func (s *Simulator) close(args []string) error {
	return s.setDoor(navigation.OpClose, domain.DoorClosed, args)
}

func (s *Simulator) setDoor(name string, status domain.DoorStatus, args []string) error {
	if err := arity(name, args, 1); err != nil {
		return err
	}
	d, ok := s.m.Door(args[0])
	if !ok {
		return rejectf("unknown door %q", args[0])
	}
	if here := s.state.RobotAt(); here != d.From && here != d.To {
		return rejectf("%s is not reachable from %s", d.Name, here)
	}
	s.state.Doors[d.Name] = status
	return nil
}

func (s *Simulator) pickup(args []string) error {
	if err := arity(navigation.OpPickup, args, 1); err != nil {
		return err
	}
	b := args[0]
	if s.state.Carrying != "" {
		return rejectf("already carrying %s", s.state.Carrying)
	}
	at, ok := s.state.Positions[b]
	if !ok || b == domain.Robot {
		return rejectf("unknown box %q", b)
	}
	if at != s.state.RobotAt() {
		return rejectf("cannot pick up %s at %s from %s", b, at, s.state.RobotAt())
	}
	s.state.Carrying = b
	delete(s.state.Positions, b)
	return nil
}

func (s *Simulator) putdown(args []string) error {
	if err := arity(navigation.OpPutdown, args, 1); err != nil {
		return err
	}
	b := args[0]
	if s.state.Carrying != b {
		return rejectf("not carrying %s", b)
	}
	s.state.Carrying = ""
	s.state.Positions[b] = s.state.RobotAt()
	return nil
}

// reshuffle moves uncarried boxes at random. Callers hold mu.
func (s *Simulator) reshuffle() {
	if !s.dynamic {
		return
	}
	points := s.m.Points()
	for _, b := range s.state.Boxes() {
		old, ok := s.state.Positions[b]
		if !ok || s.rng.Float64() >= s.probability {
			continue
		}
		s.state.Positions[b] = points[s.rng.IntN(len(points))]
		s.logger.Info("Reshuffled box", "box", b, "from", old, "to", s.state.Positions[b])
	}
}
