package waypoint

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/htn"
	"github.com/aretw0/waypoint/pkg/navigation"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/aretw0/waypoint/pkg/worldmap"
)

// Engine is the high-level entry point for the Waypoint library.
// It wires a map, the navigation domain and the HTN planner behind a simplified API.
type Engine struct {
	m         *worldmap.Map
	mapPath   string
	domain    *htn.Domain
	planner   *htn.Planner
	hooks     domain.PlannerHooks
	logger    *slog.Logger
	verbosity int
	maxDepth  int
	Name      string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithMap plans over m instead of the built-in map.
func WithMap(m *worldmap.Map) Option {
	return func(e *Engine) {
		e.m = m
	}
}

// WithMapFile loads the map from a YAML file.
func WithMapFile(path string) Option {
	return func(e *Engine) {
		e.mapPath = path
	}
}

// WithHooks registers observability hooks. Successive calls are merged.
func WithHooks(hooks domain.PlannerHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithVerbosity sets the planner trace level (0 silent, 3 every expansion).
func WithVerbosity(level int) Option {
	return func(e *Engine) {
		e.verbosity = level
	}
}

// WithMaxDepth bounds the decomposition depth; 0 means unbounded.
func WithMaxDepth(depth int) Option {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// New initializes a new Waypoint Engine.
// Without WithMap or WithMapFile it plans over the built-in three-room map.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.m == nil {
		if eng.mapPath != "" {
			m, err := worldmap.Load(eng.mapPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load map: %w", err)
			}
			eng.m = m
		} else {
			eng.m = worldmap.Default()
		}
	}
	eng.Name = eng.m.Name

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("map", eng.Name)
	}

	d, err := navigation.NewDomain(eng.m)
	if err != nil {
		return nil, fmt.Errorf("failed to build domain: %w", err)
	}
	eng.domain = d
	eng.planner = htn.NewPlanner(d,
		htn.WithLogger(eng.logger),
		htn.WithHooks(eng.hooks),
		htn.WithVerbosity(eng.verbosity),
		htn.WithMaxDepth(eng.maxDepth),
	)
	return eng, nil
}

// Plan finds a plan for tasks from state. A nil state means the map's initial state.
// It returns domain.ErrNoPlan when no decomposition exists.
func (e *Engine) Plan(ctx context.Context, state *domain.WorldState, tasks ...domain.Task) (domain.Plan, error) {
	if state == nil {
		state = e.m.InitialState()
	}
	return e.planner.Plan(ctx, state, tasks)
}

// Runner builds a sense-plan-act runner planning with this engine.
func (e *Engine) Runner(sensor ports.Sensor, executor ports.Executor, opts ...runner.Option) (*runner.Runner, error) {
	opts = append([]runner.Option{runner.WithLogger(e.logger), runner.WithHooks(e.hooks), runner.WithRobotID(e.m.Robot.ID)}, opts...)
	return runner.New(e.planner, sensor, executor, e.domain.Operators(), opts...)
}

// Map returns the map the engine plans over.
func (e *Engine) Map() *worldmap.Map {
	return e.m
}

// Domain returns the planning domain.
func (e *Engine) Domain() *htn.Domain {
	return e.domain
}

// Planner returns the underlying planner; it implements ports.Planner.
func (e *Engine) Planner() *htn.Planner {
	return e.planner
}
