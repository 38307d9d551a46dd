package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// Runner drives one sense-plan-act cycle: it reads the world once, plans for the
// mission's tasks and dispatches the plan step by step to the executor.
type Runner struct {
	planner  ports.Planner
	sensor   ports.Sensor
	executor ports.Executor

	// Interceptor is consulted before every step.
	// If nil, every step is approved.
	Interceptor StepInterceptor

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Hooks receives OnStep events.
	Hooks domain.PlannerHooks

	// RobotID labels missions created by Run.
	RobotID string
}

// New creates a Runner. Every name in operators must be supported by the executor,
// so an unsupported step can never be reached mid-plan.
func New(planner ports.Planner, sensor ports.Sensor, executor ports.Executor, operators []string, opts ...Option) (*Runner, error) {
	if planner == nil || sensor == nil || executor == nil {
		return nil, errors.New("runner requires a planner, a sensor and an executor")
	}
	var missing []error
	for _, op := range operators {
		if !executor.Supports(op) {
			missing = append(missing, fmt.Errorf("%w: %s", ErrUnsupportedOperator, op))
		}
	}
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}

	r := &Runner{
		planner:  planner,
		sensor:   sensor,
		executor: executor,
		Logger:   logging.NewNop(),
		RobotID:  "robot",
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	if r.Interceptor == nil {
		r.Interceptor = AutoApproveMiddleware()
	}
	return r, nil
}

// Run creates a mission for tasks and executes it.
func (r *Runner) Run(ctx context.Context, tasks ...domain.Task) (*domain.Mission, error) {
	m := domain.NewMission(r.RobotID, tasks)
	err := r.Execute(ctx, m)
	return m, err
}

// Execute runs the sense-plan-act cycle for m and records the result on it.
// The returned error wraps domain.ErrNoPlan when planning fails and is a *StepError
// when a step fails.
func (r *Runner) Execute(ctx context.Context, m *domain.Mission) error {
	log := r.Logger.With("mission", m.ID, "robot", m.RobotID)

	initial, err := r.sensor.Sense(ctx)
	if err != nil {
		m.Fail(domain.OutcomeFailed, err)
		return fmt.Errorf("sense: %w", err)
	}
	m.Initial = initial.Clone()

	plan, err := r.planner.Plan(ctx, initial, m.Tasks)
	if err != nil {
		if errors.Is(err, domain.ErrNoPlan) {
			log.Info("No plan found", "tasks", len(m.Tasks))
			m.Fail(domain.OutcomeNoPlan, err)
		} else {
			m.Fail(domain.OutcomeFailed, err)
		}
		return fmt.Errorf("plan: %w", err)
	}
	m.Plan = plan
	log.Debug("Plan found", "steps", len(plan))

	status, err := r.tree(ctx, m, log).Tick()
	if err == nil && status != bt.Success {
		err = fmt.Errorf("plan tree ended with status %v", status)
	}

	if final, serr := r.sensor.Sense(ctx); serr == nil {
		m.Changes = domain.Diff(m.Initial, final)
	} else {
		log.Warn("Failed to read final state", "err", serr)
	}

	if err != nil {
		m.Fail(domain.OutcomeFailed, err)
		return err
	}
	m.Finish(domain.OutcomeCompleted)
	log.Info("Mission completed", "steps", m.Executed)
	return nil
}

// tree builds a behaviour-tree sequence with one leaf per plan step.
func (r *Runner) tree(ctx context.Context, m *domain.Mission, log *slog.Logger) bt.Node {
	leaves := make([]bt.Node, len(m.Plan))
	for i, task := range m.Plan {
		leaves[i] = bt.New(r.step(ctx, m, i, task, log))
	}
	return bt.New(bt.Sequence, leaves...)
}

func (r *Runner) step(ctx context.Context, m *domain.Mission, index int, task domain.Task, log *slog.Logger) bt.Tick {
	return func(children []bt.Node) (bt.Status, error) {
		start := time.Now()
		err := r.dispatch(ctx, index, task)
		if r.Hooks.OnStep != nil {
			r.Hooks.OnStep(ctx, &domain.StepEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStep},
				Index:     index,
				Task:      task,
				Err:       err,
				Duration:  time.Since(start),
			})
		}
		if err != nil {
			m.FailedStep = index
			log.Error("Step failed", "step", index, "task", task.String(), "err", err)
			return bt.Failure, &StepError{Index: index, Task: task, Err: err}
		}
		m.Executed++
		log.Debug("Step done", "step", index, "task", task.String())
		return bt.Success, nil
	}
}

func (r *Runner) dispatch(ctx context.Context, index int, task domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	allowed, err := r.Interceptor(ctx, index, task)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrStepDenied
	}
	return r.executor.Execute(ctx, task)
}
