package htn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Planner decomposes task lists into plans using the methods and operators of a Domain.
//
// The search is depth-first and left to right. For a compound task the methods are tried
// in declaration order and the first applicable one is committed to; if its subtree fails
// the planner backtracks to the next method. Every choice point keeps its own state and
// hands a clone to the subtree, so world facts changed by a failed branch are never seen
// by its siblings. Search bookkeeping written by a method while it is tried stays with
// the choice point, which is how the next sibling learns which alternative is spent.
// Bookkeeping is cleared whenever the search moves on to the next top-level task.
type Planner struct {
	domain    *Domain
	logger    *slog.Logger
	hooks     domain.PlannerHooks
	verbosity int
	maxDepth  int
}

// Option configures the Planner.
type Option func(*Planner)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.PlannerHooks) Option {
	return func(p *Planner) {
		p.hooks = p.hooks.Merge(hooks)
	}
}

// WithVerbosity sets the trace level: 0 silent, 1 call and result, 2 method choices and
// backtracks, 3 every operator application with the resulting state.
func WithVerbosity(level int) Option {
	return func(p *Planner) {
		p.verbosity = level
	}
}

// WithMaxDepth bounds the number of nested expansions. Zero means unbounded.
// Exceeding the bound aborts the search with domain.ErrDepthExceeded.
func WithMaxDepth(depth int) Option {
	return func(p *Planner) {
		p.maxDepth = depth
	}
}

// NewPlanner creates a planner for the given domain.
func NewPlanner(d *Domain, opts ...Option) *Planner {
	p := &Planner{
		domain: d,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Domain returns the planning domain.
func (p *Planner) Domain() *Domain {
	return p.domain
}

// Plan searches for a plan achieving tasks from state.
// The caller's state is not modified and search bookkeeping starts empty.
// It returns domain.ErrNoPlan when no decomposition exists; any other error aborts the
// search (operator precondition violations, unknown tasks, depth bound, cancellation).
func (p *Planner) Plan(ctx context.Context, state *domain.WorldState, tasks []domain.Task) (domain.Plan, error) {
	start := time.Now()
	p.trace(ctx, 1, "planning", "domain", p.domain.Name(), "tasks", tasks, "robot", state.RobotAt())

	root := state.Clone()
	root.ResetSearch()

	agenda := make([]entry, len(tasks))
	for i, t := range tasks {
		agenda[i] = entry{task: t, root: i}
	}

	plan, err := p.seek(ctx, root, agenda, domain.Plan{}, 0, 0)
	if errors.Is(err, errBacktrack) {
		err = domain.ErrNoPlan
	}

	if err != nil {
		p.trace(ctx, 1, "planning finished without a plan", "err", err)
	} else {
		p.trace(ctx, 1, "plan found", "steps", len(plan), "plan", plan.Strings())
	}

	if p.hooks.OnPlan != nil {
		p.hooks.OnPlan(ctx, &domain.PlanEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPlan},
			Tasks:     tasks,
			Plan:      plan,
			Err:       err,
			Duration:  time.Since(start),
		})
	}

	if err != nil {
		return nil, err
	}
	return plan, nil
}

// entry is an agenda item tagged with the index of the top-level task it expands.
type entry struct {
	task domain.Task
	root int
}

// seek expands the head of the agenda. It returns errBacktrack when the agenda cannot
// be decomposed from s. root is the top-level task the previous agenda head belonged
// to; s is owned by this call.
func (p *Planner) seek(ctx context.Context, s *domain.WorldState, agenda []entry, plan domain.Plan, root, depth int) (domain.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.maxDepth > 0 && depth > p.maxDepth {
		return nil, fmt.Errorf("%w: %d", domain.ErrDepthExceeded, p.maxDepth)
	}
	if len(agenda) == 0 {
		return plan, nil
	}

	head, rest := agenda[0], agenda[1:]
	task := head.task
	if head.root != root {
		p.trace(ctx, 2, "next top-level task", "depth", depth, "task", task.String())
		s.ResetSearch()
	}

	if _, ok := p.domain.Operator(task.Name); ok {
		next, err := p.domain.Apply(s, task)
		if err != nil {
			return nil, err
		}
		p.trace(ctx, 3, "operator applied", "depth", depth, "task", task.String(), "state", next)
		if p.hooks.OnOperator != nil {
			p.hooks.OnOperator(ctx, &domain.OperatorEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventOperator, Depth: depth},
				Task:      task,
				State:     next,
			})
		}
		return p.seek(ctx, next, rest, append(plan[:len(plan):len(plan)], task), head.root, depth+1)
	}

	methods, ok := p.domain.Methods(task.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTask, task.Name)
	}

	for _, m := range methods {
		d := m.Fn(s, task.Args...)
		if !d.Applicable() {
			continue
		}

		p.trace(ctx, 2, "method chosen", "depth", depth, "task", task.String(), "method", m.Name, "subtasks", d.Subtasks)
		p.emitExpand(ctx, p.hooks.OnExpand, domain.EventExpand, depth, task, m.Name, d.Subtasks)

		next := make([]entry, 0, len(d.Subtasks)+len(rest))
		for _, sub := range d.Subtasks {
			next = append(next, entry{task: sub, root: head.root})
		}
		next = append(next, rest...)

		result, err := p.seek(ctx, s.Clone(), next, plan, head.root, depth+1)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, errBacktrack) {
			return nil, err
		}

		p.trace(ctx, 2, "backtracking", "depth", depth, "task", task.String(), "method", m.Name)
		p.emitExpand(ctx, p.hooks.OnBacktrack, domain.EventBacktrack, depth, task, m.Name, nil)
	}

	return nil, errBacktrack
}

func (p *Planner) emitExpand(ctx context.Context, fn func(context.Context, *domain.ExpandEvent), typ domain.EventType, depth int, task domain.Task, method string, subtasks []domain.Task) {
	if fn == nil {
		return
	}
	fn(ctx, &domain.ExpandEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ, Depth: depth},
		Task:      task,
		Method:    method,
		Subtasks:  subtasks,
	})
}

func (p *Planner) trace(ctx context.Context, level int, msg string, args ...any) {
	if p.verbosity < level {
		return
	}
	p.logger.InfoContext(ctx, msg, args...)
}
