package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventExpand    EventType = "expand"
	EventBacktrack EventType = "backtrack"
	EventOperator  EventType = "operator"
	EventPlan      EventType = "plan"
	EventStep      EventType = "step"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Depth     int       `json:"depth"`
}

// ExpandEvent is emitted when a method decomposes a compound task (or is abandoned).
type ExpandEvent struct {
	EventBase
	Task     Task   `json:"task"`
	Method   string `json:"method"`
	Subtasks []Task `json:"subtasks,omitempty"`
}

// OperatorEvent is emitted when an operator is applied during planning.
type OperatorEvent struct {
	EventBase
	Task  Task        `json:"task"`
	State *WorldState `json:"state,omitempty"`
}

// PlanEvent is emitted once per planning call.
type PlanEvent struct {
	EventBase
	Tasks    []Task        `json:"tasks"`
	Plan     Plan          `json:"plan,omitempty"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// StepEvent is emitted by the runner for every executed plan step.
type StepEvent struct {
	EventBase
	Index    int           `json:"index"`
	Task     Task          `json:"task"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// PlannerHooks defines callbacks for planner and runner observability.
// Every field is optional.
type PlannerHooks struct {
	OnExpand    func(context.Context, *ExpandEvent)
	OnBacktrack func(context.Context, *ExpandEvent)
	OnOperator  func(context.Context, *OperatorEvent)
	OnPlan      func(context.Context, *PlanEvent)
	OnStep      func(context.Context, *StepEvent)
}

// Merge returns hooks calling h first and then o for every event.
func (h PlannerHooks) Merge(o PlannerHooks) PlannerHooks {
	return PlannerHooks{
		OnExpand:    chain(h.OnExpand, o.OnExpand),
		OnBacktrack: chain(h.OnBacktrack, o.OnBacktrack),
		OnOperator:  chain(h.OnOperator, o.OnOperator),
		OnPlan:      chain(h.OnPlan, o.OnPlan),
		OnStep:      chain(h.OnStep, o.OnStep),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
