package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Sensor reads the state of the world from the environment.
type Sensor interface {
	// Sense returns a fresh snapshot with empty search bookkeeping.
	Sense(ctx context.Context) (*domain.WorldState, error)
}

// Executor performs primitive tasks in the environment.
type Executor interface {
	// Supports reports whether the executor has a handler for the named operator.
	// Runners check it for every operator of the domain before executing anything.
	Supports(operator string) bool

	// Execute performs one primitive task. A non-nil error means the step failed and
	// the rest of the plan must not run.
	Execute(ctx context.Context, task domain.Task) error
}

// Planner produces plans for a task list.
type Planner interface {
	Plan(ctx context.Context, state *domain.WorldState, tasks []domain.Task) (domain.Plan, error)
}
