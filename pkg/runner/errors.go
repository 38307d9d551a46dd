package runner

import (
	"errors"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

var (
	// ErrUnsupportedOperator is returned by New when the executor lacks a handler for
	// an operator of the planning domain.
	ErrUnsupportedOperator = errors.New("executor does not support operator")

	// ErrStepDenied is returned when an interceptor blocks a step.
	ErrStepDenied = errors.New("step denied by policy")
)

// StepError reports the plan step at which execution stopped.
type StepError struct {
	Index int
	Task  domain.Task
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d %s failed: %v", e.Index, e.Task, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
