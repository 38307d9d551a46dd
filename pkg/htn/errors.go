package htn

import (
	"errors"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// errBacktrack is the internal signal that a subtree has no decomposition.
// It never escapes Plan: the root turns it into domain.ErrNoPlan.
var errBacktrack = errors.New("backtrack")

// OperatorError is returned when an operator rejects its arguments during planning.
// Methods are expected to check preconditions before proposing an operator, so this
// aborts the whole search instead of backtracking.
type OperatorError struct {
	Task domain.Task
	Err  error
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("operator %s failed: %v", e.Task, e.Err)
}

func (e *OperatorError) Unwrap() error {
	return e.Err
}
