package domain

import "errors"

// ErrNoPlan is returned when every decomposition of the requested tasks fails.
// It is an expected outcome, not an engine fault.
var ErrNoPlan = errors.New("no plan found")

// ErrPrecondition is returned when an operator is applied to a state that violates its
// precondition. During planning this indicates a bug in the domain definition.
var ErrPrecondition = errors.New("operator precondition violated")

// ErrUnknownTask is returned when a task name has neither an operator nor methods.
var ErrUnknownTask = errors.New("unknown task")

// ErrDepthExceeded is returned when the planner hits the caller-imposed depth bound.
var ErrDepthExceeded = errors.New("planning depth exceeded")

// ErrInvalidTask is returned when a task literal cannot be parsed.
var ErrInvalidTask = errors.New("invalid task literal")

// ErrUnknownPoint is returned when a point is not part of the map.
var ErrUnknownPoint = errors.New("unknown point")

// ErrMissionNotFound is returned when a mission ID cannot be found in the store.
var ErrMissionNotFound = errors.New("mission not found")
