package htn

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
)

// OperatorFunc applies a primitive action to s in place. The planner always hands it a
// private copy of the state. It returns an error wrapping domain.ErrPrecondition when
// the arguments do not fit the state.
type OperatorFunc func(s *domain.WorldState, args ...string) error

// MethodFunc proposes a decomposition of a compound task for the given state.
// It may only write the search bookkeeping of s (attempted doors/points, goal).
type MethodFunc func(s *domain.WorldState, args ...string) Decomposition

// Method is a named decomposition rule.
type Method struct {
	Name string
	Fn   MethodFunc
}

// Decomposition is the result of trying a method: either not applicable, or an ordered
// (possibly empty) list of subtasks.
type Decomposition struct {
	Subtasks   []domain.Task
	applicable bool
}

// NotApplicable signals that a method does not apply to the current state.
var NotApplicable = Decomposition{}

// Decompose returns an applicable decomposition. Decompose() with no subtasks is a
// successful no-op, distinct from NotApplicable.
func Decompose(subtasks ...domain.Task) Decomposition {
	return Decomposition{Subtasks: subtasks, applicable: true}
}

// Applicable reports whether the method produced a decomposition.
func (d Decomposition) Applicable() bool {
	return d.applicable
}

// Domain owns the operator and method tables of one planning domain.
// It is safe for concurrent use; registration normally happens once at construction.
type Domain struct {
	name string

	mu        sync.RWMutex
	operators map[string]OperatorFunc
	methods   map[string][]Method
}

// NewDomain creates an empty domain.
func NewDomain(name string) *Domain {
	return &Domain{
		name:      name,
		operators: make(map[string]OperatorFunc),
		methods:   make(map[string][]Method),
	}
}

// Name returns the domain name.
func (d *Domain) Name() string {
	return d.name
}

// DeclareOperator registers a primitive task.
// A name can be registered once and cannot also be a compound task.
func (d *Domain) DeclareOperator(name string, fn OperatorFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("invalid operator declaration %q", name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.operators[name]; exists {
		return fmt.Errorf("operator %q already declared", name)
	}
	if _, exists := d.methods[name]; exists {
		return fmt.Errorf("%q is already a compound task", name)
	}
	d.operators[name] = fn
	return nil
}

// DeclareMethods registers the ordered method list of a compound task.
// Declaring methods for a task again appends to its list.
func (d *Domain) DeclareMethods(task string, methods ...Method) error {
	if task == "" || len(methods) == 0 {
		return fmt.Errorf("invalid method declaration for %q", task)
	}
	for i, m := range methods {
		if m.Name == "" || m.Fn == nil {
			return fmt.Errorf("method %d of %q is incomplete", i, task)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.operators[task]; exists {
		return fmt.Errorf("%q is already an operator", task)
	}
	d.methods[task] = append(d.methods[task], methods...)
	return nil
}

// Operator looks up a primitive task.
func (d *Domain) Operator(name string) (OperatorFunc, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn, ok := d.operators[name]
	return fn, ok
}

// Methods looks up the ordered methods of a compound task.
func (d *Domain) Methods(task string) ([]Method, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ms, ok := d.methods[task]
	return ms, ok
}

// IsPrimitive reports whether name is an operator.
func (d *Domain) IsPrimitive(name string) bool {
	_, ok := d.Operator(name)
	return ok
}

// Operators returns the sorted operator names.
func (d *Domain) Operators() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.operators))
	for n := range d.operators {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Tasks returns the sorted compound task names.
func (d *Domain) Tasks() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.methods))
	for n := range d.methods {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Apply runs the named operator on a copy of s and returns the copy.
func (d *Domain) Apply(s *domain.WorldState, t domain.Task) (*domain.WorldState, error) {
	fn, ok := d.Operator(t.Name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTask, t.Name)
	}
	next := s.Clone()
	if err := fn(next, t.Args...); err != nil {
		return nil, &OperatorError{Task: t, Err: err}
	}
	return next, nil
}
