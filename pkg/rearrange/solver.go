package rearrange

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/navigation"
	"github.com/aretw0/waypoint/pkg/worldmap"
)

// DefaultConstraint keeps every box out of the room of its own colour.
const DefaultConstraint = "box.color != room.color"

// ErrUnsatisfiable is returned when no assignment satisfies the constraint.
var ErrUnsatisfiable = errors.New("no assignment satisfies the constraint")

// Candidate is the view of a room or a box given to the constraint expression.
type Candidate struct {
	Name  string `expr:"name"`
	Color string `expr:"color"`
	Point string `expr:"point"`
}

// Env is the expression environment for one room/box pair.
type Env struct {
	Room Candidate `expr:"room"`
	Box  Candidate `expr:"box"`
}

// Pair assigns Box to Room; the box is delivered to Drop.
type Pair struct {
	Room string `json:"room"`
	Box  string `json:"box"`
	Drop string `json:"drop"`
}

// Assignment lists one pair per room, in room order.
type Assignment []Pair

// Tasks returns one transport task per pair.
func (a Assignment) Tasks() []domain.Task {
	tasks := make([]domain.Task, len(a))
	for i, p := range a {
		tasks[i] = navigation.Transport(p.Box, p.Drop)
	}
	return tasks
}

// Solver searches assignments under a compiled constraint.
type Solver struct {
	constraint string
	program    *vm.Program
	logger     *slog.Logger
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Solver) {
		s.logger = logger
	}
}

// New compiles constraint; an empty constraint means DefaultConstraint.
func New(constraint string, opts ...Option) (*Solver, error) {
	if constraint == "" {
		constraint = DefaultConstraint
	}
	program, err := expr.Compile(constraint, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid constraint %q: %w", constraint, err)
	}
	s := &Solver{constraint: constraint, program: program, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	return s, nil
}

// Constraint returns the source of the compiled constraint.
func (s *Solver) Constraint() string {
	return s.constraint
}

// Solve assigns a distinct box to every room of m that has a drop point.
func (s *Solver) Solve(m *worldmap.Map) (Assignment, error) {
	var rooms []worldmap.Room
	for _, r := range m.Rooms {
		if r.Drop != "" {
			rooms = append(rooms, r)
		}
	}

	used := make(map[string]bool, len(m.Boxes))
	out := make(Assignment, 0, len(rooms))

	var search func(i int) (bool, error)
	search = func(i int) (bool, error) {
		if i == len(rooms) {
			return true, nil
		}
		r := rooms[i]
		for _, b := range m.Boxes {
			if used[b.Name] {
				continue
			}
			ok, err := s.accepts(r, b)
			if err != nil {
				return false, err
			}
			if !ok {
				continue
			}

			used[b.Name] = true
			out = append(out, Pair{Room: r.Name, Box: b.Name, Drop: r.Drop})
			if done, err := search(i + 1); done || err != nil {
				return done, err
			}
			s.logger.Debug("Backtracking", "room", r.Name, "box", b.Name)
			used[b.Name] = false
			out = out[:len(out)-1]
		}
		return false, nil
	}

	done, err := search(0)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, fmt.Errorf("%w: %s", ErrUnsatisfiable, s.constraint)
	}
	return out, nil
}

func (s *Solver) accepts(r worldmap.Room, b worldmap.Box) (bool, error) {
	env := Env{
		Room: Candidate{Name: r.Name, Color: r.Color, Point: r.Drop},
		Box:  Candidate{Name: b.Name, Color: b.Color, Point: b.At},
	}
	result, err := expr.Run(s.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate constraint for %s/%s: %w", r.Name, b.Name, err)
	}
	ok, _ := result.(bool)
	return ok, nil
}
