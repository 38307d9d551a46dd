package navigation

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/worldmap"
)

// operators are the primitive state transformers of the domain. They only reject
// structurally invalid calls; the methods check every other precondition before
// proposing an operator.
type operators struct {
	m *worldmap.Map
}

func arity(name string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s expects %d arguments, got %d", domain.ErrPrecondition, name, n, len(args))
	}
	return nil
}

func (o operators) moveTo(s *domain.WorldState, args ...string) error {
	if err := arity(OpMoveTo, args, 1); err != nil {
		return err
	}
	s.Positions[domain.Robot] = args[0]
	return nil
}

func (o operators) cross(s *domain.WorldState, args ...string) error {
	if err := arity(OpCross, args, 2); err != nil {
		return err
	}
	d, p := args[0], args[1]
	if _, ok := o.m.Door(d); !ok {
		return fmt.Errorf("%w: unknown door %q", domain.ErrPrecondition, d)
	}
	s.Crossed = append(s.Crossed, d)
	s.Positions[domain.Robot] = p
	return nil
}

func (o operators) open(s *domain.WorldState, args ...string) error {
	return o.setDoor(OpOpen, domain.DoorOpen, s, args)
}

func (o operators) close(s *domain.WorldState, args ...string) error {
	return o.setDoor(OpClose, domain.DoorClosed, s, args)
}

func (o operators) setDoor(name string, status domain.DoorStatus, s *domain.WorldState, args []string) error {
	if err := arity(name, args, 1); err != nil {
		return err
	}
	if _, ok := o.m.Door(args[0]); !ok {
		return fmt.Errorf("%w: unknown door %q", domain.ErrPrecondition, args[0])
	}
	s.Doors[args[0]] = status
	return nil
}

func (o operators) pickup(s *domain.WorldState, args ...string) error {
	if err := arity(OpPickup, args, 1); err != nil {
		return err
	}
	b := args[0]
	if s.Carrying != "" && s.Carrying != b {
		return fmt.Errorf("%w: already carrying %q", domain.ErrPrecondition, s.Carrying)
	}
	s.Carrying = b
	delete(s.Positions, b)
	return nil
}

func (o operators) putdown(s *domain.WorldState, args ...string) error {
	if err := arity(OpPutdown, args, 1); err != nil {
		return err
	}
	b := args[0]
	if s.Carrying != b {
		return fmt.Errorf("%w: not carrying %q", domain.ErrPrecondition, b)
	}
	s.Carrying = ""
	s.Positions[b] = s.RobotAt()
	return nil
}
