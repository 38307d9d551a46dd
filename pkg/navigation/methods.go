package navigation

import (
	"slices"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/htn"
	"github.com/aretw0/waypoint/pkg/worldmap"
)

type methods struct {
	m *worldmap.Map
}

func (h methods) status(s *domain.WorldState, d worldmap.Door) domain.DoorStatus {
	if st, ok := s.Doors[d.Name]; ok {
		return st
	}
	return d.Status
}

// --- navigate_to(p) ---

func (h methods) alreadyThere(s *domain.WorldState, args ...string) htn.Decomposition {
	if len(args) != 1 || s.RobotAt() != args[0] {
		return htn.NotApplicable
	}
	return htn.Decompose()
}

func (h methods) sameRoom(s *domain.WorldState, args ...string) htn.Decomposition {
	if len(args) != 1 || !h.m.SameRoom(s.RobotAt(), args[0]) {
		return htn.NotApplicable
	}
	return htn.Decompose(moveInRoom(args[0]))
}

func (h methods) throughDoor(s *domain.WorldState, args ...string) htn.Decomposition {
	if len(args) != 1 || !h.m.HasPoint(args[0]) {
		return htn.NotApplicable
	}
	p := args[0]
	s.BeginSearch(p)

	room, ok := h.m.RoomOf(s.RobotAt())
	if !ok {
		return htn.NotApplicable
	}

	for _, d := range h.candidates(s, room, p) {
		if s.DoorAttempted(d.Name) {
			continue
		}
		s.MarkDoor(d.Name)

		near, _ := h.m.NearSide(d, room)
		if h.status(s, d) == domain.DoorClosed {
			return htn.Decompose(moveInRoom(near), openDoor(d.Name), NavigateTo(p))
		}
		return htn.Decompose(moveInRoom(near), crossDoor(d.Name), NavigateTo(p))
	}
	return htn.NotApplicable
}

// candidates orders the doors of room for a search towards goal: the door the robot
// stands at when it leads into the goal's room, then open doors leading there, then the
// other open doors, then closed ones. Ties keep declaration order.
func (h methods) candidates(s *domain.WorldState, room, goal string) []worldmap.Door {
	at := s.RobotAt()
	rank := func(d worldmap.Door) int {
		near, _ := h.m.NearSide(d, room)
		far, _ := d.Other(near)
		leads := h.m.SameRoom(far, goal)
		isOpen := h.status(s, d) == domain.DoorOpen
		switch {
		case near == at && leads:
			return 0
		case isOpen && leads:
			return 1
		case isOpen:
			return 2
		}
		return 3
	}

	doors := h.m.DoorsOf(room)
	slices.SortStableFunc(doors, func(a, b worldmap.Door) int {
		return rank(a) - rank(b)
	})
	return doors
}

// retry re-enters navigate_to after navigate_through_door failed, so the next untried
// door of the robot's room gets its turn. Each retry spends one more door, which bounds
// the recursion.
func (h methods) retry(s *domain.WorldState, args ...string) htn.Decomposition {
	if len(args) != 1 || !h.m.HasPoint(args[0]) {
		return htn.NotApplicable
	}
	p := args[0]
	s.BeginSearch(p)

	room, ok := h.m.RoomOf(s.RobotAt())
	if !ok {
		return htn.NotApplicable
	}
	untried := slices.ContainsFunc(h.m.DoorsOf(room), func(d worldmap.Door) bool {
		return !s.DoorAttempted(d.Name)
	})
	if !untried {
		return htn.NotApplicable
	}
	s.MarkPoint(p)
	return htn.Decompose(NavigateTo(p))
}

// --- move_in_room(p) ---

func (h methods) samePoint(s *domain.WorldState, args ...string) htn.Decomposition {
	if len(args) != 1 || s.RobotAt() != args[0] {
		return htn.NotApplicable
	}
	return htn.Decompose()
}

func (h methods) otherPoint(s *domain.WorldState, args ...string) htn.Decomposition {
	if len(args) != 1 || s.RobotAt() == args[0] || !h.m.SameRoom(s.RobotAt(), args[0]) {
		return htn.NotApplicable
	}
	return htn.Decompose(moveTo(args[0]))
}

// --- cross_door(d) and open_door(d) ---

// endpoint returns the door when it has the given status and the robot stands at the
// endpoint selected by forward (From when true, To otherwise).
func (h methods) endpoint(s *domain.WorldState, args []string, status domain.DoorStatus, forward bool) (worldmap.Door, string, bool) {
	if len(args) != 1 {
		return worldmap.Door{}, "", false
	}
	d, ok := h.m.Door(args[0])
	if !ok || h.status(s, d) != status {
		return worldmap.Door{}, "", false
	}
	here, there := d.From, d.To
	if !forward {
		here, there = d.To, d.From
	}
	if s.RobotAt() != here {
		return worldmap.Door{}, "", false
	}
	return d, there, true
}

func (h methods) crossing(forward bool) htn.MethodFunc {
	return func(s *domain.WorldState, args ...string) htn.Decomposition {
		d, there, ok := h.endpoint(s, args, domain.DoorOpen, forward)
		if !ok {
			return htn.NotApplicable
		}
		return htn.Decompose(cross(d.Name, there))
	}
}

func (h methods) opening(forward bool) htn.MethodFunc {
	return func(s *domain.WorldState, args ...string) htn.Decomposition {
		d, there, ok := h.endpoint(s, args, domain.DoorClosed, forward)
		if !ok {
			return htn.NotApplicable
		}
		return htn.Decompose(open(d.Name), cross(d.Name, there), closeTask(d.Name))
	}
}

// --- fetch(b) and transport(b, p) ---

func (h methods) fetch(s *domain.WorldState, args ...string) htn.Decomposition {
	if len(args) != 1 {
		return htn.NotApplicable
	}
	b := args[0]
	if s.Carrying == b {
		return htn.Decompose()
	}
	if s.Carrying != "" {
		return htn.NotApplicable
	}
	at, ok := s.Positions[b]
	if !ok || b == domain.Robot {
		return htn.NotApplicable
	}
	if at == s.RobotAt() {
		return htn.Decompose(pickup(b))
	}
	return htn.Decompose(NavigateTo(at), pickup(b))
}

func (h methods) transport(s *domain.WorldState, args ...string) htn.Decomposition {
	if len(args) != 2 || !h.m.HasPoint(args[1]) {
		return htn.NotApplicable
	}
	b, p := args[0], args[1]
	here := s.RobotAt()

	if s.Carrying == b {
		if here == p {
			return htn.Decompose(putdown(b))
		}
		return htn.Decompose(NavigateTo(p), putdown(b))
	}
	if s.Carrying != "" {
		return htn.NotApplicable
	}

	at, ok := s.Positions[b]
	if !ok || b == domain.Robot {
		return htn.NotApplicable
	}
	switch {
	case at == p:
		return htn.Decompose()
	case at == here:
		return htn.Decompose(pickup(b), NavigateTo(p), putdown(b))
	}
	return htn.Decompose(NavigateTo(at), pickup(b), NavigateTo(p), putdown(b))
}
