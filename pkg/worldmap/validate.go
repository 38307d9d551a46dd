package worldmap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// ErrInvalidMap is matched by every ValidationError.
var ErrInvalidMap = errors.New("invalid map")

// ValidationError lists every structural problem found in a map.
type ValidationError struct {
	Map      string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("map %q has %d problems:\n- %s", e.Map, len(e.Problems), strings.Join(e.Problems, "\n- "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidMap
}

// Validate checks the structural invariants of the map: every point belongs to exactly
// one room, doors join points of two different rooms, names are unique, and the robot,
// boxes and drop points sit on known points.
func (m *Map) Validate() error {
	if m.roomOf == nil {
		m.index()
	}

	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(m.Rooms) == 0 {
		add("no rooms declared")
	}

	seenRoom := make(map[string]bool)
	seenPoint := make(map[string]string)
	for _, r := range m.Rooms {
		if r.Name == "" {
			add("room with empty name")
		}
		if seenRoom[r.Name] {
			add("duplicate room %q", r.Name)
		}
		seenRoom[r.Name] = true
		if len(r.Points) == 0 {
			add("room %q has no points", r.Name)
		}
		for _, p := range r.Points {
			if other, dup := seenPoint[p]; dup {
				add("point %q belongs to both %q and %q", p, other, r.Name)
				continue
			}
			seenPoint[p] = r.Name
		}
		if r.Drop != "" && m.roomOf[r.Drop] != r.Name {
			add("drop point %q of room %q is not in the room", r.Drop, r.Name)
		}
	}

	seenDoor := make(map[string]bool)
	for _, d := range m.Doors {
		if d.Name == "" {
			add("door with empty name")
		}
		if seenDoor[d.Name] {
			add("duplicate door %q", d.Name)
		}
		seenDoor[d.Name] = true
		if seenRoom[d.Name] {
			add("door %q shares its name with a room", d.Name)
		}

		from, okFrom := m.RoomOf(d.From)
		to, okTo := m.RoomOf(d.To)
		switch {
		case !okFrom:
			add("door %q: unknown point %q", d.Name, d.From)
		case !okTo:
			add("door %q: unknown point %q", d.Name, d.To)
		case from == to:
			add("door %q joins two points of room %q", d.Name, from)
		}
		if d.Status != domain.DoorOpen && d.Status != domain.DoorClosed {
			add("door %q has invalid status %q", d.Name, d.Status)
		}
	}

	seenBox := make(map[string]bool)
	for _, b := range m.Boxes {
		if b.Name == "" || b.Name == domain.Robot {
			add("invalid box name %q", b.Name)
		}
		if seenBox[b.Name] {
			add("duplicate box %q", b.Name)
		}
		seenBox[b.Name] = true
		if !m.HasPoint(b.At) {
			add("box %q: unknown point %q", b.Name, b.At)
		}
	}

	if !m.HasPoint(m.Robot.At) {
		add("robot: unknown point %q", m.Robot.At)
	}

	if len(problems) > 0 {
		return &ValidationError{Map: m.Name, Problems: problems}
	}
	return nil
}
