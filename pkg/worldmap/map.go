package worldmap

import (
	"fmt"
	"slices"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Room is a set of points the robot can move between freely.
type Room struct {
	Name   string   `yaml:"name" json:"name"`
	Points []string `yaml:"points" json:"points"`

	// Color and Drop are used by the rearrangement solver: the box delivered to a room
	// is put down at Drop and must not share the room's colour.
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
	Drop  string `yaml:"drop,omitempty" json:"drop,omitempty"`

	// Objects lists the furniture the robot perceives in the room.
	Objects []string `yaml:"objects,omitempty" json:"objects,omitempty"`
}

// Door connects two points of different rooms.
type Door struct {
	Name   string            `yaml:"name" json:"name"`
	From   string            `yaml:"from" json:"from"`
	To     string            `yaml:"to" json:"to"`
	Status domain.DoorStatus `yaml:"status" json:"status"`
}

// Other returns the endpoint opposite to p.
func (d Door) Other(p string) (string, bool) {
	switch p {
	case d.From:
		return d.To, true
	case d.To:
		return d.From, true
	}
	return "", false
}

// Box is a movable object with its initial point.
type Box struct {
	Name  string `yaml:"name" json:"name"`
	At    string `yaml:"at" json:"at"`
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// RobotSpec places the robot on the map.
type RobotSpec struct {
	ID string `yaml:"id" json:"id"`
	At string `yaml:"at" json:"at"`
}

// Map is the static topology of the world: rooms, points, doors and their initial
// status, and the initial placement of boxes and robot.
// Declaration order is preserved everywhere; the navigation methods depend on it.
type Map struct {
	Name  string    `yaml:"name" json:"name"`
	Robot RobotSpec `yaml:"robot" json:"robot"`
	Rooms []Room    `yaml:"rooms" json:"rooms"`
	Doors []Door    `yaml:"doors" json:"doors"`
	Boxes []Box     `yaml:"boxes,omitempty" json:"boxes,omitempty"`

	roomOf map[string]string
	rooms  map[string]int
	doors  map[string]int
}

// index builds the lookup tables. It must run after any change to the slices.
func (m *Map) index() {
	m.roomOf = make(map[string]string)
	m.rooms = make(map[string]int, len(m.Rooms))
	m.doors = make(map[string]int, len(m.Doors))
	for i, r := range m.Rooms {
		m.rooms[r.Name] = i
		for _, p := range r.Points {
			if _, dup := m.roomOf[p]; !dup {
				m.roomOf[p] = r.Name
			}
		}
	}
	for i, d := range m.Doors {
		m.doors[d.Name] = i
	}
}

// RoomOf returns the room a point belongs to.
func (m *Map) RoomOf(p string) (string, bool) {
	r, ok := m.roomOf[p]
	return r, ok
}

// SameRoom reports whether both points are known and in the same room.
func (m *Map) SameRoom(p, q string) bool {
	rp, ok := m.RoomOf(p)
	if !ok {
		return false
	}
	rq, ok := m.RoomOf(q)
	return ok && rp == rq
}

// HasPoint reports whether p is a point of the map.
func (m *Map) HasPoint(p string) bool {
	_, ok := m.roomOf[p]
	return ok
}

// Room looks up a room by name.
func (m *Map) Room(name string) (Room, bool) {
	i, ok := m.rooms[name]
	if !ok {
		return Room{}, false
	}
	return m.Rooms[i], true
}

// Door looks up a door by name.
func (m *Map) Door(name string) (Door, bool) {
	i, ok := m.doors[name]
	if !ok {
		return Door{}, false
	}
	return m.Doors[i], true
}

// DoorsOf returns the doors with an endpoint in room, in declaration order.
func (m *Map) DoorsOf(room string) []Door {
	var out []Door
	for _, d := range m.Doors {
		if m.roomOf[d.From] == room || m.roomOf[d.To] == room {
			out = append(out, d)
		}
	}
	return out
}

// NearSide returns the endpoint of door d that lies in room.
func (m *Map) NearSide(d Door, room string) (string, bool) {
	switch room {
	case m.roomOf[d.From]:
		return d.From, true
	case m.roomOf[d.To]:
		return d.To, true
	}
	return "", false
}

// OtherSide returns the endpoint of the named door opposite to p.
func (m *Map) OtherSide(door, p string) (string, bool) {
	d, ok := m.Door(door)
	if !ok {
		return "", false
	}
	return d.Other(p)
}

// DoorBetween returns the door whose endpoints are p and q, if any.
func (m *Map) DoorBetween(p, q string) (Door, bool) {
	for _, d := range m.Doors {
		if (d.From == p && d.To == q) || (d.From == q && d.To == p) {
			return d, true
		}
	}
	return Door{}, false
}

// Points returns every point in room declaration order.
func (m *Map) Points() []string {
	var out []string
	for _, r := range m.Rooms {
		out = append(out, r.Points...)
	}
	return out
}

// Adjacent returns the points reachable from p in one step: the other points of its
// room followed by the partners of the doors p is an endpoint of, regardless of status.
func (m *Map) Adjacent(p string) []string {
	room, ok := m.RoomOf(p)
	if !ok {
		return nil
	}
	var out []string
	if r, ok := m.Room(room); ok {
		for _, q := range r.Points {
			if q != p {
				out = append(out, q)
			}
		}
	}
	for _, d := range m.Doors {
		if q, ok := d.Other(p); ok && !slices.Contains(out, q) {
			out = append(out, q)
		}
	}
	return out
}

// Box looks up a box by name.
func (m *Map) Box(name string) (Box, bool) {
	for _, b := range m.Boxes {
		if b.Name == name {
			return b, true
		}
	}
	return Box{}, false
}

// InitialState builds the world state described by the map.
func (m *Map) InitialState() *domain.WorldState {
	doors := make(map[string]domain.DoorStatus, len(m.Doors))
	for _, d := range m.Doors {
		doors[d.Name] = d.Status
	}
	boxes := make(map[string]string, len(m.Boxes))
	for _, b := range m.Boxes {
		boxes[b.Name] = b.At
	}
	return domain.NewWorldState(m.Robot.At, doors, boxes, "")
}

// CheckPoint returns domain.ErrUnknownPoint when p is not on the map.
func (m *Map) CheckPoint(p string) error {
	if !m.HasPoint(p) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownPoint, p)
	}
	return nil
}
