package domain

import (
	"maps"
	"slices"
)

// WorldState represents a snapshot of the mutable facts of the world.
type WorldState struct {
	// Positions maps entities (the Robot key and every uncarried box) to their point.
	Positions map[string]string `json:"positions"`

	// Doors holds the status of every door.
	Doors map[string]DoorStatus `json:"doors"`

	// Carrying is the box held by the robot, or "" when empty-handed.
	// A carried box has no entry in Positions: it is wherever the robot is.
	Carrying string `json:"carrying,omitempty"`

	// Crossed logs the doors crossed by the plan so far.
	Crossed []string `json:"crossed,omitempty"`

	// AttemptedDoors holds the doors already chosen as a crossing attempt on the
	// current search branch.
	AttemptedDoors map[string]struct{} `json:"-"`

	// AttemptedPoints holds the points already retried as navigation sub-goals on the
	// current search branch.
	AttemptedPoints map[string]struct{} `json:"-"`

	// NavGoal is the target of the navigation search the bookkeeping belongs to.
	NavGoal string `json:"-"`
}

// NewWorldState creates a snapshot with empty search bookkeeping.
// boxes maps box names to their point; a carried box may be omitted.
func NewWorldState(robotAt string, doors map[string]DoorStatus, boxes map[string]string, carrying string) *WorldState {
	s := &WorldState{
		Positions:       make(map[string]string, len(boxes)+1),
		Doors:           make(map[string]DoorStatus, len(doors)),
		Carrying:        carrying,
		AttemptedDoors:  make(map[string]struct{}),
		AttemptedPoints: make(map[string]struct{}),
	}
	for b, p := range boxes {
		if b == carrying {
			continue
		}
		s.Positions[b] = p
	}
	s.Positions[Robot] = robotAt
	maps.Copy(s.Doors, doors)
	return s
}

// RobotAt returns the robot's current point.
func (s *WorldState) RobotAt() string {
	return s.Positions[Robot]
}

// PositionOf returns the point of an entity. A carried box is where the robot is.
func (s *WorldState) PositionOf(entity string) (string, bool) {
	if entity != "" && entity == s.Carrying {
		return s.RobotAt(), true
	}
	p, ok := s.Positions[entity]
	return p, ok
}

// Boxes returns the names of all known boxes, carried or not, sorted.
func (s *WorldState) Boxes() []string {
	boxes := make([]string, 0, len(s.Positions))
	for e := range s.Positions {
		if e != Robot {
			boxes = append(boxes, e)
		}
	}
	if s.Carrying != "" {
		boxes = append(boxes, s.Carrying)
	}
	slices.Sort(boxes)
	return boxes
}

// DoorAttempted reports whether d was already chosen on this branch.
func (s *WorldState) DoorAttempted(d string) bool {
	_, ok := s.AttemptedDoors[d]
	return ok
}

// MarkDoor records d as attempted on this branch.
func (s *WorldState) MarkDoor(d string) {
	if s.AttemptedDoors == nil {
		s.AttemptedDoors = make(map[string]struct{})
	}
	s.AttemptedDoors[d] = struct{}{}
}

// PointAttempted reports whether p was already retried as a sub-goal on this branch.
func (s *WorldState) PointAttempted(p string) bool {
	_, ok := s.AttemptedPoints[p]
	return ok
}

// MarkPoint records p as retried on this branch.
func (s *WorldState) MarkPoint(p string) {
	if s.AttemptedPoints == nil {
		s.AttemptedPoints = make(map[string]struct{})
	}
	s.AttemptedPoints[p] = struct{}{}
}

// BeginSearch starts a fresh navigation search towards goal. It is a no-op when the
// bookkeeping already belongs to a search for the same goal; the planner clears it
// between top-level tasks.
func (s *WorldState) BeginSearch(goal string) {
	if s.NavGoal == goal {
		return
	}
	s.ResetSearch()
	s.NavGoal = goal
}

// ResetSearch clears the search-local bookkeeping.
func (s *WorldState) ResetSearch() {
	s.AttemptedDoors = make(map[string]struct{})
	s.AttemptedPoints = make(map[string]struct{})
	s.NavGoal = ""
}

// Clone creates a deep copy of the state, bookkeeping included.
func (s *WorldState) Clone() *WorldState {
	if s == nil {
		return nil
	}
	next := *s
	next.Positions = maps.Clone(s.Positions)
	next.Doors = maps.Clone(s.Doors)
	next.Crossed = slices.Clone(s.Crossed)
	next.AttemptedDoors = maps.Clone(s.AttemptedDoors)
	next.AttemptedPoints = maps.Clone(s.AttemptedPoints)
	if next.Positions == nil {
		next.Positions = make(map[string]string)
	}
	if next.Doors == nil {
		next.Doors = make(map[string]DoorStatus)
	}
	if next.AttemptedDoors == nil {
		next.AttemptedDoors = make(map[string]struct{})
	}
	if next.AttemptedPoints == nil {
		next.AttemptedPoints = make(map[string]struct{})
	}
	return &next
}
