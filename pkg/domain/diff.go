package domain

// WorldDiff represents the changes between two world snapshots.
// It is designed to be serialized to JSON for mission reports and partial updates.
type WorldDiff struct {
	// Robot is set when the robot moved.
	Robot *Move `json:"robot,omitempty"`

	// Boxes contains the boxes whose position changed. A box picked up moves to "";
	// a box put down moves from "".
	Boxes map[string]Move `json:"boxes,omitempty"`

	// Doors contains the doors whose status changed.
	Doors map[string]DoorStatus `json:"doors,omitempty"`

	// Carrying is set when the carried box changed; "" means empty-handed.
	Carrying *string `json:"carrying,omitempty"`
}

// Move is a from/to pair of points.
type Move struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Diff calculates the difference between before and after.
// If before is nil, it returns a diff representing the whole of after (initial load).
// It returns nil when nothing changed.
func Diff(before, after *WorldState) *WorldDiff {
	if after == nil {
		return nil
	}
	if before == nil {
		before = &WorldState{}
	}

	diff := &WorldDiff{}

	// 1. Robot
	if before.RobotAt() != after.RobotAt() {
		diff.Robot = &Move{From: before.RobotAt(), To: after.RobotAt()}
	}

	// 2. Boxes (positions only; a carried box has none)
	diff.Boxes = diffBoxes(before, after)

	// 3. Doors
	for d, st := range after.Doors {
		if before.Doors[d] != st {
			if diff.Doors == nil {
				diff.Doors = make(map[string]DoorStatus)
			}
			diff.Doors[d] = st
		}
	}

	// 4. Carried box
	if before.Carrying != after.Carrying {
		c := after.Carrying
		diff.Carrying = &c
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffBoxes(before, after *WorldState) map[string]Move {
	delta := make(map[string]Move)

	for b, to := range after.Positions {
		if b == Robot {
			continue
		}
		if from := before.Positions[b]; from != to {
			delta[b] = Move{From: from, To: to}
		}
	}

	// Boxes that disappeared from the map were picked up.
	for b, from := range before.Positions {
		if b == Robot {
			continue
		}
		if _, exists := after.Positions[b]; !exists {
			delta[b] = Move{From: from, To: ""}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *WorldDiff) IsEmpty() bool {
	return d.Robot == nil &&
		len(d.Boxes) == 0 &&
		len(d.Doors) == 0 &&
		d.Carrying == nil
}
