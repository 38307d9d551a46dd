package domain

// Robot is the reserved entity key of the robot in WorldState.Positions.
const Robot = "me"

// DoorStatus is the open/closed status of a door.
type DoorStatus string

const (
	DoorOpen   DoorStatus = "open"
	DoorClosed DoorStatus = "closed"
)

// ParseDoorStatus normalises the spellings found in map files ("close", "closed", "open").
func ParseDoorStatus(s string) (DoorStatus, bool) {
	switch s {
	case "open", "opened":
		return DoorOpen, true
	case "close", "closed":
		return DoorClosed, true
	}
	return "", false
}
