package navigation

import "github.com/aretw0/waypoint/pkg/domain"

// Operator names.
const (
	OpMoveTo  = "moveto"
	OpCross   = "cross"
	OpOpen    = "open"
	OpClose   = "close"
	OpPickup  = "pickup"
	OpPutdown = "putdown"
)

// Compound task names.
const (
	TaskNavigateTo = "navigate_to"
	TaskMoveInRoom = "move_in_room"
	TaskCrossDoor  = "cross_door"
	TaskOpenDoor   = "open_door"
	TaskFetch      = "fetch"
	TaskTransport  = "transport"
)

// Operators lists every primitive task of the domain in declaration order.
var Operators = []string{OpMoveTo, OpCross, OpOpen, OpClose, OpPickup, OpPutdown}

// NavigateTo returns the task of reaching point p.
func NavigateTo(p string) domain.Task { return domain.NewTask(TaskNavigateTo, p) }

// Fetch returns the task of picking up box b.
func Fetch(b string) domain.Task { return domain.NewTask(TaskFetch, b) }

// Transport returns the task of delivering box b to point p.
func Transport(b, p string) domain.Task { return domain.NewTask(TaskTransport, b, p) }

func moveInRoom(p string) domain.Task { return domain.NewTask(TaskMoveInRoom, p) }
func crossDoor(d string) domain.Task  { return domain.NewTask(TaskCrossDoor, d) }
func openDoor(d string) domain.Task   { return domain.NewTask(TaskOpenDoor, d) }
func moveTo(p string) domain.Task     { return domain.NewTask(OpMoveTo, p) }
func cross(d, p string) domain.Task   { return domain.NewTask(OpCross, d, p) }
func open(d string) domain.Task       { return domain.NewTask(OpOpen, d) }
func closeTask(d string) domain.Task  { return domain.NewTask(OpClose, d) }
func pickup(b string) domain.Task     { return domain.NewTask(OpPickup, b) }
func putdown(b string) domain.Task    { return domain.NewTask(OpPutdown, b) }
