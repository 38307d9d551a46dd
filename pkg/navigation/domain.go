package navigation

import (
	"errors"

	"github.com/aretw0/waypoint/pkg/htn"
	"github.com/aretw0/waypoint/pkg/worldmap"
)

// NewDomain builds the navigation and manipulation domain over m.
// Method order is part of the domain: it decides which valid route is found first.
func NewDomain(m *worldmap.Map) (*htn.Domain, error) {
	if m == nil {
		return nil, errors.New("navigation domain requires a map")
	}

	d := htn.NewDomain("navigation")
	ops := operators{m: m}
	h := methods{m: m}

	errs := []error{
		d.DeclareOperator(OpMoveTo, ops.moveTo),
		d.DeclareOperator(OpCross, ops.cross),
		d.DeclareOperator(OpOpen, ops.open),
		d.DeclareOperator(OpClose, ops.close),
		d.DeclareOperator(OpPickup, ops.pickup),
		d.DeclareOperator(OpPutdown, ops.putdown),

		d.DeclareMethods(TaskNavigateTo,
			htn.Method{Name: "navigate_already_there", Fn: h.alreadyThere},
			htn.Method{Name: "navigate_same_room", Fn: h.sameRoom},
			htn.Method{Name: "navigate_through_door", Fn: h.throughDoor},
			htn.Method{Name: "navigate_retry", Fn: h.retry},
		),
		d.DeclareMethods(TaskMoveInRoom,
			htn.Method{Name: "move_in_room_same_point", Fn: h.samePoint},
			htn.Method{Name: "move_in_room_other_point", Fn: h.otherPoint},
		),
		d.DeclareMethods(TaskCrossDoor,
			htn.Method{Name: "cross_door_forward", Fn: h.crossing(true)},
			htn.Method{Name: "cross_door_reverse", Fn: h.crossing(false)},
		),
		d.DeclareMethods(TaskOpenDoor,
			htn.Method{Name: "open_door_forward", Fn: h.opening(true)},
			htn.Method{Name: "open_door_reverse", Fn: h.opening(false)},
		),
		d.DeclareMethods(TaskFetch, htn.Method{Name: "fetch_box", Fn: h.fetch}),
		d.DeclareMethods(TaskTransport, htn.Method{Name: "transport_box", Fn: h.transport}),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return d, nil
}

// MustDomain is like NewDomain but panics on error.
func MustDomain(m *worldmap.Map) *htn.Domain {
	d, err := NewDomain(m)
	if err != nil {
		panic(err)
	}
	return d
}
