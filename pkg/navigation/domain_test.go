package navigation_test

import (
	"context"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/htn"
	"github.com/aretw0/waypoint/pkg/navigation"
	"github.com/aretw0/waypoint/pkg/worldmap"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tk(name string, args ...string) domain.Task {
	return domain.NewTask(name, args...)
}

type fixture struct {
	m       *worldmap.Map
	d       *htn.Domain
	planner *htn.Planner
}

func newFixture(t *testing.T, m *worldmap.Map) *fixture {
	t.Helper()
	d, err := navigation.NewDomain(m)
	require.NoError(t, err)
	return &fixture{m: m, d: d, planner: htn.NewPlanner(d, htn.WithMaxDepth(500))}
}

func (f *fixture) plan(t *testing.T, s *domain.WorldState, tasks ...domain.Task) (domain.Plan, error) {
	t.Helper()
	return f.planner.Plan(context.Background(), s, tasks)
}

// execute replays plan on a copy of s through the domain operators.
func (f *fixture) execute(t *testing.T, s *domain.WorldState, plan domain.Plan) *domain.WorldState {
	t.Helper()
	cur := s.Clone()
	for i, step := range plan {
		next, err := f.d.Apply(cur, step)
		require.NoError(t, err, "step %d %s", i, step)
		cur = next
	}
	return cur
}

func stateAt(m *worldmap.Map, p string) *domain.WorldState {
	s := m.InitialState()
	s.Positions[domain.Robot] = p
	return s
}

func TestScenario_OpenRouteThroughTwoDoors(t *testing.T) {
	f := newFixture(t, worldmap.Default())
	s := stateAt(f.m, "p1")

	plan, err := f.plan(t, s, navigation.NavigateTo("p9"))
	require.NoError(t, err)

	want := domain.Plan{
		tk("moveto", "p3"),
		tk("cross", "door3", "p4"),
		tk("moveto", "p6"),
		tk("cross", "door2", "p7"),
		tk("moveto", "p9"),
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
	assert.Zero(t, plan.Count("open"))
	assert.Zero(t, plan.Count("close"))
	assert.True(t, plan.Contains(tk("cross", "door3", "p4"), tk("moveto", "p6"), tk("cross", "door2", "p7")))

	end := f.execute(t, s, plan)
	assert.Equal(t, "p9", end.RobotAt())
	assert.Equal(t, []string{"door3", "door2"}, end.Crossed)
}

func TestScenario_FetchBox(t *testing.T) {
	f := newFixture(t, worldmap.Default())
	s := stateAt(f.m, "p1")

	plan, err := f.plan(t, s, navigation.Fetch("box1"))
	require.NoError(t, err)

	want := domain.Plan{
		tk("moveto", "p3"),
		tk("cross", "door3", "p4"),
		tk("pickup", "box1"),
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}

	end := f.execute(t, s, plan)
	assert.Equal(t, "box1", end.Carrying)
	at, _ := end.PositionOf("box1")
	assert.Equal(t, "p4", at)
}

func TestScenario_ClosedDoorIsSandwiched(t *testing.T) {
	f := newFixture(t, worldmap.Default())
	s := stateAt(f.m, "p2")

	plan, err := f.plan(t, s, navigation.NavigateTo("p8"))
	require.NoError(t, err)

	assert.True(t, plan.Contains(tk("open", "door1"), tk("cross", "door1", "p8"), tk("close", "door1")), "plan: %v", plan)

	end := f.execute(t, s, plan)
	assert.Equal(t, "p8", end.RobotAt())
	assert.Equal(t, domain.DoorClosed, end.Doors["door1"])
}

func TestNavigateTo_EveryPairOfPoints(t *testing.T) {
	f := newFixture(t, worldmap.Default())
	points := f.m.Points()

	for _, from := range points {
		for _, to := range points {
			t.Run(from+"_to_"+to, func(t *testing.T) {
				s := stateAt(f.m, from)
				plan, err := f.plan(t, s, navigation.NavigateTo(to))
				require.NoError(t, err)

				if from == to {
					assert.Empty(t, plan)
				} else {
					assert.NotEmpty(t, plan)
				}

				end := f.execute(t, s, plan)
				assert.Equal(t, to, end.RobotAt())

				seen := make(map[string]bool)
				for _, d := range end.Crossed {
					assert.False(t, seen[d], "door %s crossed twice", d)
					seen[d] = true
				}
				for name, status := range s.Doors {
					assert.Equal(t, status, end.Doors[name], "door %s status changed", name)
				}

				again, err := f.plan(t, end, navigation.NavigateTo(to))
				require.NoError(t, err)
				assert.Empty(t, again, "navigating again must be a no-op")
			})
		}
	}
}

func TestNavigateTo_Unreachable(t *testing.T) {
	m, err := worldmap.Parse([]byte(`
name: islands
robot: {id: r, at: a1}
rooms:
  - {name: a, points: [a1, a2]}
  - {name: b, points: [b1]}
  - {name: c, points: [c1]}
doors:
  - {name: dab, from: a2, to: b1, status: closed}
`))
	require.NoError(t, err)
	f := newFixture(t, m)

	plan, err := f.plan(t, m.InitialState(), navigation.NavigateTo("c1"))
	assert.ErrorIs(t, err, domain.ErrNoPlan)
	assert.Nil(t, plan)

	_, err = f.plan(t, m.InitialState(), navigation.NavigateTo("nowhere"))
	assert.ErrorIs(t, err, domain.ErrNoPlan)
}

func TestNavigateTo_BacktracksOutOfDeadEnd(t *testing.T) {
	m, err := worldmap.Parse([]byte(`
name: dead-end
robot: {id: r, at: a1}
rooms:
  - {name: a, points: [a1, a2]}
  - {name: b, points: [b1]}
  - {name: c, points: [c1]}
  - {name: d, points: [d1]}
doors:
  - {name: dab, from: a1, to: b1, status: open}
  - {name: dac, from: a2, to: c1, status: open}
  - {name: dcd, from: c1, to: d1, status: open}
`))
	require.NoError(t, err)
	f := newFixture(t, m)

	s := m.InitialState()
	plan, err := f.plan(t, s, navigation.NavigateTo("d1"))
	require.NoError(t, err)

	want := domain.Plan{
		tk("moveto", "a2"),
		tk("cross", "dac", "c1"),
		tk("cross", "dcd", "d1"),
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestNavigateTo_CycleTerminates(t *testing.T) {
	m, err := worldmap.Parse([]byte(`
name: triangle-and-island
robot: {id: r, at: a1}
rooms:
  - {name: a, points: [a1, a2]}
  - {name: b, points: [b1, b2]}
  - {name: c, points: [c1, c2]}
  - {name: island, points: [i1]}
doors:
  - {name: dab, from: a1, to: b1, status: open}
  - {name: dbc, from: b2, to: c1, status: open}
  - {name: dca, from: c2, to: a2, status: closed}
`))
	require.NoError(t, err)
	d, err := navigation.NewDomain(m)
	require.NoError(t, err)

	_, err = htn.NewPlanner(d).Plan(context.Background(), m.InitialState(), []domain.Task{navigation.NavigateTo("i1")})
	assert.ErrorIs(t, err, domain.ErrNoPlan, "search must end on its own in a cyclic door graph")

	f := newFixture(t, m)
	for _, goal := range []string{"b2", "c1", "c2", "a2"} {
		s := m.InitialState()
		plan, err := f.plan(t, s, navigation.NavigateTo(goal))
		require.NoError(t, err, goal)

		crossed := map[string]int{}
		for _, step := range plan {
			if step.Name == "cross" {
				crossed[step.Arg(0)]++
			}
		}
		for door, n := range crossed {
			assert.Equal(t, 1, n, "door %s crossed more than once towards %s", door, goal)
		}
		assert.Equal(t, goal, f.execute(t, s, plan).RobotAt())
	}
}

func TestOpenDoor_RestoresStatus(t *testing.T) {
	f := newFixture(t, worldmap.Default())

	for _, start := range []string{"p2", "p8"} {
		t.Run(start, func(t *testing.T) {
			s := stateAt(f.m, start)
			plan, err := f.plan(t, s, tk("open_door", "door1"))
			require.NoError(t, err)
			require.Len(t, plan, 3)
			assert.Equal(t, "open", plan[0].Name)
			assert.Equal(t, "close", plan[2].Name)

			end := f.execute(t, s, plan)
			assert.Equal(t, domain.DoorClosed, end.Doors["door1"])
			assert.NotEqual(t, start, end.RobotAt())
		})
	}

	t.Run("AlreadyOpen", func(t *testing.T) {
		_, err := f.plan(t, stateAt(f.m, "p6"), tk("open_door", "door2"))
		assert.ErrorIs(t, err, domain.ErrNoPlan)
	})
}

func TestCrossDoor_Direction(t *testing.T) {
	f := newFixture(t, worldmap.Default())

	plan, err := f.plan(t, stateAt(f.m, "p7"), tk("cross_door", "door2"))
	require.NoError(t, err)
	assert.Equal(t, domain.Plan{tk("cross", "door2", "p6")}, plan)

	_, err = f.plan(t, stateAt(f.m, "p5"), tk("cross_door", "door2"))
	assert.ErrorIs(t, err, domain.ErrNoPlan, "robot is not at either endpoint")

	_, err = f.plan(t, stateAt(f.m, "p2"), tk("cross_door", "door1"))
	assert.ErrorIs(t, err, domain.ErrNoPlan, "closed doors are never crossed directly")
}

func TestTransport_AllBranches(t *testing.T) {
	f := newFixture(t, worldmap.Default())

	carrying := func(at, box string) *domain.WorldState {
		s := stateAt(f.m, at)
		delete(s.Positions, box)
		s.Carrying = box
		return s
	}

	tests := []struct {
		name  string
		state *domain.WorldState
		box   string
		to    string
		want  []string
	}{
		{
			name:  "CarryingAtTarget",
			state: carrying("p9", "box1"),
			box:   "box1", to: "p9",
			want: []string{"putdown"},
		},
		{
			name:  "CarryingElsewhere",
			state: carrying("p4", "box1"),
			box:   "box1", to: "p5",
			want: []string{"moveto", "putdown"},
		},
		{
			name:  "AtBox",
			state: stateAt(f.m, "p4"),
			box:   "box1", to: "p9",
			want: []string{"pickup", "moveto", "cross", "moveto", "putdown"},
		},
		{
			name:  "AwayFromBox",
			state: stateAt(f.m, "p1"),
			box:   "box1", to: "p5",
			want: []string{"moveto", "cross", "pickup", "moveto", "putdown"},
		},
		{
			name:  "RobotAtTargetBoxElsewhere",
			state: stateAt(f.m, "p1"),
			box:   "box1", to: "p1",
			want: []string{"moveto", "cross", "pickup", "cross", "moveto", "putdown"},
		},
		{
			name:  "AlreadyDelivered",
			state: stateAt(f.m, "p1"),
			box:   "box2", to: "p9",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := f.plan(t, tt.state, navigation.Transport(tt.box, tt.to))
			require.NoError(t, err)

			var names []string
			for _, step := range plan {
				names = append(names, step.Name)
			}
			assert.Equal(t, tt.want, names)

			end := f.execute(t, tt.state, plan)
			assert.Equal(t, "", end.Carrying)
			assert.Equal(t, tt.to, end.Positions[tt.box])
		})
	}

	t.Run("CarryingAnotherBox", func(t *testing.T) {
		_, err := f.plan(t, carrying("p1", "box3"), navigation.Transport("box1", "p9"))
		assert.ErrorIs(t, err, domain.ErrNoPlan)
	})

	t.Run("UnknownBox", func(t *testing.T) {
		_, err := f.plan(t, stateAt(f.m, "p1"), navigation.Transport("box9", "p9"))
		assert.ErrorIs(t, err, domain.ErrNoPlan)
	})

	t.Run("UnknownTarget", func(t *testing.T) {
		_, err := f.plan(t, stateAt(f.m, "p1"), navigation.Transport("box1", "p99"))
		assert.ErrorIs(t, err, domain.ErrNoPlan)
	})
}

func TestFetch_Branches(t *testing.T) {
	f := newFixture(t, worldmap.Default())

	plan, err := f.plan(t, stateAt(f.m, "p1"), navigation.Fetch("box3"))
	require.NoError(t, err)
	assert.Equal(t, domain.Plan{tk("pickup", "box3")}, plan)

	s := stateAt(f.m, "p1")
	delete(s.Positions, "box3")
	s.Carrying = "box3"
	plan, err = f.plan(t, s, navigation.Fetch("box3"))
	require.NoError(t, err)
	assert.Empty(t, plan)

	_, err = f.plan(t, s, navigation.Fetch("box1"))
	assert.ErrorIs(t, err, domain.ErrNoPlan, "hands are full")
}

func TestSequentialTasksResetBookkeeping(t *testing.T) {
	f := newFixture(t, worldmap.Default())
	s := stateAt(f.m, "p1")

	plan, err := f.plan(t, s,
		navigation.NavigateTo("p5"),
		navigation.NavigateTo("p1"),
		navigation.NavigateTo("p9"),
	)
	require.NoError(t, err)
	assert.Equal(t, "p9", f.execute(t, s, plan).RobotAt())
}

func TestSequentialTasks_SameGoalAfterLeavingByPrimitive(t *testing.T) {
	m, err := worldmap.Parse([]byte(`
name: two-rooms
robot: {id: r, at: a2}
rooms:
  - {name: a, points: [a1, a2]}
  - {name: b, points: [b1, b2]}
doors:
  - {name: dab, from: a1, to: b1, status: open}
`))
	require.NoError(t, err)
	f := newFixture(t, m)

	s := m.InitialState()
	plan, err := f.plan(t, s,
		navigation.NavigateTo("b1"),
		tk("cross", "dab", "a1"),
		navigation.NavigateTo("b1"),
	)
	require.NoError(t, err)

	want := domain.Plan{
		tk("moveto", "a1"),
		tk("cross", "dab", "b1"),
		tk("cross", "dab", "a1"),
		tk("cross", "dab", "b1"),
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "b1", f.execute(t, s, plan).RobotAt())
}

func TestNavigateTo_ThirdDoorOutOfRoom(t *testing.T) {
	m, err := worldmap.Parse([]byte(`
name: three-exits
robot: {id: r, at: a1}
rooms:
  - {name: a, points: [a1, a2, a3]}
  - {name: x, points: [x1]}
  - {name: y, points: [y1]}
  - {name: b, points: [b1, b2]}
  - {name: c, points: [c1]}
doors:
  - {name: dx, from: a1, to: x1, status: open}
  - {name: dy, from: a2, to: y1, status: open}
  - {name: db, from: a3, to: b1, status: open}
  - {name: dc, from: b2, to: c1, status: open}
`))
	require.NoError(t, err)
	f := newFixture(t, m)

	s := m.InitialState()
	plan, err := f.plan(t, s, navigation.NavigateTo("c1"))
	require.NoError(t, err)

	want := domain.Plan{
		tk("moveto", "a3"),
		tk("cross", "db", "b1"),
		tk("moveto", "b2"),
		tk("cross", "dc", "c1"),
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "c1", f.execute(t, s, plan).RobotAt())

	for _, goal := range []string{"x1", "y1", "b1", "b2"} {
		_, err := f.plan(t, m.InitialState(), navigation.NavigateTo(goal))
		assert.NoError(t, err, goal)
	}
}

func TestPutdownPrecondition(t *testing.T) {
	f := newFixture(t, worldmap.Default())

	_, err := f.d.Apply(stateAt(f.m, "p1"), tk("putdown", "box1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPrecondition)
}

func TestNewDomain(t *testing.T) {
	_, err := navigation.NewDomain(nil)
	assert.Error(t, err)

	d := navigation.MustDomain(worldmap.Default())
	assert.ElementsMatch(t, navigation.Operators, d.Operators())
	assert.ElementsMatch(t, []string{"navigate_to", "move_in_room", "cross_door", "open_door", "fetch", "transport"}, d.Tasks())
}
