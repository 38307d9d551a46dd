package waypoint_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/adapters/simulator"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/navigation"
	"github.com/aretw0/waypoint/pkg/worldmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacade_DefaultMap(t *testing.T) {
	eng, err := waypoint.New()
	require.NoError(t, err)
	assert.Equal(t, "three-rooms", eng.Name)
	assert.ElementsMatch(t, navigation.Operators, eng.Domain().Operators())

	plan, err := eng.Plan(context.Background(), nil, navigation.NavigateTo("p9"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"(moveto, p3)",
		"(cross, door3, p4)",
		"(moveto, p6)",
		"(cross, door2, p7)",
		"(moveto, p9)",
	}, plan.Strings())
}

func TestFacade_MapFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: corridor
robot: {id: r2, at: a1}
rooms:
  - {name: a, points: [a1, a2]}
  - {name: b, points: [b1]}
doors:
  - {name: dab, from: a2, to: b1, status: closed}
`), 0644))

	eng, err := waypoint.New(waypoint.WithMapFile(path))
	require.NoError(t, err)
	assert.Equal(t, "corridor", eng.Name)

	plan, err := eng.Plan(context.Background(), nil, navigation.NavigateTo("b1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"(moveto, a2)", "(open, dab)", "(cross, dab, b1)", "(close, dab)"}, plan.Strings())

	_, err = waypoint.New(waypoint.WithMapFile(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestFacade_HooksAndDepth(t *testing.T) {
	var plans, steps int
	eng, err := waypoint.New(
		waypoint.WithMap(worldmap.Default()),
		waypoint.WithHooks(domain.PlannerHooks{
			OnPlan: func(ctx context.Context, e *domain.PlanEvent) { plans++ },
		}),
		waypoint.WithHooks(domain.PlannerHooks{
			OnStep: func(ctx context.Context, e *domain.StepEvent) { steps++ },
		}),
	)
	require.NoError(t, err)

	sim := simulator.New(eng.Map())
	r, err := eng.Runner(sim, sim)
	require.NoError(t, err)

	mission, err := r.Run(context.Background(), navigation.Fetch("box1"))
	require.NoError(t, err)
	assert.Equal(t, "my_rob", mission.RobotID)
	assert.Equal(t, 1, plans)
	assert.Equal(t, len(mission.Plan), steps)

	shallow, err := waypoint.New(waypoint.WithMaxDepth(2))
	require.NoError(t, err)
	_, err = shallow.Plan(context.Background(), nil, navigation.NavigateTo("p9"))
	assert.ErrorIs(t, err, domain.ErrDepthExceeded)
}
