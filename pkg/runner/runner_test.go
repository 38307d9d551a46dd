package runner_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/simulator"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/htn"
	"github.com/aretw0/waypoint/pkg/navigation"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/aretw0/waypoint/pkg/worldmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockExecutor is a testify mock of ports.Executor.
type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Supports(operator string) bool {
	return m.Called(operator).Bool(0)
}

func (m *MockExecutor) Execute(ctx context.Context, task domain.Task) error {
	return m.Called(ctx, task).Error(0)
}

func newPlanner(m *worldmap.Map) *htn.Planner {
	return htn.NewPlanner(navigation.MustDomain(m))
}

func TestRunner_Completed(t *testing.T) {
	m := worldmap.Default()
	sim := simulator.New(m)

	var steps []domain.Task
	r, err := runner.New(newPlanner(m), sim, sim, navigation.Operators,
		runner.WithRobotID("my_rob"),
		runner.WithHooks(domain.PlannerHooks{
			OnStep: func(ctx context.Context, e *domain.StepEvent) { steps = append(steps, e.Task) },
		}),
	)
	require.NoError(t, err)

	mission, err := r.Run(context.Background(), navigation.Transport("box1", "p9"))
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeCompleted, mission.Outcome)
	assert.Equal(t, "my_rob", mission.RobotID)
	assert.Equal(t, len(mission.Plan), mission.Executed)
	assert.Equal(t, -1, mission.FailedStep)
	assert.Equal(t, []domain.Task(mission.Plan), steps)
	assert.False(t, mission.FinishedAt.IsZero())

	require.NotNil(t, mission.Initial)
	assert.Equal(t, "p1", mission.Initial.RobotAt())
	require.NotNil(t, mission.Changes)
	assert.Equal(t, &domain.Move{From: "p1", To: "p9"}, mission.Changes.Robot)
	assert.Equal(t, domain.Move{From: "p4", To: "p9"}, mission.Changes.Boxes["box1"])

	s, err := sim.Sense(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p9", s.Positions["box1"])
}

func TestRunner_NoPlan(t *testing.T) {
	m := worldmap.Default()
	sim := simulator.New(m)
	r, err := runner.New(newPlanner(m), sim, sim, navigation.Operators)
	require.NoError(t, err)

	mission, err := r.Run(context.Background(), navigation.NavigateTo("nowhere"))
	assert.ErrorIs(t, err, domain.ErrNoPlan)
	assert.Equal(t, domain.OutcomeNoPlan, mission.Outcome)
	assert.Empty(t, mission.Plan)
	assert.Zero(t, mission.Executed)
	assert.NotEmpty(t, mission.Error)
}

func TestRunner_UnsupportedOperator(t *testing.T) {
	m := worldmap.Default()
	sim := simulator.New(m)

	exec := new(MockExecutor)
	for _, op := range navigation.Operators {
		exec.On("Supports", op).Return(op != navigation.OpPickup)
	}

	_, err := runner.New(newPlanner(m), sim, exec, navigation.Operators)
	assert.ErrorIs(t, err, runner.ErrUnsupportedOperator)
	assert.ErrorContains(t, err, navigation.OpPickup)
}

func TestRunner_StepFailureStopsPlan(t *testing.T) {
	m := worldmap.Default()
	sim := simulator.New(m)
	boom := errors.New("wheel stuck")

	exec := new(MockExecutor)
	exec.On("Supports", mock.Anything).Return(true)
	exec.On("Execute", mock.Anything, domain.NewTask(navigation.OpMoveTo, "p3")).Return(nil).Once()
	exec.On("Execute", mock.Anything, domain.NewTask(navigation.OpCross, "door3", "p4")).Return(boom).Once()

	r, err := runner.New(newPlanner(m), sim, exec, navigation.Operators)
	require.NoError(t, err)

	mission, err := r.Run(context.Background(), navigation.NavigateTo("p9"))
	require.Error(t, err)

	var stepErr *runner.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 1, stepErr.Index)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, domain.OutcomeFailed, mission.Outcome)
	assert.Equal(t, 1, mission.FailedStep)
	assert.Equal(t, 1, mission.Executed)
	assert.Len(t, mission.Plan, 5)
	exec.AssertExpectations(t)
	exec.AssertNumberOfCalls(t, "Execute", 2)
}

func TestRunner_InterceptorDenies(t *testing.T) {
	m := worldmap.Default()
	start := m.InitialState()
	start.Positions[domain.Robot] = "p2"
	sim := simulator.New(m, simulator.WithState(start))

	r, err := runner.New(newPlanner(m), sim, sim, navigation.Operators,
		runner.WithInterceptor(runner.DenyOperators(navigation.OpOpen)),
	)
	require.NoError(t, err)

	mission, err := r.Run(context.Background(), navigation.NavigateTo("p8"))
	assert.ErrorIs(t, err, runner.ErrStepDenied)
	assert.Equal(t, domain.OutcomeFailed, mission.Outcome)
	assert.Equal(t, 0, mission.FailedStep)
	assert.Nil(t, mission.Changes)
}

func TestRunner_Cancelled(t *testing.T) {
	m := worldmap.Default()
	sim := simulator.New(m)
	r, err := runner.New(newPlanner(m), sim, sim, navigation.Operators)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mission, err := r.Run(ctx, navigation.NavigateTo("p9"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.OutcomeFailed, mission.Outcome)
}
