package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/htn"
	"github.com/aretw0/waypoint/pkg/navigation"
	"github.com/aretw0/waypoint/pkg/worldmap"
)

func TestHooks_RecordPlanning(t *testing.T) {
	c := New(false)
	m := worldmap.Default()
	p := htn.NewPlanner(navigation.MustDomain(m), htn.WithHooks(c.Hooks()))

	ctx := context.Background()
	_, err := p.Plan(ctx, m.InitialState(), []domain.Task{navigation.NavigateTo("p9")})
	require.NoError(t, err)
	_, err = p.Plan(ctx, m.InitialState(), []domain.Task{navigation.NavigateTo("nowhere")})
	require.ErrorIs(t, err, domain.ErrNoPlan)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.plans.WithLabelValues("found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.plans.WithLabelValues("no_plan")))
	assert.Greater(t, testutil.ToFloat64(c.expansions.WithLabelValues(navigation.TaskNavigateTo)), 0.0)
	assert.Equal(t, 2, testutil.CollectAndCount(c.planDuration))
}

func TestHooks_RecordStepsAndMissions(t *testing.T) {
	c := New(false)
	hooks := c.Hooks()
	ctx := context.Background()

	hooks.OnStep(ctx, &domain.StepEvent{Task: domain.NewTask(navigation.OpMoveTo, "p2")})
	hooks.OnStep(ctx, &domain.StepEvent{Task: domain.NewTask(navigation.OpMoveTo, "p3"), Err: io.EOF})

	mission := domain.NewMission("my_rob", nil)
	mission.Finish(domain.OutcomeCompleted)
	c.ObserveMission(mission)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.steps.WithLabelValues(navigation.OpMoveTo, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.steps.WithLabelValues(navigation.OpMoveTo, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.missions.WithLabelValues("completed")))
}

func TestHandler(t *testing.T) {
	c := New(true)
	c.ObserveMission(&domain.Mission{Outcome: domain.OutcomeNoPlan})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `waypoint_missions_total{outcome="no_plan"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
