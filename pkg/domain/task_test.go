package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTask(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Task
		wantErr bool
	}{
		{in: "(navigate_to, p9)", want: domain.NewTask("navigate_to", "p9")},
		{in: "('transport', 'box1', 'p1')", want: domain.NewTask("transport", "box1", "p1")},
		{in: "fetch(box2)", want: domain.NewTask("fetch", "box2")},
		{in: "transport box2 p5", want: domain.NewTask("transport", "box2", "p5")},
		{in: "(navigate_to p3)", want: domain.NewTask("navigate_to", "p3")},
		{in: "(rearrange)", want: domain.NewTask("rearrange")},
		{in: "   ", wantErr: true},
		{in: "()", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseTask(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidTask)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestTask_JSON(t *testing.T) {
	task := domain.NewTask("cross", "door1", "p8")

	data, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `["cross","door1","p8"]`, string(data))

	var back domain.Task
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "(cross, door1, p8)", back.String())

	err = json.Unmarshal([]byte(`[]`), &back)
	assert.ErrorIs(t, err, domain.ErrInvalidTask)
}

func TestPlan_Contains(t *testing.T) {
	plan := domain.Plan{
		domain.NewTask("moveto", "p2"),
		domain.NewTask("open", "door1"),
		domain.NewTask("cross", "door1", "p8"),
		domain.NewTask("close", "door1"),
	}

	assert.True(t, plan.Contains(
		domain.NewTask("open", "door1"),
		domain.NewTask("cross", "door1", "p8"),
		domain.NewTask("close", "door1"),
	))
	assert.False(t, plan.Contains(
		domain.NewTask("open", "door1"),
		domain.NewTask("close", "door1"),
	))
	assert.Equal(t, 1, plan.Count("cross"))
}

func TestWorldState_CloneIsolation(t *testing.T) {
	s := domain.NewWorldState("p1", map[string]domain.DoorStatus{"door1": domain.DoorClosed}, map[string]string{"box1": "p4"}, "")
	s.MarkDoor("door3")
	s.MarkPoint("p9")

	c := s.Clone()
	c.Positions[domain.Robot] = "p2"
	c.Doors["door1"] = domain.DoorOpen
	c.MarkDoor("door2")
	c.Crossed = append(c.Crossed, "door3")

	assert.Equal(t, "p1", s.RobotAt())
	assert.Equal(t, domain.DoorClosed, s.Doors["door1"])
	assert.False(t, s.DoorAttempted("door2"))
	assert.Empty(t, s.Crossed)
	assert.True(t, c.DoorAttempted("door3"))
	assert.True(t, c.PointAttempted("p9"))
}

func TestWorldState_BeginSearch(t *testing.T) {
	s := domain.NewWorldState("p1", nil, nil, "")

	s.BeginSearch("p9")
	s.MarkDoor("door3")
	s.BeginSearch("p9")
	assert.True(t, s.DoorAttempted("door3"), "same goal keeps bookkeeping")

	s.BeginSearch("p5")
	assert.False(t, s.DoorAttempted("door3"), "new goal resets bookkeeping")
	assert.Equal(t, "p5", s.NavGoal)
}

func TestWorldState_CarriedBoxFollowsRobot(t *testing.T) {
	s := domain.NewWorldState("p4", nil, map[string]string{"box1": "p4", "box2": "p9"}, "box1")

	_, stored := s.Positions["box1"]
	assert.False(t, stored)

	at, ok := s.PositionOf("box1")
	assert.True(t, ok)
	assert.Equal(t, "p4", at)
	assert.Equal(t, []string{"box1", "box2"}, s.Boxes())
}
