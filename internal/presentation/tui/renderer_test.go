package tui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/worldmap"
)

func TestNewRenderer_NotTerminal(t *testing.T) {
	var buf bytes.Buffer
	out, err := NewRenderer(&buf)("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", out)
}

func TestPlanMarkdown(t *testing.T) {
	tasks := []domain.Task{domain.NewTask("navigate_to", "p9")}

	got := PlanMarkdown(tasks, domain.Plan{domain.NewTask("moveto", "p3"), domain.NewTask("cross", "door3", "p4")})
	assert.Contains(t, got, "Tasks: `(navigate_to, p9)`")
	assert.Contains(t, got, "1. `(moveto, p3)`\n2. `(cross, door3, p4)`\n")

	assert.Contains(t, PlanMarkdown(tasks, nil), "_Nothing to do._")
}

func TestMissionMarkdown(t *testing.T) {
	m := domain.NewMission("my_rob", []domain.Task{domain.NewTask("fetch", "box1")})
	m.Plan = domain.Plan{domain.NewTask("moveto", "p3"), domain.NewTask("cross", "door3", "p4")}
	m.Executed = 1
	m.FailedStep = 1
	carrying := ""
	m.Changes = &domain.WorldDiff{
		Robot:    &domain.Move{From: "p1", To: "p3"},
		Boxes:    map[string]domain.Move{"box3": {From: "p1", To: ""}},
		Carrying: &carrying,
	}
	m.Fail(domain.OutcomeFailed, errors.New("door jammed"))

	got := MissionMarkdown(m)
	for _, want := range []string{
		"- **Outcome**: failed",
		"- **Steps**: 1/2",
		"- **Failed step**: 2 `(cross, door3, p4)`",
		"- **Error**: door jammed",
		"- robot: p1 → p3",
		"- box3: p1 → -",
		"- carrying: -",
	} {
		assert.Contains(t, got, want)
	}
}

func TestPrintWorld(t *testing.T) {
	m := worldmap.Default()
	s := m.InitialState()
	s.Carrying = "box3"
	delete(s.Positions, "box3")

	var buf bytes.Buffer
	PrintWorld(&buf, m, s)
	out := buf.String()

	assert.Contains(t, out, "room1     p1, p2, p3\n")
	assert.Contains(t, out, "door1     closed\n")
	assert.Contains(t, out, "box1      p4\n")
	assert.Contains(t, out, "box3      carried (p1)\n")
	assert.Contains(t, out, "ROBOT: my_rob at p1 carrying box3\n")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|__/|_|")
	assert.Contains(t, Outcome(&buf, "completed"), "completed")
}
