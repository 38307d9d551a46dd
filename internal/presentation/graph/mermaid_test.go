package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/worldmap"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	m := worldmap.Default()
	moved := m.InitialState()
	moved.Doors["door1"] = domain.DoorOpen
	moved.Carrying = "box1"
	delete(moved.Positions, "box1")

	tests := []struct {
		name        string
		overlay     *graph.GraphOverlay
		contains    []string
		notContains []string
	}{
		{
			name: "Rooms And Points",
			contains: []string{
				"graph LR",
				"subgraph room1[\"room1: Bed\"]",
				"p2(\"p2\")",
				"p4(\"p4 <br/> 📦 box1\")",
			},
		},
		{
			name: "Door Status",
			contains: []string{
				"p6 ---|\"door2\"| p7",
				"p2 -.-|\"🔒 door1\"| p8",
			},
		},
		{
			name:    "State Overlay",
			overlay: graph.StateOverlay(moved),
			contains: []string{
				"p2 ---|\"door1\"| p8",
				"p1(\"p1 <br/> 📦 box1, box3\")",
				"class p1 current;",
			},
			notContains: []string{"p4(\"p4 <br/>"},
		},
		{
			name: "Plan Overlay",
			overlay: graph.PlanOverlay(m.InitialState(), domain.Plan{
				domain.NewTask("moveto", "p3"),
				domain.NewTask("cross", "door3", "p4"),
				domain.NewTask("pickup", "box1"),
			}),
			contains: []string{
				"class p1 visited;",
				"class p3 visited;",
				"class p4 current;",
			},
			notContains: []string{"class p4 visited;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(m, tt.overlay)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestGenerateMermaid_Sanitization(t *testing.T) {
	m, err := worldmap.Parse([]byte(`
name: odd
robot: {id: r, at: a.1}
rooms:
  - {name: hall-way, points: [a.1]}
  - {name: b, points: [b/1]}
doors:
  - {name: d, from: a.1, to: b/1, status: open}
`))
	if err != nil {
		t.Fatal(err)
	}
	got := graph.GenerateMermaid(m, nil)
	if !strings.Contains(got, "a_1 ---|\"d\"| b_1") {
		t.Errorf("expected sanitized door edge, got:\n%s", got)
	}
	if !strings.Contains(got, "subgraph hall_way[\"hall-way\"]") {
		t.Errorf("expected sanitized room id, got:\n%s", got)
	}
}
