package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/navigation"
	"github.com/aretw0/waypoint/pkg/worldmap"
)

// GraphOverlay contains dynamic state data to visualize on the map.
type GraphOverlay struct {
	// VisitedPoints are styled as a route, in visiting order.
	VisitedPoints []string
	// CurrentPoint is where the robot is.
	CurrentPoint string
	// Boxes places boxes on points; it overrides the map's initial placement.
	Boxes map[string]string
	// Doors overrides the map's initial door status.
	Doors map[string]domain.DoorStatus
}

// StateOverlay shows the robot, boxes and doors of s.
func StateOverlay(s *domain.WorldState) *GraphOverlay {
	o := &GraphOverlay{
		CurrentPoint: s.RobotAt(),
		Boxes:        make(map[string]string),
		Doors:        s.Doors,
	}
	for _, b := range s.Boxes() {
		o.Boxes[b], _ = s.PositionOf(b)
	}
	return o
}

// PlanOverlay traces the points the robot goes through when plan runs from s.
// The current point is where the plan ends.
func PlanOverlay(s *domain.WorldState, plan domain.Plan) *GraphOverlay {
	o := StateOverlay(s)
	o.VisitedPoints = []string{s.RobotAt()}
	for _, step := range plan {
		switch step.Name {
		case navigation.OpMoveTo:
			o.VisitedPoints = append(o.VisitedPoints, step.Arg(0))
		case navigation.OpCross:
			o.VisitedPoints = append(o.VisitedPoints, step.Arg(1))
		}
	}
	o.CurrentPoint = o.VisitedPoints[len(o.VisitedPoints)-1]
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the map.
// Rooms become subgraphs of their points. Doors are edges between their endpoints:
// solid when open, dotted when closed. Boxes annotate the point they rest on.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(m *worldmap.Map, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	boxesAt := make(map[string][]string)
	doors := make(map[string]domain.DoorStatus, len(m.Doors))
	for _, d := range m.Doors {
		doors[d.Name] = d.Status
	}
	if overlay != nil && overlay.Boxes != nil {
		for b, p := range overlay.Boxes {
			boxesAt[p] = append(boxesAt[p], b)
		}
	} else {
		for _, b := range m.Boxes {
			boxesAt[b.At] = append(boxesAt[b.At], b.Name)
		}
	}
	for _, bs := range boxesAt {
		slices.Sort(bs)
	}
	if overlay != nil {
		for d, st := range overlay.Doors {
			doors[d] = st
		}
	}

	for _, r := range m.Rooms {
		title := r.Name
		if len(r.Objects) > 0 {
			title = fmt.Sprintf("%s: %s", r.Name, strings.Join(r.Objects, ", "))
		}
		sb.WriteString(fmt.Sprintf("    subgraph %s[\"%s\"]\n", sanitizeMermaidID(r.Name), title))
		for _, p := range r.Points {
			label := p
			if boxes := boxesAt[p]; len(boxes) > 0 {
				label = fmt.Sprintf("%s <br/> 📦 %s", p, strings.Join(boxes, ", "))
			}
			sb.WriteString(fmt.Sprintf("        %s(\"%s\")\n", sanitizeMermaidID(p), label))
		}
		sb.WriteString("    end\n")
	}

	for _, d := range m.Doors {
		from, to := sanitizeMermaidID(d.From), sanitizeMermaidID(d.To)
		if doors[d.Name] == domain.DoorOpen {
			sb.WriteString(fmt.Sprintf("    %s ---|\"%s\"| %s\n", from, d.Name, to))
		} else {
			sb.WriteString(fmt.Sprintf("    %s -.-|\"🔒 %s\"| %s\n", from, d.Name, to))
		}
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, p := range overlay.VisitedPoints {
			safeID := sanitizeMermaidID(p)
			if !visitedSet[safeID] && safeID != "" && p != overlay.CurrentPoint {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentPoint != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentPoint)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
