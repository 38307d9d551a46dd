package tui

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/worldmap"
)

// NewRenderer returns a function that renders markdown using glamour.
// When w is not a terminal the markdown is returned unchanged.
func NewRenderer(w io.Writer) func(string) (string, error) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	width := 80
	if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
		width = cols
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// PlanMarkdown renders a plan as a numbered list.
func PlanMarkdown(tasks []domain.Task, plan domain.Plan) string {
	var sb strings.Builder
	sb.WriteString("## Plan\n\n")
	sb.WriteString("Tasks: ")
	for i, t := range tasks {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "`%s`", t)
	}
	sb.WriteString("\n\n")
	if len(plan) == 0 {
		sb.WriteString("_Nothing to do._\n")
		return sb.String()
	}
	for i, step := range plan {
		fmt.Fprintf(&sb, "%d. `%s`\n", i+1, step)
	}
	return sb.String()
}

// MissionMarkdown renders a mission report.
func MissionMarkdown(m *domain.Mission) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Mission %s\n\n", m.ID)
	fmt.Fprintf(&sb, "- **Robot**: %s\n", m.RobotID)
	fmt.Fprintf(&sb, "- **Outcome**: %s\n", m.Outcome)
	fmt.Fprintf(&sb, "- **Steps**: %d/%d\n", m.Executed, len(m.Plan))
	if m.FailedStep >= 0 && m.FailedStep < len(m.Plan) {
		fmt.Fprintf(&sb, "- **Failed step**: %d `%s`\n", m.FailedStep+1, m.Plan[m.FailedStep])
	}
	if m.Error != "" {
		fmt.Fprintf(&sb, "- **Error**: %s\n", m.Error)
	}
	if !m.FinishedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Duration**: %s\n", m.FinishedAt.Sub(m.StartedAt).Round(time.Millisecond))
	}

	if c := m.Changes; c != nil {
		sb.WriteString("\n### Changes\n\n")
		if c.Robot != nil {
			fmt.Fprintf(&sb, "- robot: %s → %s\n", c.Robot.From, c.Robot.To)
		}
		for _, b := range sortedKeys(c.Boxes) {
			mv := c.Boxes[b]
			fmt.Fprintf(&sb, "- %s: %s → %s\n", b, orDash(mv.From), orDash(mv.To))
		}
		for _, d := range sortedKeys(c.Doors) {
			fmt.Fprintf(&sb, "- %s: %s\n", d, c.Doors[d])
		}
		if c.Carrying != nil {
			fmt.Fprintf(&sb, "- carrying: %s\n", orDash(*c.Carrying))
		}
	}
	return sb.String()
}

// PrintWorld writes the rooms, doors, boxes and robot as aligned tables.
func PrintWorld(w io.Writer, m *worldmap.Map, s *domain.WorldState) {
	rule := strings.Repeat("-", 30)

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-10s%s\n", "ROOM:", "POINTS:")
	for _, r := range m.Rooms {
		fmt.Fprintf(w, "%-10s%s\n", r.Name, strings.Join(r.Points, ", "))
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-10s%s\n", "DOOR:", "STATUS:")
	for _, d := range m.Doors {
		fmt.Fprintf(w, "%-10s%s\n", d.Name, s.Doors[d.Name])
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-10s%s\n", "BOX:", "LOCATION:")
	for _, b := range s.Boxes() {
		at, _ := s.PositionOf(b)
		if b == s.Carrying {
			at = "carried (" + at + ")"
		}
		fmt.Fprintf(w, "%-10s%s\n", b, at)
	}

	fmt.Fprintln(w, rule)
	carrying := s.Carrying
	if carrying == "" {
		carrying = "nothing"
	}
	fmt.Fprintf(w, "ROBOT: %s at %s carrying %s\n", m.Robot.ID, s.RobotAt(), carrying)
	fmt.Fprintln(w, rule)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
