package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/worldmap"
)

// ValidateMap checks the map structure and then crawls it from the robot's point,
// reporting points, boxes and drop points the robot can never reach.
// Door status is ignored while crawling: a closed door can always be opened.
func ValidateMap(m *worldmap.Map) error {
	if err := m.Validate(); err != nil {
		return err
	}

	start := m.Robot.At
	visited := map[string]bool{}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, next := range m.Adjacent(current) {
			if !visited[next] {
				queue = append(queue, next)
			}
		}
	}

	var errors []string
	for _, p := range m.Points() {
		if !visited[p] {
			room, _ := m.RoomOf(p)
			errors = append(errors, fmt.Sprintf("Unreachable point: '%s' (room '%s')", p, room))
		}
	}
	for _, b := range m.Boxes {
		if !visited[b.At] {
			errors = append(errors, fmt.Sprintf("Unreachable box: '%s' at '%s'", b.Name, b.At))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}

	return nil
}

// Warnings lists map shapes that are valid but limit what the tools can do with them.
// Rooms without a drop point are skipped by rearrange.
func Warnings(m *worldmap.Map) []string {
	var out []string
	for _, r := range m.Rooms {
		if r.Drop == "" {
			out = append(out, fmt.Sprintf("room '%s' has no drop point; rearrange will not deliver a box to it", r.Name))
		}
	}
	return out
}
