package rearrange_test

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/navigation"
	"github.com/aretw0/waypoint/pkg/rearrange"
	"github.com/aretw0/waypoint/pkg/worldmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolve_DefaultMap(t *testing.T) {
	s, err := rearrange.New("")
	require.NoError(t, err)
	assert.Equal(t, rearrange.DefaultConstraint, s.Constraint())

	a, err := s.Solve(worldmap.Default())
	require.NoError(t, err)

	// box1 would fit room2 but leaves room3 without a valid box, so the search backtracks.
	assert.Equal(t, rearrange.Assignment{
		{Room: "room1", Box: "box2", Drop: "p1"},
		{Room: "room2", Box: "box3", Drop: "p5"},
		{Room: "room3", Box: "box1", Drop: "p9"},
	}, a)

	assert.Equal(t, []domain.Task{
		navigation.Transport("box2", "p1"),
		navigation.Transport("box3", "p5"),
		navigation.Transport("box1", "p9"),
	}, a.Tasks())
}

func TestSolve_Constraints(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		expected   []string
		wantErr    error
	}{
		{"Same Colour", "box.color == room.color", []string{"box1", "box2", "box3"}, nil},
		{"Any", "true", []string{"box1", "box2", "box3"}, nil},
		{"By Name", `box.name != "box1"`, nil, rearrange.ErrUnsatisfiable},
		{"Never", "false", nil, rearrange.ErrUnsatisfiable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := rearrange.New(tt.constraint)
			require.NoError(t, err)

			a, err := s.Solve(worldmap.Default())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			var boxes []string
			for _, p := range a {
				boxes = append(boxes, p.Box)
			}
			assert.Equal(t, tt.expected, boxes)
		})
	}
}

func TestNew_InvalidConstraint(t *testing.T) {
	for _, c := range []string{"box.colour != room.color", "box.color", "room.color +"} {
		_, err := rearrange.New(c)
		assert.Error(t, err, c)
	}
}

func TestSolve_RoomsWithoutDrop(t *testing.T) {
	m, err := worldmap.Parse([]byte(`
name: two
robot: {id: r, at: a1}
rooms:
  - {name: a, points: [a1], color: red, drop: a1}
  - {name: b, points: [b1]}
doors:
  - {name: dab, from: a1, to: b1, status: open}
boxes:
  - {name: x, at: b1, color: red}
  - {name: y, at: b1, color: blue}
`))
	require.NoError(t, err)

	s, err := rearrange.New("")
	require.NoError(t, err)
	a, err := s.Solve(m)
	require.NoError(t, err)
	assert.Equal(t, rearrange.Assignment{{Room: "a", Box: "y", Drop: "a1"}}, a)
}
