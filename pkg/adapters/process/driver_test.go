package process_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/process"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/navigation"
	"github.com/aretw0/waypoint/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("driver tests use sh")
	}
}

func TestDriver_Execute(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	log := filepath.Join(dir, "actions.log")

	d := process.NewDriver(process.WithBaseDir(dir))
	for _, op := range navigation.Operators {
		d.Register(op, "sh", "-c", `echo "$WAYPOINT_OPERATOR $WAYPOINT_ARGC $WAYPOINT_ARG_0 $WAYPOINT_ARG_1" >> actions.log`)
	}
	d.Register("fail", "sh", "-c", "echo jammed >&2; exit 3")

	tests.ExecutorContractTest(t, d, navigation.Operators)

	t.Run("Passes Arguments via Env Vars", func(t *testing.T) {
		require.NoError(t, d.Execute(context.Background(), domain.NewTask("cross", "door3", "p4")))
		data, err := os.ReadFile(log)
		require.NoError(t, err)
		assert.Equal(t, "cross 2 door3 p4\n", string(data))
	})

	t.Run("Non-Zero Exit Fails", func(t *testing.T) {
		err := d.Execute(context.Background(), domain.NewTask("fail"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jammed")
	})

	t.Run("Fails For Unregistered Operator", func(t *testing.T) {
		err := d.Execute(context.Background(), domain.NewTask("hacker_script"))
		assert.ErrorIs(t, err, process.ErrNotRegistered)
	})
}

func TestDriver_Sense(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name    string
		report  string
		wantErr bool
		check   func(t *testing.T, s *domain.WorldState)
	}{
		{
			name:   "Valid",
			report: `{"robot": "p2", "doors": {"door1": "close", "door2": "open"}, "boxes": {"box1": "p4", "box3": "p2"}, "carrying": "box3"}`,
			check: func(t *testing.T, s *domain.WorldState) {
				assert.Equal(t, "p2", s.RobotAt())
				assert.Equal(t, domain.DoorClosed, s.Doors["door1"])
				assert.Equal(t, "box3", s.Carrying)
				assert.NotContains(t, s.Positions, "box3")
				assert.Equal(t, "p4", s.Positions["box1"])
			},
		},
		{name: "Invalid JSON", report: `robot p1`, wantErr: true},
		{name: "No Robot", report: `{"doors": {}}`, wantErr: true},
		{name: "Bad Door", report: `{"robot": "p1", "doors": {"door1": "ajar"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := process.NewDriver()
			d.SetSense("printf", "%s", tt.report)

			s, err := d.Sense(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestLoadDriver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drivers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sense:
  command: ./sense.sh
operators:
  - name: moveto
    command: ./move.sh
    args: [--fast]
    env: {ROBOT: my_rob}
  - command: ./nameless.sh
`), 0644))

	cfg, err := process.LoadDriver(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Sense)
	assert.Equal(t, "./sense.sh", cfg.Sense.Command)

	reg := cfg.Registry()
	assert.Len(t, reg, 1)
	assert.Equal(t, []string{"--fast"}, reg["moveto"].Args)
	assert.Equal(t, "my_rob", reg["moveto"].Environment["ROBOT"])

	d := process.NewDriver(process.WithConfig(cfg))
	assert.True(t, d.Supports("moveto"))
	assert.False(t, d.Supports("cross"))

	_, err = process.LoadDriver(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
