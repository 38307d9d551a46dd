package tests

import (
	"context"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
)

// SensorContractTest verifies that a sensor reports a usable snapshot: the robot is
// placed, every door has a status, and the search bookkeeping is empty.
func SensorContractTest(t *testing.T, sensor ports.Sensor) {
	t.Helper()

	s, err := sensor.Sense(context.Background())
	if err != nil {
		t.Fatalf("unexpected error sensing: %v", err)
	}

	t.Run("RobotPlaced", func(t *testing.T) {
		if s.RobotAt() == "" {
			t.Error("expected the robot position to be set")
		}
	})

	t.Run("DoorStatus", func(t *testing.T) {
		for d, status := range s.Doors {
			if status != domain.DoorOpen && status != domain.DoorClosed {
				t.Errorf("door %s has invalid status %q", d, status)
			}
		}
	})

	t.Run("EmptyBookkeeping", func(t *testing.T) {
		if len(s.AttemptedDoors) != 0 || len(s.AttemptedPoints) != 0 || s.NavGoal != "" {
			t.Errorf("expected empty search bookkeeping, got doors=%v points=%v goal=%q", s.AttemptedDoors, s.AttemptedPoints, s.NavGoal)
		}
	})

	t.Run("CarriedBoxHasNoPosition", func(t *testing.T) {
		if s.Carrying == "" {
			return
		}
		if _, ok := s.Positions[s.Carrying]; ok {
			t.Errorf("carried box %s must not have its own position", s.Carrying)
		}
	})

	t.Run("Snapshot", func(t *testing.T) {
		s.Positions[domain.Robot] = "mutated"
		again, err := sensor.Sense(context.Background())
		if err != nil {
			t.Fatalf("unexpected error sensing: %v", err)
		}
		if again.RobotAt() == "mutated" {
			t.Error("sensed states must not alias the live world")
		}
	})
}

// ExecutorContractTest verifies that an executor handles every operator in operators
// and refuses unknown ones.
func ExecutorContractTest(t *testing.T, executor ports.Executor, operators []string) {
	t.Helper()

	t.Run("Supports", func(t *testing.T) {
		for _, op := range operators {
			if !executor.Supports(op) {
				t.Errorf("expected a handler for operator %s", op)
			}
		}
	})

	t.Run("UnknownOperator", func(t *testing.T) {
		if executor.Supports("non-existent-operator") {
			t.Error("expected no handler for an unknown operator")
		}
		err := executor.Execute(context.Background(), domain.NewTask("non-existent-operator"))
		if err == nil {
			t.Error("expected error executing an unknown operator, got nil")
		}
	})
}
