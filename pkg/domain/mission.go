package domain

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Outcome is the terminal result of a mission.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeNoPlan    Outcome = "no_plan"
)

// Mission records one sense-plan-act invocation.
type Mission struct {
	ID      string  `json:"id"`
	RobotID string  `json:"robot_id,omitempty"`
	Tasks   []Task  `json:"tasks"`
	Plan    Plan    `json:"plan,omitempty"`
	Outcome Outcome `json:"outcome"`

	// Executed is the number of plan steps that completed.
	Executed int `json:"executed"`

	// FailedStep is the index of the step that failed, or -1.
	FailedStep int    `json:"failed_step"`
	Error      string `json:"error,omitempty"`

	Initial *WorldState `json:"initial,omitempty"`
	Changes *WorldDiff  `json:"changes,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`

	// Sealed holds the encrypted record when the mission is stored through an
	// encrypting store; the other detail fields are then empty.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewMission creates a pending mission with a fresh ID.
func NewMission(robotID string, tasks []Task) *Mission {
	return &Mission{
		ID:         uuid.NewString(),
		RobotID:    robotID,
		Tasks:      tasks,
		Outcome:    OutcomePending,
		FailedStep: -1,
		StartedAt:  time.Now(),
	}
}

// Finish stamps the outcome and the finish time.
func (m *Mission) Finish(outcome Outcome) {
	m.Outcome = outcome
	m.FinishedAt = time.Now()
}

// Fail records err and finishes the mission with outcome.
func (m *Mission) Fail(outcome Outcome, err error) {
	if err != nil {
		m.Error = err.Error()
	}
	m.Finish(outcome)
}

// Clone returns a deep copy of the mission.
func (m *Mission) Clone() *Mission {
	if m == nil {
		return nil
	}
	c := *m
	c.Tasks = cloneTasks(m.Tasks)
	c.Plan = Plan(cloneTasks(m.Plan))
	c.Initial = m.Initial.Clone()
	c.Sealed = slices.Clone(m.Sealed)
	if m.Changes != nil {
		ch := *m.Changes
		if m.Changes.Robot != nil {
			r := *m.Changes.Robot
			ch.Robot = &r
		}
		if m.Changes.Carrying != nil {
			carrying := *m.Changes.Carrying
			ch.Carrying = &carrying
		}
		ch.Boxes = maps.Clone(m.Changes.Boxes)
		ch.Doors = maps.Clone(m.Changes.Doors)
		c.Changes = &ch
	}
	return &c
}

func cloneTasks(ts []Task) []Task {
	if ts == nil {
		return nil
	}
	out := make([]Task, len(ts))
	for i, t := range ts {
		out[i] = Task{Name: t.Name, Args: slices.Clone(t.Args)}
	}
	return out
}
