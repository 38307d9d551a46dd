package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Task is a task literal: a name plus ordered arguments.
// The same shape is used for compound tasks (rewritten by methods) and primitive tasks
// (applied by operators).
type Task struct {
	Name string
	Args []string
}

// NewTask builds a task literal.
func NewTask(name string, args ...string) Task {
	return Task{Name: name, Args: args}
}

// Arg returns the i-th argument or "" when absent.
func (t Task) Arg(i int) string {
	if i < 0 || i >= len(t.Args) {
		return ""
	}
	return t.Args[i]
}

// String renders the task as "(name, arg1, arg2)".
func (t Task) String() string {
	if len(t.Args) == 0 {
		return "(" + t.Name + ")"
	}
	return "(" + t.Name + ", " + strings.Join(t.Args, ", ") + ")"
}

// Equal reports whether two tasks have the same name and arguments.
func (t Task) Equal(o Task) bool {
	if t.Name != o.Name || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if t.Args[i] != o.Args[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the task as the array literal ["name", "arg1", ...].
func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(append([]string{t.Name}, t.Args...))
}

// UnmarshalJSON accepts the array literal form.
func (t *Task) UnmarshalJSON(data []byte) error {
	var parts []string
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	if len(parts) == 0 || parts[0] == "" {
		return fmt.Errorf("%w: empty task", ErrInvalidTask)
	}
	t.Name = parts[0]
	t.Args = parts[1:]
	return nil
}

// ParseTask parses "(name, a, b)", "name(a, b)" or "name a b".
func ParseTask(s string) (Task, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Task{}, fmt.Errorf("%w: empty task", ErrInvalidTask)
	}

	var fields []string
	switch {
	case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		fields = splitArgs(s[1 : len(s)-1])
	case strings.HasSuffix(s, ")") && strings.Contains(s, "("):
		open := strings.Index(s, "(")
		fields = append([]string{s[:open]}, splitArgs(s[open+1:len(s)-1])...)
	default:
		fields = strings.Fields(s)
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(strings.TrimSpace(f), `'"`)
		if f != "" {
			parts = append(parts, f)
		}
	}
	if len(parts) == 0 {
		return Task{}, fmt.Errorf("%w: %q", ErrInvalidTask, s)
	}
	return NewTask(parts[0], parts[1:]...), nil
}

// ParseTasks parses each literal in order.
func ParseTasks(literals []string) ([]Task, error) {
	tasks := make([]Task, 0, len(literals))
	for _, l := range literals {
		t, err := ParseTask(l)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Plan is the flat ordered sequence of primitive tasks produced by the planner.
type Plan []Task

// Strings renders every step with Task.String.
func (p Plan) Strings() []string {
	out := make([]string, len(p))
	for i, t := range p {
		out[i] = t.String()
	}
	return out
}

// Contains reports whether seq appears in the plan as a contiguous subsequence.
func (p Plan) Contains(seq ...Task) bool {
	if len(seq) == 0 {
		return true
	}
	for i := 0; i+len(seq) <= len(p); i++ {
		match := true
		for j := range seq {
			if !p[i+j].Equal(seq[j]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Count returns the number of steps using the given operator.
func (p Plan) Count(name string) int {
	n := 0
	for _, t := range p {
		if t.Name == name {
			n++
		}
	}
	return n
}

func splitArgs(s string) []string {
	if strings.Contains(s, ",") {
		return strings.Split(s, ",")
	}
	return strings.Fields(s)
}
