package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
)

// ErrNotRegistered is returned for operators without a registered command.
var ErrNotRegistered = errors.New("operator not registered")

// Driver executes robot actions and reads the world through local processes.
// It follows a Strict Registry pattern for security (Allow-Listing): only registered
// commands ever run, and task arguments reach them as environment variables.
//
// Driver implements ports.Executor, and ports.Sensor when a sense command is set.
type Driver struct {
	registry map[string]CommandConfig
	sense    *CommandConfig
	baseDir  string
	logger   *slog.Logger
}

// Option configures the driver.
type Option func(*Driver)

// WithConfig populates the allow-list and the sense command from a loaded config.
func WithConfig(cfg *ConfigFile) Option {
	return func(d *Driver) {
		for name, cmd := range cfg.Registry() {
			d.registry[name] = cmd
		}
		if cfg.Sense != nil {
			d.sense = cfg.Sense
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) Option {
	return func(d *Driver) {
		d.baseDir = dir
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// NewDriver creates a new process driver.
func NewDriver(opts ...Option) *Driver {
	d := &Driver{
		registry: make(map[string]CommandConfig),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register adds a trusted command for an operator to the allow-list.
func (d *Driver) Register(operator string, command string, args ...string) {
	d.registry[operator] = CommandConfig{
		Name:    operator,
		Command: command,
		Args:    args,
	}
}

// SetSense registers the command that prints the world state.
func (d *Driver) SetSense(command string, args ...string) {
	d.sense = &CommandConfig{Name: "sense", Command: command, Args: args}
}

// Supports reports whether a command is registered for the operator.
func (d *Driver) Supports(operator string) bool {
	_, ok := d.registry[operator]
	return ok
}

// Execute runs the command registered for task.Name.
// A non-zero exit status fails the step.
func (d *Driver) Execute(ctx context.Context, task domain.Task) error {
	proc, ok := d.registry[task.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, task.Name)
	}

	// Task arguments are passed as environment variables, never as command flags, so a
	// point or door name cannot inject options into the driver.
	env := []string{"WAYPOINT_OPERATOR=" + task.Name, "WAYPOINT_ARGC=" + strconv.Itoa(len(task.Args))}
	for i, arg := range task.Args {
		env = append(env, fmt.Sprintf("WAYPOINT_ARG_%d=%s", i, arg))
	}

	out, err := d.run(ctx, proc, env)
	if err != nil {
		return fmt.Errorf("%s: %w", task, err)
	}
	d.logger.Debug("Driver command done", "task", task.String(), "output", out)
	return nil
}

// Sense runs the sense command and decodes its output.
// The command prints a JSON object: {"robot": "p1", "doors": {...}, "boxes": {...}, "carrying": ""}.
func (d *Driver) Sense(ctx context.Context) (*domain.WorldState, error) {
	if d.sense == nil {
		return nil, errors.New("no sense command configured")
	}
	out, err := d.run(ctx, *d.sense, nil)
	if err != nil {
		return nil, fmt.Errorf("sense: %w", err)
	}

	var report struct {
		Robot    string                       `json:"robot"`
		Doors    map[string]domain.DoorStatus `json:"doors"`
		Boxes    map[string]string            `json:"boxes"`
		Carrying string                       `json:"carrying"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		return nil, fmt.Errorf("sense: invalid report: %w", err)
	}
	if report.Robot == "" {
		return nil, errors.New("sense: report has no robot position")
	}
	for name, st := range report.Doors {
		parsed, ok := domain.ParseDoorStatus(string(st))
		if !ok {
			return nil, fmt.Errorf("sense: door %s has invalid status %q", name, st)
		}
		report.Doors[name] = parsed
	}
	return domain.NewWorldState(report.Robot, report.Doors, report.Boxes, report.Carrying), nil
}

func (d *Driver) run(ctx context.Context, proc CommandConfig, env []string) (string, error) {
	cmd := exec.CommandContext(ctx, proc.Command, proc.Args...)
	cmd.Dir = d.baseDir
	cmd.Env = cmd.Environ()
	for k, v := range proc.Environment {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	cmd.Env = append(cmd.Env, env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("execution failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
