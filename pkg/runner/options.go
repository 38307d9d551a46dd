package runner

import (
	"log/slog"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInterceptor configures the step execution middleware.
func WithInterceptor(interceptor StepInterceptor) Option {
	return func(r *Runner) {
		r.Interceptor = interceptor
	}
}

// WithHooks registers step observers. Successive calls are merged.
func WithHooks(hooks domain.PlannerHooks) Option {
	return func(r *Runner) {
		r.Hooks = r.Hooks.Merge(hooks)
	}
}

// WithRobotID sets the robot label used for missions created by Run.
func WithRobotID(id string) Option {
	return func(r *Runner) {
		r.RobotID = id
	}
}
