/*
Package runner implements the sense-plan-act cycle of a waypoint robot.

A Runner reads the world once through a ports.Sensor, asks a ports.Planner for a plan and
dispatches the plan to a ports.Executor. The plan is driven as a behaviour-tree sequence
with one leaf per step, so the first failing step stops the mission and the remaining
steps never run.

# Key Components

  - Runner: the sense-plan-act orchestrator, recording results on a domain.Mission.
  - StepInterceptor: middleware consulted before each step (confirmation, deny lists).
  - SanitizeInput / ParseInput: cleaning of task lists typed by users.

# Usage

	r, err := runner.New(engine, sim, sim, navigation.Operators,
		runner.WithLogger(logger),
		runner.WithInterceptor(runner.ConfirmationMiddleware(os.Stdin, os.Stdout)),
	)
	if err != nil {
		log.Fatal(err)
	}

	mission, err := r.Run(ctx, navigation.Transport("box1", "p9"))
*/
package runner
