package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/runner"
)

var runCmd = &cobra.Command{
	Use:   "run TASK...",
	Short: "Sense, plan and execute a mission",
	Long: `Reads the world from the robot, plans the tasks and executes the plan step by step.
The robot is the bundled simulator unless a process driver is configured.
Exits with code 2 when no plan exists and 1 when a step fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMission,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("confirm", false, "Ask before every step")
	runCmd.Flags().StringSlice("deny", nil, "Operators the robot must not execute")
	runCmd.Flags().String("robot", "", "Robot ID to record the mission under (default: the map's robot)")
}

func runMission(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	tasks, err := parseTasks(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rb, err := a.robot()
	if err != nil {
		return err
	}

	var interceptors []runner.StepInterceptor
	if deny, _ := cmd.Flags().GetStringSlice("deny"); len(deny) > 0 {
		interceptors = append(interceptors, runner.DenyOperators(deny...))
	}
	if confirm, _ := cmd.Flags().GetBool("confirm"); confirm {
		interceptors = append(interceptors, runner.ConfirmationMiddleware(cmd.InOrStdin(), cmd.ErrOrStderr()))
	}
	rn, err := a.engine.Runner(rb, rb, runner.WithInterceptor(runner.MultiInterceptor(interceptors...)))
	if err != nil {
		return err
	}

	sessions, closeStore, err := a.sessions(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	robotID, _ := cmd.Flags().GetString("robot")
	if robotID == "" {
		robotID = a.engine.Map().Robot.ID
	}
	mission, runErr := sessions.Run(ctx, robotID, tasks, rn.Execute)
	a.metrics.ObserveMission(mission)

	out := cmd.OutOrStdout()
	rendered, err := tui.NewRenderer(out)(tui.MissionMarkdown(mission))
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)
	fmt.Fprintf(out, "\nOutcome: %s\n", tui.Outcome(out, string(mission.Outcome)))

	return missionExit(ctx, mission, runErr)
}

func missionExit(ctx context.Context, m *domain.Mission, err error) error {
	switch {
	case m.Outcome == domain.OutcomeNoPlan:
		return &exitError{code: 2, err: err}
	case err != nil && ctx.Err() != nil:
		return &exitError{code: 130, err: err}
	case err != nil:
		return err
	}
	return nil
}
