package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/rearrange"
)

var rearrangeCmd = &cobra.Command{
	Use:   "rearrange",
	Short: "Give every room a box that satisfies a constraint",
	Long: `Searches an assignment of one box per room under a constraint expression over
'room' and 'box' (fields: name, color, point), then plans or runs the deliveries.

  waypoint rearrange --constraint 'box.color != room.color' --execute`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		constraint := a.cfg.Rearrange.Constraint
		if cmd.Flags().Changed("constraint") {
			constraint, _ = cmd.Flags().GetString("constraint")
		}
		solver, err := rearrange.New(constraint, rearrange.WithLogger(a.logger))
		if err != nil {
			return err
		}
		assignment, err := solver.Solve(a.engine.Map())
		if err != nil {
			return &exitError{code: 2, err: err}
		}

		out := cmd.OutOrStdout()
		for _, p := range assignment {
			fmt.Fprintf(out, "%-10s <- %-10s (drop at %s)\n", p.Room, p.Box, p.Drop)
		}
		fmt.Fprintln(out)

		tasks := assignment.Tasks()
		if execute, _ := cmd.Flags().GetBool("execute"); !execute {
			plan, err := a.engine.Plan(cmd.Context(), nil, tasks...)
			if err != nil {
				return &exitError{code: 2, err: err}
			}
			rendered, err := tui.NewRenderer(out)(tui.PlanMarkdown(tasks, plan))
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		rb, err := a.robot()
		if err != nil {
			return err
		}
		rn, err := a.engine.Runner(rb, rb)
		if err != nil {
			return err
		}
		sessions, closeStore, err := a.sessions(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		mission, runErr := sessions.Run(ctx, a.engine.Map().Robot.ID, tasks, rn.Execute)
		a.metrics.ObserveMission(mission)
		rendered, err := tui.NewRenderer(out)(tui.MissionMarkdown(mission))
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
		return missionExit(ctx, mission, runErr)
	},
}

func init() {
	rootCmd.AddCommand(rearrangeCmd)
	rearrangeCmd.Flags().String("constraint", rearrange.DefaultConstraint, "Constraint expression over room and box")
	rearrangeCmd.Flags().Bool("execute", false, "Run the deliveries on the robot")
}
