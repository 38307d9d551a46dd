package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/runner"
)

var planCmd = &cobra.Command{
	Use:   "plan TASK...",
	Short: "Find a plan without executing it",
	Long: `Decomposes the given tasks from the map's initial state (or the robot's sensed state
with --sense) and prints the primitive steps. Exits with code 2 when no plan exists.

  waypoint plan "transport box1 p9" "navigate_to(p1)"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().Bool("json", false, "Print the plan as JSON")
	planCmd.Flags().Bool("graph", false, "Print a Mermaid map with the planned route highlighted")
	planCmd.Flags().Bool("sense", false, "Plan from the robot's sensed state instead of the map's initial state")
}

func parseTasks(args []string) ([]domain.Task, error) {
	return runner.ParseInput(strings.Join(args, "\n"))
}

func runPlan(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	tasks, err := parseTasks(args)
	if err != nil {
		return err
	}

	state := a.engine.Map().InitialState()
	if sense, _ := cmd.Flags().GetBool("sense"); sense {
		rb, err := a.robot()
		if err != nil {
			return err
		}
		if state, err = rb.Sense(cmd.Context()); err != nil {
			return fmt.Errorf("sense: %w", err)
		}
	}

	plan, err := a.engine.Plan(cmd.Context(), state, tasks...)
	if errors.Is(err, domain.ErrNoPlan) {
		return &exitError{code: 2, err: err}
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	asJSON, _ := cmd.Flags().GetBool("json")
	withGraph, _ := cmd.Flags().GetBool("graph")
	switch {
	case asJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if plan == nil {
			plan = domain.Plan{}
		}
		return enc.Encode(map[string]any{"tasks": tasks, "plan": plan})
	case withGraph:
		fmt.Fprint(out, graph.GenerateMermaid(a.engine.Map(), graph.PlanOverlay(state, plan)))
		return nil
	}

	rendered, err := tui.NewRenderer(out)(tui.PlanMarkdown(tasks, plan))
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)
	return nil
}
