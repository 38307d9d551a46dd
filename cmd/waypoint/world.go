package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/waypoint/internal/presentation/graph"
	"github.com/aretw0/waypoint/internal/presentation/tui"
	"github.com/aretw0/waypoint/pkg/domain"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Print the rooms, doors, boxes and robot",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			data, err := a.engine.Map().Marshal()
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		}

		state, err := worldState(cmd, a)
		if err != nil {
			return err
		}
		if banner, _ := cmd.Flags().GetBool("banner"); banner {
			tui.PrintBanner(out)
		}
		tui.PrintWorld(out, a.engine.Map(), state)
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the map as a Mermaid flowchart",
	Long:  `Outputs a Mermaid diagram (graph LR) with rooms as subgraphs, doors as edges and the robot's point highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		state, err := worldState(cmd, a)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(a.engine.Map(), graph.StateOverlay(state)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mapCmd, graphCmd)
	mapCmd.Flags().Bool("yaml", false, "Print the map definition as YAML")
	mapCmd.Flags().Bool("banner", false, "Print the banner first")
	for _, c := range []*cobra.Command{mapCmd, graphCmd} {
		c.Flags().Bool("sense", false, "Show the robot's sensed state instead of the map's initial state")
	}
}

func worldState(cmd *cobra.Command, a *app) (*domain.WorldState, error) {
	if sense, _ := cmd.Flags().GetBool("sense"); !sense {
		return a.engine.Map().InitialState(), nil
	}
	rb, err := a.robot()
	if err != nil {
		return nil, err
	}
	return rb.Sense(cmd.Context())
}
