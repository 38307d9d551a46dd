package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/waypoint/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the map for consistency",
	Long:  `Checks the map structure and crawls it from the robot's point, reporting unreachable points and boxes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		m := a.engine.Map()
		if err := validator.ValidateMap(m); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		for _, w := range validator.Warnings(m) {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Map is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
