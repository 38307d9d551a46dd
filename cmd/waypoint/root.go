package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "Waypoint plans and runs robot missions with an HTN planner",
	Long: `Waypoint decomposes tasks such as "transport box1 p9" into primitive robot steps
over a map of rooms, doors and boxes, and executes them on a simulated or external robot.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./waypoint.yaml when present)")
	rootCmd.PersistentFlags().String("map", "", "Map file (YAML); overrides the config")
	rootCmd.PersistentFlags().CountP("verbose", "v", "Planner trace level (-v plans, -vv operators, -vvv expansions)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
