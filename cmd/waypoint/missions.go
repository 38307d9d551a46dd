package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var missionsCmd = &cobra.Command{
	Use:   "missions",
	Short: "List recorded missions",
	Long:  `Lists the missions recorded in the configured store. Only a redis store outlives a single command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		sessions, closeStore, err := a.sessions(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		robotID, _ := cmd.Flags().GetString("robot")
		missions, err := sessions.History(cmd.Context(), robotID)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tROBOT\tOUTCOME\tSTEPS\tSTARTED")
		for _, m := range missions {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\n", m.ID, m.RobotID, m.Outcome, m.Executed, len(m.Plan), m.StartedAt.Format("2006-01-02 15:04:05"))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(missionsCmd)
	missionsCmd.Flags().String("robot", "", "Only list missions of this robot")
}
