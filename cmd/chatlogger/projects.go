package main

import (
	"github.com/spf13/cobra"

	"github.com/comigor/chatlogger-go/internal/aggregate"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Print the aggregated dashboard data as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		dash, err := aggregate.New(a.store, a.aiModel()).Aggregate(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), dash)
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}
