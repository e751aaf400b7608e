package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/datadesk/internal/cli"
	"github.com/aretw0/datadesk/internal/config"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored sessions",
	Long:  `List, inspect, and remove the sessions held by the configured store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd, quiet)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.ListSessions(cmd.Context(), app, cmd.OutOrStdout())
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <user-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asGraph, _ := cmd.Flags().GetBool("graph")

		app, err := buildApp(cmd, quiet)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.InspectSession(cmd.Context(), app, cmd.OutOrStdout(), args[0], asGraph)
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <user-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd, quiet)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.RemoveSessions(cmd.Context(), app, cmd.OutOrStdout(), args)
	},
}

// quiet keeps administrative output free of console logs.
func quiet(cfg *config.Config) {
	cfg.Log.Console = false
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
	sessionInspectCmd.Flags().Bool("graph", false, "Print the menu history as a Mermaid diagram")
}
