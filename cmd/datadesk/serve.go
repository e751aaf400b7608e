package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/datadesk/internal/cli"
	"github.com/aretw0/datadesk/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Exposes the conversation as a JSON API: post events, upload documents,
follow a user's commands over server-sent events and, with --session-admin,
administer sessions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		admin, _ := cmd.Flags().GetBool("session-admin")

		app, err := buildApp(cmd, func(cfg *config.Config) {
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			if admin {
				cfg.HTTP.SessionAdmin = true
			}
		})
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunServer(ctx, app)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides the configuration)")
	serveCmd.Flags().Bool("session-admin", false, "Expose the /v1/sessions administration routes")
}
