package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/datadesk/internal/cli"
	"github.com/aretw0/datadesk/internal/config"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Run the Telegram bot",
	Long:  `Long-polls the Telegram Bot API and answers every user from the shared session store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		workers, _ := cmd.Flags().GetInt("workers")

		app, err := buildApp(cmd, func(cfg *config.Config) {
			if workers > 0 {
				cfg.Telegram.Workers = workers
			}
		})
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunTelegram(ctx, app)
	},
}

func init() {
	rootCmd.AddCommand(telegramCmd)
	telegramCmd.Flags().IntP("workers", "w", 0, "Updates handled concurrently (overrides the configuration)")
}
