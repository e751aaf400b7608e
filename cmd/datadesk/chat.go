package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/datadesk/internal/cli"
	"github.com/aretw0/datadesk/internal/config"
	"github.com/aretw0/datadesk/pkg/adapters/console"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant in the terminal",
	Long: `Runs the conversation on stdin and stdout. Type messages as usual, or:

  :upload <path>    send a .csv or .json file
  :press <n|token>  press the n-th button of the last menu
  :quit             leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		outDir, _ := cmd.Flags().GetString("out")
		debug, _ := cmd.Flags().GetBool("debug")

		app, err := buildApp(cmd, func(cfg *config.Config) {
			// Stderr shares the terminal with the chat.
			cfg.Log.Console = debug
			if debug {
				cfg.Log.Level = "debug"
			}
		})
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunChat(ctx, app, os.Stdin, os.Stdout, cli.ChatOptions{
			UserID:    user,
			OutputDir: outDir,
			Banner:    true,
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("user", "u", console.DefaultUserID, "Session ID used for the conversation")
	chatCmd.Flags().StringP("out", "o", ".", "Directory where exported files are written")
	chatCmd.Flags().Bool("debug", false, "Log to stderr at debug level")
}
