package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/datadesk/internal/cli"
	"github.com/aretw0/datadesk/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "datadesk",
	Short: "Datadesk sorts, filters and exports the gas station registry",
	Long: `Datadesk is a conversational assistant for the gas station registry.
Users upload a CSV or JSON export, sort or filter it through menus and get the
result back as a file, over Telegram, HTTP or a local console.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "datadesk.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringSlice("env-file", nil, "Dotenv files to load (default .env)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")
}

// loadConfig reads the configuration selected by the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")

	cfg, err := config.Load(path, envFiles...)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// buildApp loads the configuration, lets tweak adjust it, and wires the app.
func buildApp(cmd *cobra.Command, tweak func(*config.Config)) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if tweak != nil {
		tweak(cfg)
	}
	return cli.Build(cfg)
}
