package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	jsonOutput bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "mediarr",
	Short: "CLI for the mediarr media library scanner",
	Long: `mediarr - CLI for the mediarr media library scanner

Local commands (parse, catalog, migrate, init) work without a daemon.
The remaining commands talk to a running 'mediarrd'.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8585", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file for local commands (default: discovered)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("mediarr {{.Version}}\n")
}
