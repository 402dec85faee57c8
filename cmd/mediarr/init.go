package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/mediarr/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an example config file",
	Long: `Write the example configuration. Without --path it goes to
$XDG_CONFIG_HOME/mediarr/config.toml.`,
	Args: cobra.NoArgs,
	RunE: runInitCmd,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("path", "", "Where to write the config")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config")
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("path")
	force, _ := cmd.Flags().GetBool("force")
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nEdit the [[libraries]] entries, then run 'mediarrd -config %s'.\n", path, path)
	return nil
}
