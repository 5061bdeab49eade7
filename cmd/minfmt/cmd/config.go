/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/minfmt/pkg/config"
)

// configCmd groups configuration commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the minfmt configuration file",
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration with a generated API key",
	Long: `Create a configuration file with defaults and a freshly generated API
key. An existing file is left untouched unless --force is given.

Examples:
  minfmt config init
  minfmt config init --config ./minfmt.yaml --catalog-dir ./catalog`,
	// Replaces the root hook, which would fail on an invalid existing file.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath(cmd)
		force, _ := cmd.Flags().GetBool("force")
		catalogDir, _ := cmd.Flags().GetString("catalog-dir")

		if config.ConfigExists(path) && !force {
			return fmt.Errorf("configuration already exists at %s (use --force to replace it)", path)
		}
		cfg, err := config.BootstrapConfig(path, catalogDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration created at %s\n", path)
		if printKey, _ := cmd.Flags().GetBool("print-key"); printKey {
			fmt.Fprintf(out, "API Key: %s\n", cfg.Server.APIKey)
		}
		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := container.Config()
		if err != nil {
			return err
		}
		shown := *cfg
		if reveal, _ := cmd.Flags().GetBool("reveal"); !reveal && shown.Server.APIKey != autoAPIKey {
			shown.Server.APIKey = maskKey(shown.Server.APIKey)
		}
		data, err := yaml.Marshal(&shown)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().Bool("force", false, "Replace an existing configuration")
	configInitCmd.Flags().String("catalog-dir", "", "Directory for the job catalog (default: OS-specific location)")
	configInitCmd.Flags().Bool("print-key", false, "Print the generated API key")
	configShowCmd.Flags().Bool("reveal", false, "Show the API key in full")
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
