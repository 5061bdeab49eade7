/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <file.min>",
	Short: "Show the header, dictionary and row counts of a MIN file",
	Long: `Decode a MIN file and print a JSON summary of its layout: version,
file type, body compression, section sizes, dictionary entries and how
many fields are dictionary references.

Examples:
  minfmt inspect data_deduped.min`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		dc, err := container.Codec()
		if err != nil {
			return err
		}
		summary, err := dc.Inspect(data)
		if err != nil {
			return fmt.Errorf("failed to inspect %s: %w", args[0], err)
		}

		if noDict, _ := cmd.Flags().GetBool("no-dictionary"); noDict {
			summary.Dictionary = nil
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Bool("no-dictionary", false, "Omit dictionary entries from the output")
}
