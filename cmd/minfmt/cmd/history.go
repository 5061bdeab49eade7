/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/minfmt/pkg/catalog"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded conversions",
	Long: `List conversions recorded in the job catalog, newest first.

Examples:
  minfmt history
  minfmt history --limit 5 --format json
  minfmt history --delete 2Z8qJ0pB3fXgYbQyVx9nW1c4sKd`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")

		jobs, err := container.Catalog()
		if err != nil {
			return err
		}
		if jobs == nil {
			return fmt.Errorf("job catalog is disabled in the configuration")
		}
		defer jobs.Close()

		if del, _ := cmd.Flags().GetString("delete"); del != "" {
			id, err := ksuid.Parse(del)
			if err != nil {
				return fmt.Errorf("invalid job id %q: %w", del, err)
			}
			if _, err := jobs.Get(id); err != nil {
				return fmt.Errorf("job %s: %w", id, err)
			}
			if err := jobs.Delete(id); err != nil {
				return fmt.Errorf("failed to delete job %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %s\n", id)
			return nil
		}

		list, err := jobs.List(limit)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}

		out := cmd.OutOrStdout()
		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		case "table":
			return outputJobsTable(out, list)
		default:
			return fmt.Errorf("unknown format %q", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of jobs to show (0 for all)")
	historyCmd.Flags().StringP("format", "f", "table", "Output format: table or json")
	historyCmd.Flags().String("delete", "", "Remove the job with this id instead of listing")
}

// outputJobsTable displays jobs in table format
func outputJobsTable(out io.Writer, jobs []*catalog.Job) error {
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No jobs recorded")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tOPERATION\tSOURCE\tROWS\tDUPLICATES\tSIZE\tSTATUS")
	for _, j := range jobs {
		status := "ok"
		if j.Error != "" {
			status = "error: " + j.Error
			if len(status) > 50 {
				status = status[:47] + "..."
			}
		}
		size := fmt.Sprintf("%s -> %s", humanize.Bytes(uint64(j.InputBytes)), humanize.Bytes(uint64(j.OutputBytes)))
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			j.ID, j.CreatedAt.Local().Format(time.DateTime), j.Operation, j.Source,
			j.OutputRows, j.DuplicateRows, size, status)
	}
	return w.Flush()
}
