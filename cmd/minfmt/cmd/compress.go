/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ssargent/minfmt/pkg/pipeline"
)

// compressCmd represents the compress command
var compressCmd = &cobra.Command{
	Use:   "compress <file>...",
	Short: "Encode CSV or text files to MIN",
	Long: `Encode one or more files to MIN. Files ending in .csv are parsed as CSV,
everything else as lines of text. Each input is written to
<name>_deduped.min next to it, or in --output-dir.

Examples:
  minfmt compress data.csv
  minfmt compress --method lz4 --output-dir ./out *.csv notes.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, func(p *pipeline.Processor) batchFunc { return p.CompressFiles })
	},
}

// decompressCmd represents the decompress command
var decompressCmd = &cobra.Command{
	Use:   "decompress <file.min>...",
	Short: "Restore MIN files to CSV or text",
	Long: `Decode one or more MIN files. Each file is written to
<name>_decompressed.csv or <name>_decompressed.txt depending on the
type stored in its header; a _deduped suffix on the input name is dropped.

Examples:
  minfmt decompress data_deduped.min`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args, func(p *pipeline.Processor) batchFunc { return p.DecompressFiles })
	},
}

func init() {
	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(decompressCmd)

	for _, c := range []*cobra.Command{compressCmd, decompressCmd} {
		c.Flags().StringP("output-dir", "o", "", "Directory for output files (default: next to each input)")
		c.Flags().Bool("overwrite", false, "Replace existing output files")
		c.Flags().IntP("workers", "w", 0, "Files processed in parallel (default: from config)")
	}
	compressCmd.Flags().StringP("method", "m", "", "Body compression: zstd, lz4, gzip or none (default: from config)")
}

type batchFunc func(ctx context.Context, paths []string) ([]*pipeline.Result, error)

// runBatch applies per-command flag overrides, runs the batch selected by
// pick and prints one summary line per file.
func runBatch(cmd *cobra.Command, args []string, pick func(*pipeline.Processor) batchFunc) error {
	cfg, err := container.Config()
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		cfg.Output.Dir = dir
	}
	if cmd.Flags().Changed("overwrite") {
		cfg.Output.Overwrite, _ = cmd.Flags().GetBool("overwrite")
	}
	if n, _ := cmd.Flags().GetInt("workers"); n > 0 {
		cfg.Workers = n
	}
	if f := cmd.Flags().Lookup("method"); f != nil && f.Value.String() != "" {
		cfg.Compression.Method = f.Value.String()
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	jobs, err := container.Catalog()
	if err != nil {
		return err
	}
	if jobs != nil {
		defer jobs.Close()
	}
	p, err := container.Processor(jobs)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results, err := pick(p)(ctx, args)
	out := cmd.OutOrStdout()
	for _, r := range results {
		printResult(out, r)
	}
	return err
}

func printResult(w io.Writer, r *pipeline.Result) {
	switch {
	case r == nil:
		return
	case r.Skipped:
		fmt.Fprintf(w, "%s: skipped (%s)\n", r.Source, r.Reason)
	case r.Err != nil:
		fmt.Fprintf(w, "%s: failed: %v\n", r.Source, r.Err)
	case r.Stats != nil:
		s := r.Stats
		fmt.Fprintf(w, "%s -> %s: %d rows, %d duplicates and %d empty removed, %d dictionary entries, %s -> %s (%.1f%% smaller)\n",
			r.Source, r.Output, s.InputRows, s.DuplicateRows, s.EmptyRows, s.DictionaryEntries,
			humanize.Bytes(uint64(r.InputBytes)), humanize.Bytes(uint64(r.OutputBytes)), r.Reduction())
	default:
		fmt.Fprintf(w, "%s -> %s: %d rows, %s\n", r.Source, r.Output, r.Rows, humanize.Bytes(uint64(r.OutputBytes)))
	}
}
