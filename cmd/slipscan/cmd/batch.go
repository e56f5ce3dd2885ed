package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slipscan/slipscan/internal/batch"
	"github.com/slipscan/slipscan/internal/pipeline"
	"github.com/slipscan/slipscan/internal/recognize"
)

// batchCmd represents the batch command.
var batchCmd = &cobra.Command{
	Use:   "batch [paths...]",
	Short: "Scan many receipt images concurrently",
	Long: `Scan every receipt image under the given files and directories.

Examples:
  slipscan batch ./receipts
  slipscan batch ./receipts --recursive --workers 8
  slipscan batch ./receipts --output-dir ./records --format yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		bCfg := batch.DefaultConfig()
		bCfg.Workers = cfg.Batch.Workers
		bCfg.ContinueOnError = cfg.Batch.ContinueOnError
		bCfg.OutputDir = cfg.Batch.OutputDir
		bCfg.Format = cfg.Output.Format
		bCfg.OutputFile = cfg.Output.File

		if cmd.Flags().Changed("workers") {
			bCfg.Workers, _ = cmd.Flags().GetInt("workers")
		}
		if cmd.Flags().Changed("continue-on-error") {
			bCfg.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
		}
		if cmd.Flags().Changed("output-dir") {
			bCfg.OutputDir, _ = cmd.Flags().GetString("output-dir")
		}
		if cmd.Flags().Changed("format") {
			bCfg.Format, _ = cmd.Flags().GetString("format")
		}
		if cmd.Flags().Changed("output") {
			bCfg.OutputFile, _ = cmd.Flags().GetString("output")
		}
		bCfg.Recursive, _ = cmd.Flags().GetBool("recursive")
		bCfg.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
		bCfg.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
		bCfg.Quiet, _ = cmd.Flags().GetBool("quiet")
		showStats, _ := cmd.Flags().GetBool("stats")

		rec := recognize.NewTesseract(recognize.Config{
			Language:    cfg.Pipeline.Recognizer.Language,
			PageSegMode: cfg.Pipeline.Recognizer.PageSegMode,
		})
		pl, err := pipeline.NewBuilder().
			WithNormalizeOptions(cfg.Pipeline.Normalize).
			WithExtractConfig(cfg.Pipeline.Extract).
			WithRecognizer(rec).
			Build()
		if err != nil {
			return fmt.Errorf("building pipeline: %w", err)
		}

		proc := batch.NewProcessor(pl, bCfg)
		if !bCfg.Quiet {
			proc = proc.WithProgress(func(done, total int, path string, err error) {
				if err != nil {
					fmt.Fprintf(os.Stderr, "[%d/%d] %s: %v\n", done, total, path, err)
					return
				}
				fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, total, path)
			})
		}

		res, err := proc.Process(context.Background(), args)
		if err != nil {
			return err
		}

		if bCfg.OutputDir != "" {
			if err := res.SavePerFile(bCfg.OutputDir); err != nil {
				return err
			}
			if !bCfg.Quiet {
				fmt.Fprintf(os.Stdout, "Results written to %s\n", bCfg.OutputDir)
			}
		} else {
			if err := res.SaveResults(bCfg.Format, bCfg.OutputFile, bCfg.Quiet); err != nil {
				return err
			}
		}

		if showStats {
			res.PrintStats(bCfg.Quiet)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntP("workers", "w", 4, "number of concurrent workers")
	batchCmd.Flags().Bool("continue-on-error", true, "keep processing after per-file failures")
	batchCmd.Flags().BoolP("recursive", "r", false, "recurse into subdirectories")
	batchCmd.Flags().StringSlice("include", nil, "glob patterns of files to include")
	batchCmd.Flags().StringSlice("exclude", nil, "glob patterns of files to exclude")
	batchCmd.Flags().StringP("format", "f", "json", "output format (json, yaml, text)")
	batchCmd.Flags().StringP("output", "o", "", "combined output file (default stdout)")
	batchCmd.Flags().String("output-dir", "", "write one JSON file per receipt into this directory")
	batchCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")
	batchCmd.Flags().Bool("stats", false, "print processing statistics")
}
