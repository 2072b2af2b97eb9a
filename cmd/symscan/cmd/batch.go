package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/symscan/internal/batch"
	"github.com/MeKo-Tech/symscan/internal/config"
)

// batchCmd represents the batch command for parallel image scanning.
var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Scan multiple images in parallel",
	Long: `Scan multiple image files or directories in parallel. Files that
decode, files without symbols and files that error are reported
separately; one bad file never aborts the batch.

Supported formats: JPEG, PNG, BMP

Examples:
  symscan batch *.jpg *.png
  symscan batch scans/ --recursive --batch-workers 8
  symscan batch scans/ --family linear --format csv --output results.csv
  symscan batch scans/ --include "label_*.png"`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runBatchCommand,
}

// configToBatchConfig maps centralized configuration to batch.Config.
// CLI flags override config file values through Viper's precedence
// system.
func configToBatchConfig(cfg *config.Config, cmd *cobra.Command) *batch.Config {
	batchConfig := batch.DefaultConfig()
	batchConfig.Pipeline = cfg.ToPipelineConfig()

	batchConfig.Format = cfg.Output.Format
	if cmd.Flags().Changed("format") {
		batchConfig.Format, _ = cmd.Flags().GetString("format")
	}

	batchConfig.OutputFile = cfg.Output.File
	if cmd.Flags().Changed("output") {
		batchConfig.OutputFile, _ = cmd.Flags().GetString("output")
	}

	batchConfig.OverlayDir = cfg.Output.OverlayDir
	if cmd.Flags().Changed("overlay-dir") {
		batchConfig.OverlayDir, _ = cmd.Flags().GetString("overlay-dir")
	}

	batchConfig.Workers = cfg.Batch.Workers
	if cmd.Flags().Changed("batch-workers") {
		batchConfig.Workers, _ = cmd.Flags().GetInt("batch-workers")
	}

	batchConfig.Recursive = cfg.Batch.Recursive
	if cmd.Flags().Changed("recursive") {
		batchConfig.Recursive, _ = cmd.Flags().GetBool("recursive")
	}

	batchConfig.IncludePatterns = cfg.Batch.IncludePatterns
	if cmd.Flags().Changed("include") {
		batchConfig.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	}

	batchConfig.ExcludePatterns = cfg.Batch.ExcludePatterns
	if cmd.Flags().Changed("exclude") {
		batchConfig.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")
	}

	batchConfig.Quiet, _ = cmd.Flags().GetBool("quiet")

	return batchConfig
}

func runBatchCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	batchConfig := configToBatchConfig(cfg, cmd)

	res, err := batch.ProcessBatch(context.Background(), args, batchConfig)
	if err != nil {
		return fmt.Errorf("batch scan failed: %w", err)
	}

	if err := writeBatchOutput(cmd, res, batchConfig); err != nil {
		return err
	}

	if res.Errored > 0 {
		return fmt.Errorf("%d file(s) failed to scan", res.Errored)
	}
	return nil
}

func writeBatchOutput(cmd *cobra.Command, res *batch.Result, batchConfig *batch.Config) error {
	out, err := batch.FormatResult(res, batchConfig.Format)
	if err != nil {
		return err
	}
	if batchConfig.OutputFile != "" {
		if err := os.WriteFile(batchConfig.OutputFile, []byte(out), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !batchConfig.Quiet {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", batchConfig.OutputFile)
		}
		return nil
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("format", "f", "text", "output format (text, json, yaml, csv)")
	batchCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	batchCmd.Flags().String("overlay-dir", "", "directory to write overlay images (drawn polygons)")
	batchCmd.Flags().Int("batch-workers", 0, "parallel files in flight (default: CPU count)")
	batchCmd.Flags().BoolP("recursive", "r", false, "recurse into directories")
	batchCmd.Flags().StringSlice("include", nil, "glob patterns of base names to include")
	batchCmd.Flags().StringSlice("exclude", nil, "glob patterns of base names to exclude")
	batchCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")
}

// GetBatchCommand returns the batch command for testing purposes.
func GetBatchCommand() *cobra.Command {
	return batchCmd
}
