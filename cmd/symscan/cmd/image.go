package cmd

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/symscan/internal/pipeline"
	"github.com/MeKo-Tech/symscan/internal/utils"
)

// imageCmd represents the image command.
var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Scan images for barcodes and matrix codes",
	Long: `Scan one or more image files for optical codes.

Supported formats: JPEG, PNG, BMP

Examples:
  symscan image photo.jpg
  symscan image label.png --family qr --format json
  symscan image shipping.png --family maxicode --policy exhaustive
  symscan image *.png --output results.json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()
		pCfg := cfg.ToPipelineConfig()
		format := cfg.Output.Format
		outputFile := cfg.Output.File
		overlayDir := cfg.Output.OverlayDir

		if !pipeline.IsValidFormat(format) {
			return fmt.Errorf("invalid output format: %s (must be one of: %s)",
				format, strings.Join(pipeline.ValidFormats, ", "))
		}

		pl, err := pipeline.NewBuilder().
			WithFamily(pCfg.Family).
			WithPlan(pCfg.Plan).
			WithPolicy(pCfg.Policy).
			WithTimeout(pCfg.Timeout).
			WithWorkers(pCfg.MaxWorkers).
			WithZBar(pCfg.ZBarEnabled, pCfg.ZBar.Binary).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build scan pipeline: %w", err)
		}

		var outputs []string
		exitNotFound := false
		for _, pth := range args {
			if !utils.IsSupportedImage(pth) {
				return fmt.Errorf("unsupported image format: %s", pth)
			}
			img, meta, err := utils.LoadImage(pth)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", pth, err)
			}

			res, err := pl.Scan(context.Background(), img)
			if err != nil {
				if errors.Is(err, pipeline.ErrNotFound) {
					exitNotFound = true
					outputs = append(outputs, fmt.Sprintf("%s: no symbol found\n", meta.Path))
					continue
				}
				return fmt.Errorf("scan failed for %s: %w", pth, err)
			}

			if overlayDir != "" {
				if err := writeOverlay(cmd, overlayDir, meta.Path, img, res); err != nil {
					return err
				}
			}

			out, err := pipeline.FormatResult(res, format)
			if err != nil {
				return fmt.Errorf("format %s failed: %w", format, err)
			}
			if format == pipeline.FormatText && len(args) > 1 {
				out = meta.Path + ": " + out
			}
			outputs = append(outputs, out)
		}

		final := strings.Join(outputs, "")
		if outputFile != "" {
			if err := os.WriteFile(outputFile, []byte(final), 0o600); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", outputFile); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprint(cmd.OutOrStdout(), final); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if exitNotFound {
			return pipeline.ErrNotFound
		}
		return nil
	},
}

// writeOverlay renders the detected polygon onto the source image and
// saves it under the configured overlay directory.
func writeOverlay(cmd *cobra.Command, dir, srcPath string, img image.Image, res *pipeline.DecodeResult) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}
	ov := pipeline.RenderOverlay(img, res, color.RGBA{G: 255, A: 255})
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	outPath := filepath.Join(dir, base+"_overlay.png")
	if err := utils.SavePNG(ov, outPath); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Saved overlay: %s\n", outPath)
	return err
}

func addImageFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "text", "output format (text, json, yaml, csv)")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().String("family", "", "restrict to one symbol family (qr, aztec, datamatrix, maxicode, pdf417, linear)")
	cmd.Flags().String("policy", "first-hit", "scan policy: first-hit or exhaustive")
	cmd.Flags().StringSlice("plan", nil, "explicit transform plan (comma-separated variant labels)")
	cmd.Flags().Int("timeout", 0, "scan budget per image in milliseconds (0 = none)")
	cmd.Flags().Int("workers", 1, "parallel (variant, engine) attempts per image")
	cmd.Flags().Bool("try-harder", true, "enable the decoder's thorough search mode")
	cmd.Flags().Bool("zbar", true, "enable the external zbarimg engine")
	cmd.Flags().String("zbar-binary", "zbarimg", "path to the zbarimg binary")
	cmd.Flags().String("overlay-dir", "", "directory to write overlay images (drawn polygons)")
}

// bindImageFlags binds all flags to viper configuration keys.
func bindImageFlags(cmd *cobra.Command) {
	flagBindings := []struct {
		key  string
		flag string
	}{
		{"output.format", "format"},
		{"output.file", "output"},
		{"output.overlay_dir", "overlay-dir"},
		{"pipeline.family", "family"},
		{"pipeline.policy", "policy"},
		{"pipeline.plan", "plan"},
		{"pipeline.timeout_ms", "timeout"},
		{"pipeline.workers", "workers"},
		{"pipeline.try_harder", "try-harder"},
		{"pipeline.zbar.enabled", "zbar"},
		{"pipeline.zbar.binary", "zbar-binary"},
	}

	for _, binding := range flagBindings {
		if err := viper.BindPFlag(binding.key, cmd.Flags().Lookup(binding.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", binding.flag, err))
		}
	}
}

func init() {
	rootCmd.AddCommand(imageCmd)

	addImageFlags(imageCmd)
	bindImageFlags(imageCmd)
}

// GetImageCommand returns the image command for testing purposes.
func GetImageCommand() *cobra.Command {
	return imageCmd
}
