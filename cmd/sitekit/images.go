package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/user/sitekit/internal/imageopt"
)

var imagesCmd = &cobra.Command{
	Use:   "images [DIR]",
	Short: "Re-encodes the images of a directory in place.",
	Long: `Optimizes the JPEG, PNG and WebP files directly inside DIR (default: the
configured assets directory) and prints the space saved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := current.cfg.Resolve(current.cfg.Images.Dir)
		if len(args) == 1 {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("error getting absolute path for '%s': %w", args[0], err)
			}
			dir = abs
		}

		codec := imageopt.NewStdCodec(current.cfg.Images.CodecSettings())
		opt := imageopt.New(codec, cmd.OutOrStdout(), current.logger)
		metricsFile := ""
		if current.cfg.Images.MetricsFile != "" {
			metricsFile = current.cfg.Resolve(current.cfg.Images.MetricsFile)
		}
		_, err := opt.Run(cmd.Context(), dir, metricsFile)
		return err
	},
}
