// Command optimize-images re-encodes the blog's image assets in place.
//
// It takes no flags: the assets directory and encoder settings come from
// sitekit.toml in the working directory, or the defaults when it is absent.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/user/sitekit/internal/config"
	"github.com/user/sitekit/internal/imageopt"
)

func run(ctx context.Context, configPath string, out io.Writer, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	dir := cfg.Resolve(cfg.Images.Dir)
	metricsFile := ""
	if cfg.Images.MetricsFile != "" {
		metricsFile = cfg.Resolve(cfg.Images.MetricsFile)
	}

	fmt.Fprintf(out, "Optimizing images in %s\n", dir)
	opt := imageopt.New(imageopt.NewStdCodec(cfg.Images.CodecSettings()), out, logger)
	_, err = opt.Run(ctx, dir, metricsFile)
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(ctx, config.DefaultPath, os.Stdout, logger); err != nil {
		logger.Error("Image optimization failed", "error", err)
		color.New(color.FgRed).Fprintf(os.Stderr, "Error during optimization: %v\n", err)
		stop()
		os.Exit(1)
	}
}
