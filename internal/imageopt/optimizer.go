// Package imageopt re-encodes the image assets of a directory in place.
package imageopt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/user/sitekit/internal/models"
)

// TempSuffix is appended to an image path while its re-encoded copy is written.
const TempSuffix = ".tmp"

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed)
)

// Optimizer processes image files one at a time.
type Optimizer struct {
	Codec  Codec
	Out    io.Writer // progress output; nil discards it
	Logger *slog.Logger
}

// New returns an Optimizer writing progress to out.
func New(codec Codec, out io.Writer, logger *slog.Logger) *Optimizer {
	return &Optimizer{Codec: codec, Out: out, Logger: logger}
}

func (o *Optimizer) out() io.Writer {
	if o.Out == nil {
		return io.Discard
	}
	return o.Out
}

func (o *Optimizer) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// ImageFiles lists the files directly inside dir, symlinks to files
// included, whose extension is a supported image format, in directory order.
func ImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if _, err := FormatFromPath(entry.Name()); err != nil {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		// Stat follows symlinks; dangling links are skipped.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// OptimizeDirectory re-encodes every image in dir. A failing file is logged,
// recorded in the report's Failures and left out of the totals; only a
// failure to list dir is returned as an error.
func (o *Optimizer) OptimizeDirectory(ctx context.Context, dir string) (models.OptimizationReport, error) {
	var report models.OptimizationReport

	files, err := ImageFiles(dir)
	if err != nil {
		return report, err
	}
	if len(files) == 0 {
		fmt.Fprintln(o.out(), "No images found in assets directory.")
		return report, nil
	}
	fmt.Fprintf(o.out(), "Found %d images to optimize\n\n", len(files))
	if c, ok := o.Codec.(interface{ IgnoredSettings() []string }); ok {
		if ignored := c.IgnoredSettings(); len(ignored) > 0 {
			o.logger().Info("encoder does not support some settings, they are not applied",
				"settings", strings.Join(ignored, ", "))
		}
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := o.OptimizeFile(path)
		if err != nil {
			o.logger().Error("failed to optimize image", "file", path, "error", err)
			failColor.Fprintf(o.out(), "Failed to optimize %s: %v\n", path, err)
			report.Failures = append(report.Failures, models.ImageFailure{FilePath: path, Err: err})
			continue
		}
		report.Results = append(report.Results, res)
		report.TotalOriginal += res.OriginalSize
		report.TotalNew += res.NewSize
	}
	report.TotalSavingsPercent = SavingsPercent(report.TotalOriginal, report.TotalNew)
	return report, nil
}

// OptimizeFile re-encodes one image and replaces it. The original is only
// replaced after the new encoding has been written completely.
func (o *Optimizer) OptimizeFile(path string) (models.ImageResult, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return models.ImageResult{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return models.ImageResult{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	fmt.Fprintf(o.out(), "Optimizing: %s\n", path)

	src, err := os.ReadFile(path)
	if err != nil {
		return models.ImageResult{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	encoded, err := o.Codec.Encode(src, format)
	if err != nil {
		return models.ImageResult{}, fmt.Errorf("failed to re-encode %s: %w", path, err)
	}

	tmp := path + TempSuffix
	if err := os.WriteFile(tmp, encoded, info.Mode().Perm()); err != nil {
		os.Remove(tmp)
		return models.ImageResult{}, fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	// rename replaces the destination atomically, so the original is never
	// missing even if the process dies here.
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return models.ImageResult{}, fmt.Errorf("failed to replace %s: %w", path, err)
	}

	newInfo, err := os.Stat(path)
	if err != nil {
		return models.ImageResult{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	res := models.ImageResult{
		FilePath:       path,
		OriginalSize:   info.Size(),
		NewSize:        newInfo.Size(),
		SavingsPercent: SavingsPercent(info.Size(), newInfo.Size()),
	}
	okColor.Fprintf(o.out(), "%s\n", path)
	fmt.Fprintf(o.out(), "   Original: %s\n", kb(res.OriginalSize))
	fmt.Fprintf(o.out(), "   Optimized: %s\n", kb(res.NewSize))
	fmt.Fprintf(o.out(), "   Savings: %.2f%%\n\n", res.SavingsPercent)
	return res, nil
}

// SavingsPercent is the size reduction in percent, rounded to two decimals.
// It is 0 when original is 0.
func SavingsPercent(original, optimized int64) float64 {
	if original == 0 {
		return 0
	}
	pct := float64(original-optimized) / float64(original) * 100
	return math.Round(pct*100) / 100
}

func kb(n int64) string {
	return fmt.Sprintf("%.2f KB", float64(n)/1024)
}
