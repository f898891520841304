package imageopt

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/user/sitekit/internal/models"
)

// PrintSummary writes the end-of-run totals of report to w.
func PrintSummary(w io.Writer, report models.OptimizationReport) {
	saved := report.TotalOriginal - report.TotalNew

	color.New(color.Bold).Fprintln(w, "OPTIMIZATION SUMMARY")
	fmt.Fprintln(w, "========================")
	fmt.Fprintf(w, "Images processed: %d\n", len(report.Results))
	if len(report.Failures) > 0 {
		failColor.Fprintf(w, "Images failed: %d\n", len(report.Failures))
	}
	fmt.Fprintf(w, "Total original size: %s\n", kb(report.TotalOriginal))
	fmt.Fprintf(w, "Total optimized size: %s\n", kb(report.TotalNew))
	fmt.Fprintf(w, "Total savings: %.2f%%\n", report.TotalSavingsPercent)
	if saved >= 0 {
		fmt.Fprintf(w, "Space saved: %s (%s)\n", kb(saved), humanize.IBytes(uint64(saved)))
	} else {
		fmt.Fprintf(w, "Space saved: %s\n", kb(saved))
	}
}

// Run optimizes dir, prints the summary and, when metricsFile is set, writes
// the run's metrics there. A metrics failure is logged, not returned.
func (o *Optimizer) Run(ctx context.Context, dir, metricsFile string) (models.OptimizationReport, error) {
	report, err := o.OptimizeDirectory(ctx, dir)
	if err != nil {
		return report, err
	}
	if len(report.Results)+len(report.Failures) == 0 {
		return report, nil
	}

	fmt.Fprintln(o.out())
	PrintSummary(o.out(), report)
	if metricsFile != "" {
		if err := WriteMetrics(metricsFile, report); err != nil {
			o.logger().Warn("failed to write metrics", "file", metricsFile, "error", err)
		}
	}
	okColor.Fprintln(o.out(), "\nImage optimization complete!")
	return report, nil
}
