package imageopt

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/user/sitekit/internal/models"
)

// WriteMetrics writes the report as a Prometheus textfile, for the
// node_exporter textfile collector.
func WriteMetrics(path string, report models.OptimizationReport) error {
	reg := prometheus.NewRegistry()

	processed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sitekit_images_processed",
		Help: "Images re-encoded by the last optimizer run.",
	})
	failed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sitekit_images_failed",
		Help: "Images the last optimizer run could not process.",
	})
	bytesTotal := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sitekit_image_bytes",
		Help: "Total size of processed images in bytes.",
	}, []string{"stage"})
	savings := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sitekit_image_savings_percent",
		Help: "Overall size reduction of the last optimizer run.",
	})
	reg.MustRegister(processed, failed, bytesTotal, savings)

	processed.Set(float64(len(report.Results)))
	failed.Set(float64(len(report.Failures)))
	bytesTotal.WithLabelValues("original").Set(float64(report.TotalOriginal))
	bytesTotal.WithLabelValues("optimized").Set(float64(report.TotalNew))
	savings.Set(report.TotalSavingsPercent)

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
