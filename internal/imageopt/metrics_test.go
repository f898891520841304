package imageopt

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/sitekit/internal/models"
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, nil))
}

func TestWriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitekit.prom")
	report := models.OptimizationReport{
		Results: []models.ImageResult{
			{FilePath: "a.jpg", OriginalSize: 1000, NewSize: 800, SavingsPercent: 20},
		},
		Failures:            []models.ImageFailure{{FilePath: "b.png", Err: errors.New("boom")}},
		TotalOriginal:       1000,
		TotalNew:            800,
		TotalSavingsPercent: 20,
	}

	require.NoError(t, WriteMetrics(path, report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "sitekit_images_processed 1")
	assert.Contains(t, text, "sitekit_images_failed 1")
	assert.Contains(t, text, `sitekit_image_bytes{stage="original"} 1000`)
	assert.Contains(t, text, `sitekit_image_bytes{stage="optimized"} 800`)
	assert.Contains(t, text, "sitekit_image_savings_percent 20")
}

func TestWriteMetricsBadPath(t *testing.T) {
	err := WriteMetrics(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"), models.OptimizationReport{})
	assert.Error(t, err)
}

func TestRunWritesSummaryAndMetrics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.png", 1024)
	writeFile(t, dir, "b.jpg", 1024)
	metricsFile := filepath.Join(t.TempDir(), "sitekit.prom")

	var out, logs bytes.Buffer
	o := New(&fakeCodec{ratio: 0.5}, &out, newLogger(&logs))
	report, err := o.Run(context.Background(), dir, metricsFile)
	require.NoError(t, err)
	assert.Len(t, report.Results, 2)
	assert.Contains(t, out.String(), "OPTIMIZATION SUMMARY")
	assert.Contains(t, out.String(), "Image optimization complete!")

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sitekit_images_processed 2")
}

func TestRunEmptyDirectory(t *testing.T) {
	var out bytes.Buffer
	report, err := New(&fakeCodec{ratio: 0.5}, &out, nil).Run(context.Background(), t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.NotContains(t, out.String(), "OPTIMIZATION SUMMARY")
}

func TestRunMetricsFailureIsLogged(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.png", 100)

	var logs bytes.Buffer
	_, err := New(&fakeCodec{ratio: 0.5}, nil, newLogger(&logs)).
		Run(context.Background(), dir, filepath.Join(dir, "missing", "x.prom"))
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "failed to write metrics")
}
