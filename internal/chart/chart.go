// Package chart renders commit activity charts for the history reports.
package chart

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/color"
	"sort"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/user/sitekit/internal/models"
)

// ErrNoData is returned when there are no commits to plot.
var ErrNoData = errors.New("no commit data to plot")

// Size of the rendered image.
var (
	Width  = 6 * vg.Inch
	Height = 3 * vg.Inch
)

func encodePNG(p *plot.Plot) (string, error) {
	writer, err := p.WriterTo(Width, Height, "png")
	if err != nil {
		return "", fmt.Errorf("failed to create plot writer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// CommitsPerDay counts commits by calendar day of their author timestamp.
// Points are sorted by date; X is the day's Unix time at UTC midnight.
func CommitsPerDay(commits []models.CommitRecord) plotter.XYs {
	counts := make(map[time.Time]int)
	for _, c := range commits {
		y, m, d := c.Timestamp.Date()
		counts[time.Date(y, m, d, 0, 0, 0, 0, time.UTC)]++
	}

	pts := make(plotter.XYs, 0, len(counts))
	for day, n := range counts {
		pts = append(pts, plotter.XY{X: float64(day.Unix()), Y: float64(n)})
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	return pts
}

// GenerateCommitActivityChart draws commits per day as a line chart and
// returns it as a base64 encoded PNG.
func GenerateCommitActivityChart(commits []models.CommitRecord, title string) (string, error) {
	pts := CommitsPerDay(commits)
	if len(pts) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoData, title)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Commits"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return "", fmt.Errorf("failed to create line for %s: %w", title, err)
	}
	line.Color = color.RGBA{B: 255, A: 255}
	points.GlyphStyle.Radius = vg.Points(2)
	points.GlyphStyle.Color = line.Color
	p.Add(line, points)

	return encodePNG(p)
}
