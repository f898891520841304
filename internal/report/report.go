// Package report renders the revision history of a file as JSON, HTML or
// terminal text.
package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/sitekit/internal/chart"
	"github.com/user/sitekit/internal/history"
	"github.com/user/sitekit/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ReportAdapter defines the interface for generating different report formats.
type ReportAdapter interface {
	PrepareData(data *models.FileHistory) error
	Write(outputFilePath string) error
	io.WriterTo
}

// New returns the adapter for format: "json", "html" or "text".
func New(format string) (ReportAdapter, error) {
	switch format {
	case "json":
		return &JSONReportAdapter{}, nil
	case "html":
		return &HTMLReportAdapter{}, nil
	case "text":
		return &TextReportAdapter{}, nil
	default:
		return nil, fmt.Errorf("invalid report format %q, must be one of text, json, html", format)
	}
}

// commitView is a commit decorated for display.
type commitView struct {
	models.CommitRecord
	URL      string `json:"url,omitempty"`
	Relative string `json:"-"`
}

// commitViews resolves permalinks and relative ages. Ages are measured from
// the history's generation time so a report renders the same when rewritten.
func commitViews(data *models.FileHistory) []commitView {
	now := data.GeneratedAt
	if now.IsZero() {
		now = time.Now()
	}
	views := make([]commitView, len(data.Commits))
	for i, c := range data.Commits {
		url, _ := history.CommitURL(data.Remote, c.FullHash)
		views[i] = commitView{
			CommitRecord: c,
			URL:          url,
			Relative:     history.FormatRelativeTime(c.Timestamp, now),
		}
	}
	return views
}

// messageBody returns the message without its summary line.
func messageBody(msg string) string {
	_, body, _ := strings.Cut(msg, "\n")
	return strings.TrimSpace(body)
}

func writeFile(outputFilePath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(outputFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for report file %s: %w", outputFilePath, err)
	}
	return os.WriteFile(outputFilePath, data, 0644)
}

// --- JSON Report Adapter ---

// JSONReportAdapter generates reports in JSON format.
type JSONReportAdapter struct {
	reportData []byte
}

// PrepareData marshals the history, with commit permalinks, into indented JSON.
func (a *JSONReportAdapter) PrepareData(data *models.FileHistory) error {
	payload := struct {
		Path        string             `json:"path"`
		Remote      *models.RemoteInfo `json:"remote,omitempty"`
		GeneratedAt time.Time          `json:"generated_at"`
		Commits     []commitView       `json:"commits"`
	}{
		Path:        data.Path,
		Remote:      data.Remote,
		GeneratedAt: data.GeneratedAt,
		Commits:     commitViews(data),
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history to JSON: %w", err)
	}
	a.reportData = append(out, '\n')
	return nil
}

// WriteTo writes the JSON report to w.
func (a *JSONReportAdapter) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.reportData)
	return int64(n), err
}

// Write saves the JSON report data to the specified output file.
func (a *JSONReportAdapter) Write(outputFilePath string) error {
	return writeFile(outputFilePath, a.reportData)
}

// --- HTML Report Adapter ---

var funcMap = template.FuncMap{
	"body": messageBody,
	"isoDate": func(t time.Time) string {
		return t.Format(time.RFC3339)
	},
	"formatDateTime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04:05 MST")
	},
}

var historyTemplate = template.Must(
	template.New("history.html.tmpl").Funcs(funcMap).ParseFS(templateFS, "templates/history.html.tmpl"))

// HTMLReportAdapter renders the revision history block as a standalone page.
type HTMLReportAdapter struct {
	// Logger receives chart failures. Defaults to slog.Default().
	Logger    *slog.Logger
	reportBuf bytes.Buffer
}

// PrepareData renders the page. The activity chart is included when the
// file has more than one commit; a chart failure only drops the chart.
func (a *HTMLReportAdapter) PrepareData(data *models.FileHistory) error {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var chartURL template.URL
	if len(data.Commits) > 1 {
		img, err := chart.GenerateCommitActivityChart(data.Commits, "Commit activity")
		if err != nil {
			logger.Warn("Failed to generate activity chart", "path", data.Path, "error", err)
		} else {
			chartURL = template.URL("data:image/png;base64," + img)
		}
	}

	templateData := struct {
		Path        string
		GeneratedAt time.Time
		Commits     []commitView
		Chart       template.URL
	}{
		Path:        data.Path,
		GeneratedAt: data.GeneratedAt,
		Commits:     commitViews(data),
		Chart:       chartURL,
	}

	a.reportBuf.Reset()
	if err := historyTemplate.Execute(&a.reportBuf, templateData); err != nil {
		return fmt.Errorf("failed to execute HTML template: %w", err)
	}
	return nil
}

// WriteTo writes the rendered page to w.
func (a *HTMLReportAdapter) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.reportBuf.Bytes())
	return int64(n), err
}

// Write saves the HTML report data to the specified output file.
func (a *HTMLReportAdapter) Write(outputFilePath string) error {
	return writeFile(outputFilePath, a.reportBuf.Bytes())
}

// --- Text Report Adapter ---

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	hashStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	summaryStyle = lipgloss.NewStyle().Bold(true)
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	bodyStyle    = lipgloss.NewStyle().PaddingLeft(4)
)

// TextReportAdapter renders the history for a terminal.
type TextReportAdapter struct {
	report string
}

// PrepareData renders the commits with their links, authors and ages.
func (a *TextReportAdapter) PrepareData(data *models.FileHistory) error {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Revision history: "+data.Path) + "\n\n")

	views := commitViews(data)
	if len(views) == 0 {
		sb.WriteString("No revisions recorded for this file.\n")
	}
	for _, c := range views {
		fmt.Fprintf(&sb, "%s %s\n", hashStyle.Render(c.ShortHash), summaryStyle.Render(c.Summary))
		fmt.Fprintf(&sb, "    %s\n", metaStyle.Render(fmt.Sprintf("%s <%s>, %s", c.AuthorName, c.AuthorEmail, c.Relative)))
		if c.URL != "" {
			fmt.Fprintf(&sb, "    %s\n", metaStyle.Render(c.URL))
		}
		if body := messageBody(c.Message); body != "" {
			sb.WriteString(bodyStyle.Render(body) + "\n")
		}
		sb.WriteString("\n")
	}
	a.report = sb.String()
	return nil
}

// WriteTo writes the rendered text to w.
func (a *TextReportAdapter) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, a.report)
	return int64(n), err
}

// Write saves the rendered text to the specified output file.
func (a *TextReportAdapter) Write(outputFilePath string) error {
	return writeFile(outputFilePath, []byte(a.report))
}
