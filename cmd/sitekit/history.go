package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/sitekit/internal/history"
	"github.com/user/sitekit/internal/models"
	"github.com/user/sitekit/internal/report"
)

var (
	historyFormat string
	historyOutput string
	historyExact  bool

	historyCmd = &cobra.Command{
		Use:   "history FILE",
		Short: "Shows the revision history of a file.",
		Long: `Lists the commits that modified FILE, following renames, with links to
the commits on GitHub, GitLab or Bitbucket when the remote is known.
A relative FILE is taken relative to the repository root, not the working
directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := report.New(historyFormat)
			if err != nil {
				return err
			}

			file := args[0]
			display := filepath.ToSlash(filepath.Clean(file))
			if filepath.IsAbs(file) {
				display = current.relPath(file)
			}

			ext := current.extractor()
			if historyExact {
				ext.Match = history.MatchExact
			}
			ctx := cmd.Context()
			data := &models.FileHistory{
				Path:        display,
				Remote:      current.resolver().Resolve(ctx),
				Commits:     ext.FileHistory(ctx, file),
				GeneratedAt: time.Now(),
			}

			if err := adapter.PrepareData(data); err != nil {
				return fmt.Errorf("failed to prepare %s report: %w", historyFormat, err)
			}
			if historyOutput == "" {
				_, err := adapter.WriteTo(cmd.OutOrStdout())
				return err
			}
			if err := adapter.Write(historyOutput); err != nil {
				return fmt.Errorf("failed to write %s report to %s: %w", historyFormat, historyOutput, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", historyOutput)
			return nil
		},
	}

	remoteCmd = &cobra.Command{
		Use:   "remote",
		Short: "Shows the detected repository remote.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := current.resolver().Resolve(cmd.Context())
			if info == nil {
				return fmt.Errorf("no remote URL found in git config or %v", current.cfg.History.RemoteEnv)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "URL:      %s\n", info.URL)
			fmt.Fprintf(out, "Platform: %s\n", info.Platform)
			if info.BaseURL != "" {
				fmt.Fprintf(out, "Base URL: %s\n", info.BaseURL)
			}
			return nil
		},
	}
)

// relPath returns abs relative to the repository root in slash form, or abs
// itself when it lies outside.
func (a app) relPath(abs string) string {
	rel, err := filepath.Rel(a.cfg.RepoRoot, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return abs
	}
	return filepath.ToSlash(rel)
}

func init() {
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "Report format: text, json or html")
	historyCmd.Flags().StringVarP(&historyOutput, "output-file-path", "o", "", "Write the report to this file instead of stdout")
	historyCmd.Flags().BoolVar(&historyExact, "exact", false, "Only keep commits that list exactly this path")
}
