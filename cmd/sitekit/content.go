package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/user/sitekit/internal/content"
	"github.com/user/sitekit/internal/models"
	"github.com/user/sitekit/internal/report"
)

var (
	pagesDir string

	contentCmd = &cobra.Command{
		Use:   "content",
		Short: "Works with the blog post collection.",
	}

	contentCheckCmd = &cobra.Command{
		Use:   "check",
		Short: "Validates the front matter of every post.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := current.loadPosts()
			out := cmd.OutOrStdout()
			for _, p := range posts {
				fmt.Fprintf(out, "%s  %-40s %s\n", p.PubDate.Format("2006-01-02"), p.ID, p.Title)
			}
			if err != nil {
				var merr *multierror.Error
				if errors.As(err, &merr) {
					return fmt.Errorf("%d invalid posts: %w", len(merr.Errors), err)
				}
				return err
			}
			fmt.Fprintf(out, "%d posts OK\n", len(posts))
			return nil
		},
	}

	contentHistoryCmd = &cobra.Command{
		Use:   "history",
		Short: "Writes an HTML revision history page for each post.",
		Long: `Renders the revision history of every valid post whose
showRevisionHistory flag is set into OUTPUT/<post id>.html.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := current.loadPosts()
			if err != nil {
				if len(posts) == 0 {
					return err
				}
				current.logger.Warn("Skipping invalid posts", "error", err)
			}

			ctx := cmd.Context()
			ext := current.extractor()
			remote := current.resolver().Resolve(ctx)
			outDir := current.cfg.Resolve(pagesDir)

			written := 0
			for _, post := range posts {
				if !post.ShowRevisionHistory {
					current.logger.Debug("Revision history disabled", "post", post.ID)
					continue
				}
				data := &models.FileHistory{
					Path:        current.relPath(post.Path),
					Remote:      remote,
					Commits:     ext.FileHistory(ctx, post.Path),
					GeneratedAt: time.Now(),
				}
				adapter := &report.HTMLReportAdapter{Logger: current.logger}
				if err := adapter.PrepareData(data); err != nil {
					return fmt.Errorf("failed to render history of %s: %w", post.ID, err)
				}
				target := filepath.Join(outDir, filepath.FromSlash(post.ID)+".html")
				if err := adapter.Write(target); err != nil {
					return fmt.Errorf("failed to write %s: %w", target, err)
				}
				written++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d history pages to %s\n", written, outDir)
			return nil
		},
	}
)

func (a app) loadPosts() ([]*content.Post, error) {
	c, err := content.NewCollection(a.cfg.Resolve(a.cfg.Content.Dir), a.cfg.Content.Pattern)
	if err != nil {
		return nil, err
	}
	return c.Load()
}

func init() {
	contentHistoryCmd.Flags().StringVarP(&pagesDir, "output", "o", filepath.Join("dist", "history"), "Output directory, relative to the repository root")

	contentCmd.AddCommand(contentCheckCmd)
	contentCmd.AddCommand(contentHistoryCmd)
}
