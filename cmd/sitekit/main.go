package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/user/sitekit/internal/config"
	"github.com/user/sitekit/internal/history"
	"github.com/user/sitekit/pkg/gitutil"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

var (
	// Used for flags.
	configPath string
	repoPath   string
	verbose    bool

	current app

	rootCmd = &cobra.Command{
		Use:   "sitekit",
		Short: "sitekit maintains the content of a git-hosted static blog.",
		Long: `A toolbox for a static blog kept in git. It shows the revision history
of content files with links to the hosting service, validates the post
collection, renders revision history pages and optimizes image assets.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}
)

func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	root, err := repoRoot(logger)
	if err != nil {
		return err
	}

	path := configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	switch {
	case repoPath != "" || cfg.RepoRoot == "":
		cfg.RepoRoot = root
	case !filepath.IsAbs(cfg.RepoRoot):
		cfg.RepoRoot = filepath.Join(root, cfg.RepoRoot)
	}

	if err := config.LoadEnv(cfg.RepoRoot); err != nil {
		logger.Warn("Ignoring .env file", "error", err)
	}
	logger.Debug("Configuration loaded", "config", path, "repo", cfg.RepoRoot)

	current = app{cfg: cfg, logger: logger}
	return nil
}

// repoRoot returns the --repo flag, else the work tree enclosing the current
// directory, else the current directory.
func repoRoot(logger *slog.Logger) (string, error) {
	if repoPath != "" {
		abs, err := filepath.Abs(repoPath)
		if err != nil {
			return "", fmt.Errorf("error getting absolute path for '%s': %w", repoPath, err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	root, err := gitutil.WorkTreeRoot(wd)
	if err != nil {
		logger.Debug("Not inside a git work tree, using working directory", "dir", wd, "error", err)
		return wd, nil
	}
	return root, nil
}

func (a app) extractor() *history.Extractor {
	e := history.NewExtractor(a.cfg.RepoRoot, a.logger)
	e.Match = a.cfg.History.MatchMode()
	e.StripPrefix = a.cfg.History.StripPrefix
	return e
}

func (a app) resolver() *history.RemoteResolver {
	r := history.NewRemoteResolver(a.cfg.RepoRoot, a.logger)
	r.EnvVars = a.cfg.History.RemoteEnv
	return r
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Config file, relative to the repository root")
	rootCmd.PersistentFlags().StringVar(&repoPath, "repo", "", "Repository root (default: the enclosing git work tree)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(remoteCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(imagesCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
