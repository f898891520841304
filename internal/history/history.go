// Package history derives per-file revision history from git metadata and
// resolves the repository's hosting remote for commit permalinks.
package history

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/user/sitekit/internal/models"
)

// DefaultStripPrefix is removed from queried paths before loose matching.
const DefaultStripPrefix = "src/"

// Extractor reads the commit history of individual files in one repository.
type Extractor struct {
	RepoRoot    string // all paths are resolved against this directory
	Runner      Runner
	Match       MatchMode
	StripPrefix string
	Logger      *slog.Logger
}

// NewExtractor returns an Extractor for repoRoot using the git binary and the
// loose file-match policy.
func NewExtractor(repoRoot string, logger *slog.Logger) *Extractor {
	return &Extractor{
		RepoRoot:    repoRoot,
		Runner:      ExecRunner,
		Match:       MatchLoose,
		StripPrefix: DefaultStripPrefix,
		Logger:      logger,
	}
}

func (e *Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// FileHistory returns the commits that touched filePath, newest first,
// following renames. It never fails: when git cannot be run or produces no
// usable output the result is empty and a warning is logged.
func (e *Extractor) FileHistory(ctx context.Context, filePath string) []models.CommitRecord {
	log := e.logger().With("file", filePath)
	if filePath == "" {
		log.Warn("no file given for git history")
		return []models.CommitRecord{}
	}

	absPath := filePath
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(e.RepoRoot, filePath)
	}

	runner := e.Runner
	if runner == nil {
		runner = ExecRunner
	}
	output, err := runner(ctx, e.RepoRoot,
		"log", "--follow",
		"--pretty=format:"+LogFormat,
		"--date=iso",
		"--name-only",
		"--", absPath)
	if err != nil {
		log.Warn("failed to get git history", "error", err)
		return []models.CommitRecord{}
	}

	commits := ParseLog(output)
	if len(commits) == 0 {
		log.Debug("no git history found")
		return []models.CommitRecord{}
	}

	target := filePath
	if rel, err := filepath.Rel(e.RepoRoot, absPath); err == nil {
		target = rel
	}
	filtered := FilterCommits(commits, filepath.ToSlash(target), e.StripPrefix, e.Match)
	log.Debug("git history loaded", "parsed", len(commits), "matched", len(filtered))
	return filtered
}
