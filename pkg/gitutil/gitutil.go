package gitutil

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// ErrNoRemoteURL is returned when a repository has no usable remote URL.
var ErrNoRemoteURL = errors.New("no remote URL configured")

// OpenRepository opens the git repository containing path. Parent directories
// are searched for a .git directory, like the git CLI does.
func OpenRepository(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return repo, nil
}

// WorkTreeRoot returns the absolute root of the work tree containing path.
func WorkTreeRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	repo, err := OpenRepository(abs)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("repository at %s has no work tree: %w", abs, err)
	}
	return wt.Filesystem.Root(), nil
}

// OriginRemote is the remote consulted for the repository's hosting URL.
const OriginRemote = "origin"

// RemoteURL reads the first URL of the named remote from the repository
// configuration.
func RemoteURL(repo *git.Repository, name string) (string, error) {
	remote, err := repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("failed to get %q remote: %v: %w", name, err, ErrNoRemoteURL)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 || urls[0] == "" {
		return "", fmt.Errorf("remote %q has no URLs: %w", name, ErrNoRemoteURL)
	}
	return urls[0], nil
}

// OriginURLAt opens the repository containing path and returns the URL of
// its origin remote. Other remotes are ignored.
func OriginURLAt(path string) (string, error) {
	repo, err := OpenRepository(path)
	if err != nil {
		return "", err
	}
	return RemoteURL(repo, OriginRemote)
}
