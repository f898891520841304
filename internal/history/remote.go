package history

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/user/sitekit/internal/models"
	"github.com/user/sitekit/pkg/gitutil"
)

// DefaultRemoteEnv lists the environment variables consulted, in order, when
// the repository has no remote configured.
var DefaultRemoteEnv = []string{"GIT_REMOTE_URL", "VERCEL_GIT_REPO_URL"}

type knownHost struct {
	domain   string
	platform models.Platform
	pattern  *regexp.Regexp
}

// Checked in order; the first domain contained in the URL wins.
var knownHosts = []knownHost{
	hostPattern("github.com", models.PlatformGitHub),
	hostPattern("gitlab.com", models.PlatformGitLab),
	hostPattern("bitbucket.org", models.PlatformBitbucket),
}

func hostPattern(domain string, platform models.Platform) knownHost {
	return knownHost{
		domain:   domain,
		platform: platform,
		pattern:  regexp.MustCompile(regexp.QuoteMeta(domain) + `[:/]([^/]+)/(.+?)(?:\.git)?$`),
	}
}

// ParseRemoteURL classifies a remote URL and derives its https base URL.
// SSH (host:owner/repo.git) and HTTPS (host/owner/repo.git) forms are accepted.
func ParseRemoteURL(url string) models.RemoteInfo {
	url = strings.TrimSpace(url)
	info := models.RemoteInfo{URL: url, Platform: models.PlatformOther}
	for _, h := range knownHosts {
		if !strings.Contains(url, h.domain) {
			continue
		}
		info.Platform = h.platform
		if m := h.pattern.FindStringSubmatch(url); m != nil {
			info.BaseURL = fmt.Sprintf("https://%s/%s/%s", h.domain, m[1], m[2])
		}
		return info
	}
	return info
}

// CommitURL builds the web permalink of a commit. It reports false when the
// remote is unknown, has no base URL, or is hosted on an unsupported platform.
func CommitURL(info *models.RemoteInfo, fullHash string) (string, bool) {
	if info == nil || info.BaseURL == "" {
		return "", false
	}
	switch info.Platform {
	case models.PlatformGitHub:
		return info.BaseURL + "/commit/" + fullHash, true
	case models.PlatformGitLab:
		return info.BaseURL + "/-/commit/" + fullHash, true
	case models.PlatformBitbucket:
		return info.BaseURL + "/commits/" + fullHash, true
	default:
		return "", false
	}
}

// RemoteResolver finds the remote URL of a repository.
type RemoteResolver struct {
	RepoRoot string
	Runner   Runner
	// ReadConfig reads the origin remote from the repository configuration
	// without the git binary. Nil disables this source.
	ReadConfig func(repoRoot string) (string, error)
	EnvVars    []string
	LookupEnv  func(string) (string, bool)
	Logger     *slog.Logger
}

// NewRemoteResolver returns a resolver using git, the on-disk repository
// configuration and the default environment variables.
func NewRemoteResolver(repoRoot string, logger *slog.Logger) *RemoteResolver {
	return &RemoteResolver{
		RepoRoot:   repoRoot,
		Runner:     ExecRunner,
		ReadConfig: gitutil.OriginURLAt,
		EnvVars:    DefaultRemoteEnv,
		LookupEnv:  os.LookupEnv,
		Logger:     logger,
	}
}

// Resolve returns the remote info, or nil when no source yields a URL.
// Every call re-reads its sources.
func (r *RemoteResolver) Resolve(ctx context.Context) *models.RemoteInfo {
	url := r.remoteURL(ctx)
	if url == "" {
		return nil
	}
	info := ParseRemoteURL(url)
	return &info
}

func (r *RemoteResolver) remoteURL(ctx context.Context) string {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	runner := r.Runner
	if runner == nil {
		runner = ExecRunner
	}
	out, err := runner(ctx, r.RepoRoot, "config", "--get", "remote.origin.url")
	if err != nil {
		log.Warn("git config failed, trying fallbacks", "error", err)
	} else if url := strings.TrimSpace(out); url != "" {
		return url
	}

	if r.ReadConfig != nil {
		url, err := r.ReadConfig(r.RepoRoot)
		if err != nil {
			log.Debug("repository config has no remote", "error", err)
		} else if url = strings.TrimSpace(url); url != "" {
			return url
		}
	}

	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, name := range r.EnvVars {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			log.Debug("using remote URL from environment", "var", name)
			return strings.TrimSpace(v)
		}
	}
	return ""
}
