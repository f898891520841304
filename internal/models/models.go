package models

import "time"

// CommitRecord is one commit that modified a queried file.
type CommitRecord struct {
	ShortHash    string    `json:"short_hash"`
	FullHash     string    `json:"full_hash"`
	Timestamp    time.Time `json:"timestamp"`
	AuthorName   string    `json:"author_name"`
	AuthorEmail  string    `json:"author_email"`
	Summary      string    `json:"summary"`      // first line of the message
	Message      string    `json:"message"`      // summary, blank line, body
	FilesChanged []string  `json:"files_changed"` // in log order
}

// Platform identifies the hosting service behind a remote URL.
type Platform string

const (
	PlatformGitHub    Platform = "github"
	PlatformGitLab    Platform = "gitlab"
	PlatformBitbucket Platform = "bitbucket"
	PlatformOther     Platform = "other"
)

// RemoteInfo describes the repository's configured remote.
type RemoteInfo struct {
	URL      string   `json:"url"`
	Platform Platform `json:"platform"`
	BaseURL  string   `json:"base_url"` // https://host/owner/repo, empty when the URL could not be matched
}

// FileHistory is the payload rendered by the history reports.
type FileHistory struct {
	Path        string         `json:"path"`
	Remote      *RemoteInfo    `json:"remote,omitempty"`
	Commits     []CommitRecord `json:"commits"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// ImageResult holds the before/after sizes of one optimized image.
type ImageResult struct {
	FilePath       string  `json:"file_path"`
	OriginalSize   int64   `json:"original_size"`
	NewSize        int64   `json:"new_size"`
	SavingsPercent float64 `json:"savings_percent"`
}

// ImageFailure records a file the optimizer could not process.
type ImageFailure struct {
	FilePath string `json:"file_path"`
	Err      error  `json:"-"`
}

// OptimizationReport aggregates one optimizer run. Failed files are not part of the totals.
type OptimizationReport struct {
	Results             []ImageResult  `json:"results"`
	Failures            []ImageFailure `json:"failures"`
	TotalOriginal       int64          `json:"total_original"`
	TotalNew            int64          `json:"total_new"`
	TotalSavingsPercent float64        `json:"total_savings_percent"`
}
