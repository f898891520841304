// Package config loads sitekit.toml and the optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/user/sitekit/internal/history"
	"github.com/user/sitekit/internal/imageopt"
)

// DefaultPath is the config file looked up in the repository root.
const DefaultPath = "sitekit.toml"

// ErrInvalidMatchMode is returned for an unknown history.match value.
var ErrInvalidMatchMode = errors.New("history.match must be \"loose\" or \"exact\"")

// Config is the sitekit.toml file.
type Config struct {
	RepoRoot string  `toml:"repo_root"`
	History  History `toml:"history"`
	Images   Images  `toml:"images"`
	Content  Content `toml:"content"`
}

// History configures file history and remote lookup.
type History struct {
	Match       string   `toml:"match"`        // loose | exact
	StripPrefix string   `toml:"strip_prefix"` // removed before loose matching
	RemoteEnv   []string `toml:"remote_env"`   // fallback variables, in priority order
}

// Images configures the image optimizer.
type Images struct {
	Dir            string `toml:"dir"`
	JPEGQuality    int    `toml:"jpeg_quality"`
	PNGCompression int    `toml:"png_compression"`
	WebPQuality    int    `toml:"webp_quality"`
	MetricsFile    string `toml:"metrics_file"`
}

// Content locates the post collection.
type Content struct {
	Dir     string `toml:"dir"`
	Pattern string `toml:"pattern"`
}

// Defaults mirrors the layout of an Astro blog.
func Defaults() Config {
	return Config{
		History: History{
			Match:       "loose",
			StripPrefix: "src/",
			RemoteEnv:   []string{"GIT_REMOTE_URL", "VERCEL_GIT_REPO_URL"},
		},
		Images: Images{
			Dir:            filepath.Join("src", "assets"),
			JPEGQuality:    85,
			PNGCompression: 9,
			WebPQuality:    80,
		},
		Content: Content{
			Dir:     filepath.Join("src", "content", "posts"),
			Pattern: "**/*.{md,mdx}",
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error. Relative directories are resolved against the repository root.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.History.Match != "loose" && c.History.Match != "exact" {
		return ErrInvalidMatchMode
	}
	for name, q := range map[string]int{"jpeg_quality": c.Images.JPEGQuality, "webp_quality": c.Images.WebPQuality} {
		if q < 1 || q > 100 {
			return fmt.Errorf("images.%s must be within 1-100, got %d", name, q)
		}
	}
	if c.Images.PNGCompression < 0 || c.Images.PNGCompression > 9 {
		return fmt.Errorf("images.png_compression must be within 0-9, got %d", c.Images.PNGCompression)
	}
	return nil
}

// CodecSettings returns the encoder settings for the configured qualities.
func (i Images) CodecSettings() imageopt.CodecSettings {
	s := imageopt.DefaultSettings()
	s.JPEGQuality = i.JPEGQuality
	s.PNGCompression = i.PNGCompression
	s.WebPQuality = i.WebPQuality
	return s
}

// MatchMode returns the history file-match policy.
func (h History) MatchMode() history.MatchMode {
	if h.Match == "exact" {
		return history.MatchExact
	}
	return history.MatchLoose
}

// Resolve returns p relative to the repository root unless it is absolute.
func (c *Config) Resolve(p string) string {
	if filepath.IsAbs(p) || c.RepoRoot == "" {
		return p
	}
	return filepath.Join(c.RepoRoot, p)
}

// LoadEnv loads .env from dir into the process environment. Variables that
// are already set keep their values. A missing file is ignored.
func LoadEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
