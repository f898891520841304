package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/sitekit/internal/history"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "sitekit.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
	assert.Equal(t, 85, cfg.Images.JPEGQuality)
	assert.Equal(t, 9, cfg.Images.PNGCompression)
	assert.Equal(t, 80, cfg.Images.WebPQuality)
	assert.Equal(t, []string{"GIT_REMOTE_URL", "VERCEL_GIT_REPO_URL"}, cfg.History.RemoteEnv)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitekit.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
repo_root = "/srv/blog"

[history]
match = "exact"

[images]
dir = "public/img"
webp_quality = 70
metrics_file = "/var/lib/node_exporter/sitekit.prom"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/blog", cfg.RepoRoot)
	assert.Equal(t, "exact", cfg.History.Match)
	assert.Equal(t, "src/", cfg.History.StripPrefix, "unset keys keep defaults")
	assert.Equal(t, "public/img", cfg.Images.Dir)
	assert.Equal(t, 70, cfg.Images.WebPQuality)
	assert.Equal(t, 85, cfg.Images.JPEGQuality)
	assert.Equal(t, filepath.Join("/srv/blog", "public/img"), cfg.Resolve(cfg.Images.Dir))
	assert.Equal(t, "/abs", cfg.Resolve("/abs"))
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"bad toml":    "repo_root = ",
		"bad match":   "[history]\nmatch = \"fuzzy\"",
		"bad quality": "[images]\njpeg_quality = 0",
		"bad level":   "[images]\npng_compression = 12",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	path := filepath.Join(dir, "match.toml")
	require.NoError(t, os.WriteFile(path, []byte("[history]\nmatch = \"fuzzy\""), 0644))
	_, err := Load(path)
	assert.True(t, errors.Is(err, ErrInvalidMatchMode))
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadEnv(dir), "missing .env is ignored")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SITEKIT_TEST_REMOTE=git@github.com:acme/widgets.git\nSITEKIT_TEST_KEEP=from-file\n"), 0644))
	t.Setenv("SITEKIT_TEST_KEEP", "from-env")
	t.Setenv("SITEKIT_TEST_REMOTE", "")
	os.Unsetenv("SITEKIT_TEST_REMOTE")

	require.NoError(t, LoadEnv(dir))
	assert.Equal(t, "git@github.com:acme/widgets.git", os.Getenv("SITEKIT_TEST_REMOTE"))
	assert.Equal(t, "from-env", os.Getenv("SITEKIT_TEST_KEEP"))
}

func TestDerivedSettings(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, history.MatchLoose, cfg.History.MatchMode())
	cfg.History.Match = "exact"
	assert.Equal(t, history.MatchExact, cfg.History.MatchMode())

	cfg.Images.WebPQuality = 60
	s := cfg.Images.CodecSettings()
	assert.Equal(t, 60, s.WebPQuality)
	assert.Equal(t, 85, s.JPEGQuality)
	assert.True(t, s.JPEGProgressive)
}
