package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	assets := filepath.Join(root, "img")
	require.NoError(t, os.MkdirAll(assets, 0755))

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	img.Set(0, 0, color.White)
	var src bytes.Buffer
	require.NoError(t, (&png.Encoder{CompressionLevel: png.NoCompression}).Encode(&src, img))
	require.NoError(t, os.WriteFile(filepath.Join(assets, "a.png"), src.Bytes(), 0644))

	cfgPath := filepath.Join(root, "sitekit.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("repo_root = \""+filepath.ToSlash(root)+"\"\n[images]\ndir = \"img\"\n"), 0644))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfgPath, &out, discardLogger()))
	assert.Contains(t, out.String(), "Images processed: 1")

	_, err := os.Stat(filepath.Join(assets, "a.png.tmp"))
	assert.True(t, os.IsNotExist(err), "temporary file is gone")
}

func TestRunMissingDirectory(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "sitekit.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("repo_root = \""+filepath.ToSlash(root)+"\"\n"), 0644))

	err := run(context.Background(), cfgPath, io.Discard, discardLogger())
	assert.Error(t, err)
}
