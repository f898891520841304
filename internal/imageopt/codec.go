package imageopt

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	webpenc "github.com/chai2010/webp"
	"golang.org/x/image/webp"
)

// Format is an image encoding handled by the optimizer.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ErrUnsupportedFormat is returned for file extensions the optimizer skips.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// FormatFromPath maps a file extension, case-insensitively, to a Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".png":
		return FormatPNG, nil
	case ".webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Codec re-encodes raw image bytes in the given format.
type Codec interface {
	Encode(src []byte, format Format) ([]byte, error)
}

// CodecSettings holds the per-format encoder parameters.
type CodecSettings struct {
	JPEGQuality     int
	JPEGProgressive bool
	JPEGOptimize    bool
	PNGCompression  int // zlib level, 0-9
	PNGProgressive  bool
	WebPQuality     int
}

// DefaultSettings are the settings used for site assets.
func DefaultSettings() CodecSettings {
	return CodecSettings{
		JPEGQuality:     85,
		JPEGProgressive: true,
		JPEGOptimize:    true,
		PNGCompression:  9,
		PNGProgressive:  true,
		WebPQuality:     80,
	}
}

// StdCodec encodes with the Go image packages and libwebp.
//
// image/jpeg writes baseline JPEGs only and image/png never interlaces, so
// the progressive and optimize flags are accepted but have no effect.
type StdCodec struct {
	Settings CodecSettings
}

// NewStdCodec returns a StdCodec using settings.
func NewStdCodec(settings CodecSettings) *StdCodec {
	return &StdCodec{Settings: settings}
}

// IgnoredSettings names the enabled settings this codec cannot honour.
func (c *StdCodec) IgnoredSettings() []string {
	var ignored []string
	if c.Settings.JPEGProgressive {
		ignored = append(ignored, "jpeg progressive")
	}
	if c.Settings.JPEGOptimize {
		ignored = append(ignored, "jpeg optimize")
	}
	if c.Settings.PNGProgressive {
		ignored = append(ignored, "png progressive")
	}
	return ignored
}

// Encode decodes src as format and encodes it again with the codec settings.
func (c *StdCodec) Encode(src []byte, format Format) ([]byte, error) {
	img, err := decode(src, format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", format, err)
	}

	var buf bytes.Buffer
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.Settings.JPEGQuality})
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: pngLevel(c.Settings.PNGCompression)}
		err = enc.Encode(&buf, img)
	case FormatWebP:
		err = webpenc.Encode(&buf, img, &webpenc.Options{Quality: float32(c.Settings.WebPQuality)})
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return buf.Bytes(), nil
}

func decode(src []byte, format Format) (image.Image, error) {
	r := bytes.NewReader(src)
	switch format {
	case FormatJPEG:
		return jpeg.Decode(r)
	case FormatPNG:
		return png.Decode(r)
	case FormatWebP:
		return webp.Decode(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// image/png exposes four compression presets rather than zlib levels.
func pngLevel(level int) png.CompressionLevel {
	switch {
	case level <= 0:
		return png.NoCompression
	case level >= 9:
		return png.BestCompression
	case level <= 3:
		return png.BestSpeed
	default:
		return png.DefaultCompression
	}
}
