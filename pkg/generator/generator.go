// Package generator writes rendered posters and placeholder images.
//
// All output follows a unified pipeline: create an image.Image first,
// then encode it as PNG or JPEG.
package generator

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultJPEGQuality is used when Config.Quality is unset.
const DefaultJPEGQuality = 92

// Config holds parameters for output generation.
type Config struct {
	Width   int         // Pixel width (default: 1080)
	Height  int         // Pixel height (default: 1080)
	Color   string      // Hex "#rrggbb" for solid images
	Quality int         // JPEG quality 1-100 (default: 92)
	Image   image.Image // Pre-rendered image; overrides Width/Height/Color
}

// Generate creates an output file. The format is inferred from the file extension:
//   - ".png" → PNG image
//   - ".jpg", ".jpeg" → JPEG image
//
// If cfg.Image is nil, a solid-color image is created from cfg.Color/Width/Height.
func Generate(output string, cfg Config) error {
	img, err := resolveImage(cfg)
	if err != nil {
		return err
	}
	f, err := FormatFor(filepath.Ext(output))
	if err != nil {
		return err
	}
	return writeImage(output, img, f, quality(cfg))
}

// GenerateToWriter writes the image to w. The format is specified by ext
// (".png", ".jpg" or ".jpeg"). This is useful for in-memory generation
// (HTTP responses, WASM).
func GenerateToWriter(w io.Writer, ext string, cfg Config) error {
	img, err := resolveImage(cfg)
	if err != nil {
		return err
	}
	f, err := FormatFor(ext)
	if err != nil {
		return err
	}
	return encodeTo(w, img, f, quality(cfg))
}

// FormatFor maps a file extension (with or without the dot) or a bare format
// name to an encoder.
func FormatFor(ext string) (imaging.Format, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "png":
		return imaging.PNG, nil
	case "jpg", "jpeg":
		return imaging.JPEG, nil
	default:
		return 0, fmt.Errorf("unsupported format %q: use .png or .jpg", ext)
	}
}

// ContentType returns the MIME type for an output extension.
func ContentType(ext string) string {
	if f, err := FormatFor(ext); err == nil && f == imaging.JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

func quality(cfg Config) int {
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		return DefaultJPEGQuality
	}
	return cfg.Quality
}

// resolveImage returns the source image from config, creating a solid-color
// image if none is provided.
func resolveImage(cfg Config) (image.Image, error) {
	if cfg.Image != nil {
		return cfg.Image, nil
	}

	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = 1080
	}
	if h <= 0 {
		h = 1080
	}

	c, err := ParseColor(cfg.Color)
	if err != nil {
		return nil, err
	}
	return NewSolidImage(w, h, c), nil
}
