// loader.go — Load template.json files and .gsposter (ZIP) bundles.
package template

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// BundleExt is the extension of zipped template bundles.
const BundleExt = ".gsposter"

// Parse validates raw template JSON, decodes it, migrates it to the canonical
// schema and validates the result.
func Parse(data []byte, opts NormalizeOptions) (*Template, error) {
	if err := ValidateJSON(data); err != nil {
		return nil, err
	}

	var raw Template
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &InvalidTemplateConfigError{Reason: "decode template", Err: err}
	}

	tpl, err := Normalize(raw, opts)
	if err != nil {
		return nil, err
	}
	if err := Validate(&tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// LoadFile reads a standalone template JSON file. Relative image paths are
// resolved against the file's directory.
func LoadFile(path string, opts NormalizeOptions) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	tpl, err := Parse(data, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	resolveAssetPaths(tpl, filepath.Dir(path))
	return tpl, nil
}

// LoadBundle opens a .gsposter ZIP, extracts it to a temp directory, parses
// template.json and resolves asset paths into the extracted tree. The returned
// cleanup function removes the temp directory.
func LoadBundle(path string, opts NormalizeOptions) (*Template, func(), error) {
	noop := func() {}

	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, noop, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	tmpDir, err := os.MkdirTemp("", "gsposter-*")
	if err != nil {
		return nil, noop, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	if err := extractZip(r, tmpDir); err != nil {
		cleanup()
		return nil, noop, fmt.Errorf("extract %s: %w", path, err)
	}

	tpl, err := LoadFile(filepath.Join(tmpDir, "template.json"), opts)
	if err != nil {
		cleanup()
		return nil, noop, err
	}
	return tpl, cleanup, nil
}

// resolveAssetPaths makes relative local image paths absolute using baseDir.
// URLs and absolute paths are left alone.
func resolveAssetPaths(t *Template, baseDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) || strings.Contains(p, "://") || strings.HasPrefix(p, "asset:") {
			return p
		}
		return filepath.Join(baseDir, p)
	}
	t.ImageURLs.Thumbnail = resolve(t.ImageURLs.Thumbnail)
	t.ImageURLs.Preview = resolve(t.ImageURLs.Preview)
	t.ImageURLs.Full = resolve(t.ImageURLs.Full)
}

// maxBundleEntry caps a single extracted file; backgrounds are a few MB.
const maxBundleEntry = 64 << 20

// extractZip unpacks a bundle into destDir, rejecting entries that would land
// outside it.
func extractZip(r *zip.ReadCloser, destDir string) error {
	for _, f := range r.File {
		name := filepath.FromSlash(f.Name)
		if !filepath.IsLocal(name) {
			return fmt.Errorf("bundle entry %q escapes the bundle", f.Name)
		}
		target := filepath.Join(destDir, name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if f.UncompressedSize64 > maxBundleEntry {
			return fmt.Errorf("bundle entry %q is too large (%d bytes)", f.Name, f.UncompressedSize64)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := writeEntry(f, target); err != nil {
			return fmt.Errorf("bundle entry %q: %w", f.Name, err)
		}
	}
	return nil
}

func writeEntry(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, io.LimitReader(src, maxBundleEntry)); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
