// errors.go — Render failures and degradations.
package compositor

import (
	"fmt"

	"github.com/xob0t/GoPoster/pkg/template"
)

// Asset names used in AssetFetchError.
const (
	AssetBackground = "background"
	AssetPhoto      = "photo"
)

// AssetFetchError means the background or the photo could not be fetched or
// decoded. The render produced no image. It is never retried here.
type AssetFetchError struct {
	Asset string // AssetBackground or AssetPhoto
	Ref   string
	Err   error
}

func (e *AssetFetchError) Error() string {
	return fmt.Sprintf("fetch %s %q: %v", e.Asset, e.Ref, e.Err)
}

func (e *AssetFetchError) Unwrap() error { return e.Err }

// TextDegradation records a text zone that was drawn as a placeholder
// rectangle because its glyphs could not be rendered. It is not an error of
// the render.
type TextDegradation struct {
	Zone template.ZoneType `json:"zone"`
	Err  error             `json:"-"`
}

func (d TextDegradation) Error() string {
	return fmt.Sprintf("text zone %s degraded: %v", d.Zone, d.Err)
}

func (d TextDegradation) Unwrap() error { return d.Err }
