// Package template holds poster templates: the background image references
// and the photo/text zones placed on top of them.
package template

import (
	"github.com/xob0t/GoPoster/pkg/geometry"
)

// ── Template types ──

// Template is one poster design as stored by the template repository.
type Template struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Category      string       `json:"category"`
	SchemaVersion int          `json:"schemaVersion"`
	ImageURLs     ImageURLs    `json:"imageUrls"`
	LayoutConfig  LayoutConfig `json:"layoutConfig"`
}

// ImageURLs references the background at three resolutions.
type ImageURLs struct {
	Thumbnail string `json:"thumbnail"`
	Preview   string `json:"preview"`
	Full      string `json:"full"`
}

// LayoutConfig declares where the photo and the text fields go.
type LayoutConfig struct {
	LayoutStyle LayoutStyle `json:"layoutStyle,omitempty"`
	PhotoZones  []PhotoZone `json:"photoZones"`
	TextZones   []TextZone  `json:"textZones"`
}

// LayoutStyle selects how the name/title block is positioned vertically.
type LayoutStyle string

const (
	// StylePhotoCenter centres the name+title block on the photo zone's
	// vertical centre.
	StylePhotoCenter LayoutStyle = "photo-center"
	// StylePhotoAbove anchors the block's bottom one spacing unit above the
	// photo zone.
	StylePhotoAbove LayoutStyle = "photo-above"
	// StyleZone starts the block at the name zone's own Y.
	StyleZone LayoutStyle = "zone"
)

// Valid reports whether s is a known layout style.
func (s LayoutStyle) Valid() bool {
	switch s {
	case StylePhotoCenter, StylePhotoAbove, StyleZone:
		return true
	}
	return false
}

// NeedsPhoto reports whether the style positions text relative to the photo.
func (s LayoutStyle) NeedsPhoto() bool {
	return s == StylePhotoCenter || s == StylePhotoAbove
}

// ── Zone types ──

// PhotoZone is where the user's photo is stamped, in canonical units.
type PhotoZone struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	BorderRadius float64 `json:"borderRadius,omitempty"`
}

// Rect returns the zone rectangle.
func (z PhotoZone) Rect() geometry.Rect {
	return geometry.Rect{X: z.X, Y: z.Y, Width: z.Width, Height: z.Height}
}

// Circular reports whether the radius asks for a circular mask (radius of at
// least half the shorter side).
func (z PhotoZone) Circular() bool {
	return z.BorderRadius > 0 && z.BorderRadius*2 >= min(z.Width, z.Height)
}

// ZoneType names the content field a text zone renders.
type ZoneType string

const (
	ZoneName  ZoneType = "name"
	ZoneTitle ZoneType = "title"
)

// TextZone places one content field, in canonical units. Coordinates is the
// legacy four-corner form; Normalize folds it into X/Y/Width/Height.
type TextZone struct {
	Type          ZoneType          `json:"type"`
	Coordinates   *geometry.Corners `json:"coordinates,omitempty"`
	X             float64           `json:"x"`
	Y             float64           `json:"y"`
	Width         float64           `json:"width"`
	Height        float64           `json:"height"`
	FontSize      float64           `json:"fontSize"`
	FontFamily    string            `json:"fontFamily"`
	FontWeight    string            `json:"fontWeight,omitempty"`
	Color         string            `json:"color"`
	TextAlign     string            `json:"textAlign"`
	TextTransform string            `json:"textTransform,omitempty"`
}

// Rect returns the zone rectangle.
func (z TextZone) Rect() geometry.Rect {
	return geometry.Rect{X: z.X, Y: z.Y, Width: z.Width, Height: z.Height}
}

// Text alignment and transform values.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"

	TransformUppercase = "uppercase"
)

// ── Accessors ──

// PhotoZone returns the first photo zone; extra zones are ignored.
func (t *Template) PhotoZone() (PhotoZone, bool) {
	if len(t.LayoutConfig.PhotoZones) == 0 {
		return PhotoZone{}, false
	}
	return t.LayoutConfig.PhotoZones[0], true
}

// TextZone returns the first text zone of the given type.
func (t *Template) TextZone(kind ZoneType) (TextZone, bool) {
	for _, z := range t.LayoutConfig.TextZones {
		if z.Type == kind {
			return z, true
		}
	}
	return TextZone{}, false
}

// CanonicalSize returns the design resolution declared by SchemaVersion.
func (t *Template) CanonicalSize() (int, error) {
	return geometry.CanonicalSize(t.SchemaVersion)
}

// BackgroundURL picks the background for a render mode. Previews prefer the
// lighter preview asset; final renders always use the full-resolution one.
func (t *Template) BackgroundURL(preview bool) string {
	if preview && t.ImageURLs.Preview != "" {
		return t.ImageURLs.Preview
	}
	return t.ImageURLs.Full
}

// Clone returns a deep copy of t.
func (t Template) Clone() Template {
	out := t
	out.LayoutConfig.PhotoZones = append([]PhotoZone(nil), t.LayoutConfig.PhotoZones...)
	out.LayoutConfig.TextZones = make([]TextZone, len(t.LayoutConfig.TextZones))
	for i, z := range t.LayoutConfig.TextZones {
		if z.Coordinates != nil {
			c := *z.Coordinates
			z.Coordinates = &c
		}
		out.LayoutConfig.TextZones[i] = z
	}
	return out
}
