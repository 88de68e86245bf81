// Package geometry maps template coordinates from their canonical design
// resolution to the pixel grid of a render.
package geometry

import (
	"fmt"
	"math"
)

// Canonical design resolutions. Templates carry their schema version as
// explicit metadata; the resolution is never guessed from the values.
const (
	LegacyCanonical = 1080
	Canonical       = 2000
)

// Schema versions understood by CanonicalSize.
const (
	SchemaLegacyFraction = 1 // 1080 canvas, font size as a fraction of the side
	SchemaLegacyPixels   = 2 // 1080 canvas, font size in pixels
	SchemaCanonical      = 3 // 2000 canvas, everything in pixels
)

// CanonicalSize returns the design resolution for a template schema version.
func CanonicalSize(schemaVersion int) (int, error) {
	switch schemaVersion {
	case SchemaLegacyFraction, SchemaLegacyPixels:
		return LegacyCanonical, nil
	case SchemaCanonical:
		return Canonical, nil
	default:
		return 0, fmt.Errorf("unknown template schema version %d", schemaVersion)
	}
}

// Scale converts a canonical length to target pixels, rounded to the nearest
// integer.
func Scale(value float64, target, canonical int) int {
	return int(math.Round(Scalef(value, target, canonical)))
}

// Scalef is the unrounded form of Scale.
func Scalef(value float64, target, canonical int) float64 {
	if canonical <= 0 {
		return value
	}
	return value * float64(target) / float64(canonical)
}

// Scaler applies one square-to-square factor to every value of a render.
type Scaler struct {
	Target    int
	Canonical int
}

// NewScaler returns a scaler for a target square side.
func NewScaler(target, canonical int) Scaler {
	return Scaler{Target: target, Canonical: canonical}
}

// Factor is target / canonical.
func (s Scaler) Factor() float64 {
	if s.Canonical <= 0 {
		return 1
	}
	return float64(s.Target) / float64(s.Canonical)
}

// Px scales and rounds a single value.
func (s Scaler) Px(v float64) int { return Scale(v, s.Target, s.Canonical) }

// Pxf scales a single value without rounding.
func (s Scaler) Pxf(v float64) float64 { return Scalef(v, s.Target, s.Canonical) }

// Rect scales every edge of r with the same factor.
func (s Scaler) Rect(r Rect) PixelRect {
	return PixelRect{
		X:      s.Px(r.X),
		Y:      s.Px(r.Y),
		Width:  s.Px(r.Width),
		Height: s.Px(r.Height),
	}
}
