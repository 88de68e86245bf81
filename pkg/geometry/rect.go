// rect.go — Canonical rectangle representation and derived corner points.
package geometry

import (
	"fmt"
	"image"
	"math"
)

// Point is a position in canonical units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Corners is the legacy four-corner zone description. It is accepted at the
// template-loading boundary and otherwise derived from a Rect on demand.
type Corners struct {
	TopLeft     Point `json:"topLeft"`
	TopRight    Point `json:"topRight"`
	BottomRight Point `json:"bottomRight"`
	BottomLeft  Point `json:"bottomLeft"`
}

// Rect is an axis-aligned zone in canonical units (origin + size).
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Corners derives the four corner points of r.
func (r Rect) Corners() Corners {
	return Corners{
		TopLeft:     Point{r.X, r.Y},
		TopRight:    Point{r.X + r.Width, r.Y},
		BottomRight: Point{r.X + r.Width, r.Y + r.Height},
		BottomLeft:  Point{r.X, r.Y + r.Height},
	}
}

// CenterY is the vertical centre of r.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// FromCorners converts four-corner data into a Rect. The corners must
// describe an axis-aligned rectangle; anything else is rejected because zones
// are never rotated or skewed.
func FromCorners(c Corners) (Rect, error) {
	minX := math.Min(c.TopLeft.X, c.BottomLeft.X)
	maxX := math.Max(c.TopRight.X, c.BottomRight.X)
	minY := math.Min(c.TopLeft.Y, c.TopRight.Y)
	maxY := math.Max(c.BottomLeft.Y, c.BottomRight.Y)

	const eps = 0.5
	if math.Abs(c.TopLeft.X-c.BottomLeft.X) > eps || math.Abs(c.TopRight.X-c.BottomRight.X) > eps ||
		math.Abs(c.TopLeft.Y-c.TopRight.Y) > eps || math.Abs(c.BottomLeft.Y-c.BottomRight.Y) > eps {
		return Rect{}, fmt.Errorf("corners do not form an axis-aligned rectangle")
	}
	if maxX <= minX || maxY <= minY {
		return Rect{}, fmt.Errorf("corners describe an empty rectangle")
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, nil
}

// PixelRect is a Rect after scaling to a render's pixel grid.
type PixelRect struct {
	X, Y          int
	Width, Height int
}

// Image returns r as an image.Rectangle.
func (r PixelRect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether r covers no pixels.
func (r PixelRect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }
