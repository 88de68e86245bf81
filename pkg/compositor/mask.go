// mask.go — Photo clipping masks and cover-fit helpers.
package compositor

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// photoMask returns the alpha mask for a w×h photo with the given corner
// radius: a circle when the radius reaches half the shorter side, a rounded
// rectangle for smaller positive radii, nil for square corners.
func photoMask(w, h int, radius float64) *image.Alpha {
	if radius <= 0 || w <= 0 || h <= 0 {
		return nil
	}
	dc := gg.NewContext(w, h)
	cx, cy := float64(w)/2, float64(h)/2
	switch {
	case radius*2 < float64(min(w, h)):
		dc.DrawRoundedRectangle(0, 0, float64(w), float64(h), radius)
	case w == h:
		dc.DrawCircle(cx, cy, cx)
	default:
		dc.DrawEllipse(cx, cy, cx, cy)
	}
	dc.Fill()
	return dc.AsMask()
}

// coverFit resizes and crops img to exactly w×h, keeping the centre.
func coverFit(img image.Image, w, h int) *image.NRGBA {
	return imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos)
}

// newCanvas returns an RGBA copy of the cover-fitted background.
func newCanvas(bg image.Image, size int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(canvas, canvas.Bounds(), coverFit(bg, size, size), image.Point{}, draw.Src)
	return canvas
}

// stampPhoto cover-fits photo into r and composites it through the mask.
func stampPhoto(canvas *image.RGBA, photo image.Image, r image.Rectangle, radius float64) {
	fitted := coverFit(photo, r.Dx(), r.Dy())
	if mask := photoMask(r.Dx(), r.Dy(), radius); mask != nil {
		draw.DrawMask(canvas, r, fitted, image.Point{}, mask, image.Point{}, draw.Over)
		return
	}
	draw.Draw(canvas, r, fitted, image.Point{}, draw.Over)
}
