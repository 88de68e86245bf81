// measure.go — Text width measurement backends.
package layout

import (
	"unicode"

	"golang.org/x/image/font"

	"github.com/xob0t/GoPoster/pkg/fonts"
	"github.com/xob0t/GoPoster/pkg/logging"
)

// Font is what a measurer needs to know about the text style.
type Font struct {
	Family string
	Weight string
	SizePx float64
}

// Measurer returns the rendered width of text in pixels. Implementations are
// pure: the same inputs always give the same width.
type Measurer interface {
	Measure(text string, f Font) float64
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(text string, f Font) float64

// Measure calls fn.
func (fn MeasureFunc) Measure(text string, f Font) float64 { return fn(text, f) }

// ── Exact backend ──

type faceKey struct {
	family string
	weight string
	size   float64
}

// FaceSource builds font faces. *fonts.Manager is the production source.
type FaceSource interface {
	Face(family, weight string, sizePx float64) (font.Face, error)
}

// FaceMeasurer measures with real glyph advances from a FaceSource. Faces are
// cached per instance, so create one per render; it is not safe for
// concurrent use.
type FaceMeasurer struct {
	fonts    FaceSource
	faces    map[faceKey]font.Face
	fallback EstimateMeasurer
}

// NewFaceMeasurer creates an exact measurer over src.
func NewFaceMeasurer(src FaceSource) *FaceMeasurer {
	return &FaceMeasurer{fonts: src, faces: make(map[faceKey]font.Face)}
}

// Measure returns the advance width of text. If no face can be built the
// estimate backend answers instead, so layout never fails on a font problem.
func (fm *FaceMeasurer) Measure(text string, f Font) float64 {
	face, err := fm.Face(f)
	if err != nil {
		logging.WithComponent("layout").Debug().Err(err).
			Str("family", f.Family).Float64("size", f.SizePx).
			Msg("measuring with estimate")
		return fm.fallback.Measure(text, f)
	}
	return float64(font.MeasureString(face, text)) / 64
}

// Face returns the cached face for f, creating it on first use.
func (fm *FaceMeasurer) Face(f Font) (font.Face, error) {
	k := faceKey{f.Family, f.Weight, f.SizePx}
	if face, ok := fm.faces[k]; ok {
		return face, nil
	}
	face, err := fm.fonts.Face(f.Family, f.Weight, f.SizePx)
	if err != nil {
		return nil, err
	}
	fm.faces[k] = face
	return face, nil
}

// Close releases every cached face.
func (fm *FaceMeasurer) Close() {
	for k, face := range fm.faces {
		face.Close()
		delete(fm.faces, k)
	}
}

// ── Cheap backend ──

// EstimateMeasurer approximates widths from per-rune advance ratios of a
// sans-serif face. It needs no font data and is linear in the font size, so
// layouts at different sizes keep exactly the same line breaks.
type EstimateMeasurer struct{}

// Measure returns the estimated width of text.
func (EstimateMeasurer) Measure(text string, f Font) float64 {
	em := 0.0
	for _, r := range text {
		em += runeAdvance(r)
	}
	if fonts.IsBold(f.Weight) {
		em *= 1.06
	}
	return em * f.SizePx
}

// runeAdvance is the advance of r in ems.
func runeAdvance(r rune) float64 {
	switch r {
	case ' ':
		return 0.28
	case 'i', 'j', 'l', '.', ',', '\'', '!', '|', ':', ';':
		return 0.26
	case 'f', 't', 'r', 'I', '-', '(', ')':
		return 0.36
	case 'm', 'w', 'M', 'W':
		return 0.86
	}
	switch {
	case unicode.IsUpper(r):
		return 0.68
	case unicode.IsDigit(r):
		return 0.56
	case unicode.IsLower(r):
		return 0.53
	case r < 0x80:
		return 0.5
	}
	return 0.6
}
