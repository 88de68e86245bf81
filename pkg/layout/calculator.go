// Package layout turns a template's zones and the user's text into concrete
// per-zone drawing instructions at a target resolution. The same Calculator
// serves the browser preview and the final server render; only the Measurer
// and the target size differ.
package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/xob0t/GoPoster/pkg/geometry"
	"github.com/xob0t/GoPoster/pkg/template"
)

// Content is the user-supplied part of a poster.
type Content struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// ZoneLayoutResult is everything needed to draw one text zone.
type ZoneLayoutResult struct {
	ZoneType     template.ZoneType `json:"zoneType"`
	OriginX      int               `json:"originX"`
	OriginY      int               `json:"originY"`
	WidthPx      int               `json:"widthPx"`
	FontSizePx   float64           `json:"fontSizePx"`
	Lines        []string          `json:"lines"`
	LineHeightPx float64           `json:"lineHeightPx"`
	Color        string            `json:"color"`
	FontFamily   string            `json:"fontFamily"`
	FontWeight   string            `json:"fontWeight"`
	TextAlign    string            `json:"textAlign"`
}

// HeightPx is the height of the zone's line block.
func (r ZoneLayoutResult) HeightPx() float64 {
	return float64(len(r.Lines)) * r.LineHeightPx
}

// Font returns the measuring font of the zone.
func (r ZoneLayoutResult) Font() Font {
	return Font{Family: r.FontFamily, Weight: r.FontWeight, SizePx: r.FontSizePx}
}

// DebugOverrides adjusts one render without touching the stored template.
// Zones is keyed by "photo", "name" or "title" in canonical units.
type DebugOverrides struct {
	Zones  map[string]template.ZoneOverride `json:"zones,omitempty" yaml:"zones,omitempty"`
	Tuning *Tuning                          `json:"tuning,omitempty" yaml:"tuning,omitempty"`
}

// Calculator computes zone layouts. It holds no per-render state and is safe
// for concurrent use if its Measurer is.
type Calculator struct {
	Measurer Measurer
	Tuning   Tuning
}

// NewCalculator creates a calculator with the default tuning.
func NewCalculator(m Measurer) *Calculator {
	return &Calculator{Measurer: m, Tuning: DefaultTuning()}
}

// Layout computes the name and title zones of tpl at a targetSize square.
// A field with empty content is left out of the result.
func (c *Calculator) Layout(tpl template.Template, content Content, targetSize int) ([]ZoneLayoutResult, error) {
	return c.LayoutWith(tpl, content, targetSize, nil)
}

// LayoutWith is Layout with explicit debug overrides applied to a copy of the
// template and tuning.
func (c *Calculator) LayoutWith(tpl template.Template, content Content, targetSize int, o *DebugOverrides) ([]ZoneLayoutResult, error) {
	tuning := c.Tuning
	if o != nil {
		tpl = template.ApplyOverrides(tpl, o.Zones)
		if o.Tuning != nil {
			tuning = *o.Tuning
		}
	}
	if err := tuning.Validate(); err != nil {
		return nil, fmt.Errorf("layout tuning: %w", err)
	}
	if targetSize <= 0 {
		return nil, fmt.Errorf("invalid target size %d", targetSize)
	}
	if err := template.Validate(&tpl); err != nil {
		return nil, err
	}

	scaler := geometry.NewScaler(targetSize, geometry.Canonical)
	nameZone, _ := tpl.TextZone(template.ZoneName)
	titleZone, _ := tpl.TextZone(template.ZoneTitle)

	var name, title *ZoneLayoutResult
	if text := transform(content.Name, nameZone); text != "" {
		name = c.zone(nameZone, text, scaler, tuning.NameLineHeight, func(base, maxWidth float64, width SizedWidthFunc) float64 {
			return OptimizeNameSize(text, base, maxWidth, width, tuning)
		})
	}
	if text := transform(content.Title, titleZone); text != "" {
		title = c.zone(titleZone, text, scaler, tuning.TitleLineHeight, nil)
	}
	if name == nil && title == nil {
		return []ZoneLayoutResult{}, nil
	}

	spacing := 0.0
	blockHeight := 0.0
	if name != nil {
		blockHeight += name.HeightPx()
	}
	if title != nil {
		blockHeight += title.HeightPx()
	}
	if name != nil && title != nil {
		spacing = tuning.Spacing(len(name.Lines)) * float64(targetSize)
		blockHeight += spacing
	}

	top := blockTop(tpl, nameZone, titleZone, name != nil, blockHeight, scaler, tuning)

	var out []ZoneLayoutResult
	if name != nil {
		name.OriginY = int(math.Round(top))
		out = append(out, *name)
		top += name.HeightPx() + spacing
	}
	if title != nil {
		title.OriginY = int(math.Round(top))
		out = append(out, *title)
	}
	return out, nil
}

type sizeFunc func(base, maxWidth float64, width SizedWidthFunc) float64

// zone sizes and wraps one field. OriginY is filled in by the caller once the
// whole block is known.
func (c *Calculator) zone(z template.TextZone, text string, s geometry.Scaler, lineHeight float64, optimize sizeFunc) *ZoneLayoutResult {
	family, weight := z.FontFamily, z.FontWeight
	width := func(t string, size float64) float64 {
		return c.Measurer.Measure(t, Font{Family: family, Weight: weight, SizePx: size})
	}

	maxWidth := s.Pxf(z.Width)
	size := s.Pxf(z.FontSize)
	if optimize != nil {
		size = optimize(size, maxWidth, width)
	}
	lines := Wrap(text, maxWidth, func(t string) float64 { return width(t, size) })

	return &ZoneLayoutResult{
		ZoneType:     z.Type,
		OriginX:      s.Px(z.X),
		WidthPx:      s.Px(z.Width),
		FontSizePx:   size,
		Lines:        lines,
		LineHeightPx: size * lineHeight,
		Color:        z.Color,
		FontFamily:   family,
		FontWeight:   weight,
		TextAlign:    z.TextAlign,
	}
}

// blockTop places the stacked name+title block according to the template's
// layout style. Positions stay unrounded until the origins are assigned.
func blockTop(tpl template.Template, nameZone, titleZone template.TextZone, hasName bool, height float64, s geometry.Scaler, t Tuning) float64 {
	photo, hasPhoto := tpl.PhotoZone()
	switch tpl.LayoutConfig.LayoutStyle {
	case template.StylePhotoCenter:
		if hasPhoto {
			return s.Pxf(photo.Rect().CenterY()) - height/2
		}
	case template.StylePhotoAbove:
		if hasPhoto {
			return s.Pxf(photo.Y) - t.SpacingTight*float64(s.Target) - height
		}
	}
	if hasName {
		return s.Pxf(nameZone.Y)
	}
	return s.Pxf(titleZone.Y)
}

func transform(text string, z template.TextZone) string {
	text = strings.TrimSpace(text)
	if z.TextTransform == template.TransformUppercase {
		text = strings.ToUpper(text)
	}
	return text
}
