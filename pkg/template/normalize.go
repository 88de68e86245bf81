// normalize.go — One-time migration of legacy template records to the
// canonical schema (2000 canvas, pixel font sizes, origin + size zones).
package template

import (
	"math"

	"github.com/xob0t/GoPoster/pkg/geometry"
)

// NormalizeOptions supplies what a legacy record cannot say about itself.
type NormalizeOptions struct {
	// LayoutStyle is used when the record does not declare one. Legacy
	// records never did, so migrating them requires the caller to choose.
	LayoutStyle LayoutStyle
}

// Normalize returns a canonical copy of t. Schema v1 (1080 canvas, fractional
// font sizes) and v2 (1080 canvas, pixel font sizes) are rescaled to 2000;
// four-corner text zone coordinates are folded into X/Y/Width/Height. The
// schema version must be declared explicitly; it is never inferred from the
// numbers.
func Normalize(t Template, opts NormalizeOptions) (Template, error) {
	out := t.Clone()

	canonical, err := geometry.CanonicalSize(t.SchemaVersion)
	if err != nil {
		return Template{}, &InvalidTemplateConfigError{TemplateID: t.ID, Reason: "cannot normalize", Err: err}
	}
	k := float64(geometry.Canonical) / float64(canonical)

	if out.LayoutConfig.LayoutStyle == "" {
		out.LayoutConfig.LayoutStyle = opts.LayoutStyle
	}
	if out.LayoutConfig.LayoutStyle == "" {
		return Template{}, invalid(t.ID, "layout", "layout style is not declared and none was supplied")
	}

	for i := range out.LayoutConfig.PhotoZones {
		p := &out.LayoutConfig.PhotoZones[i]
		p.X, p.Y = round2(p.X*k), round2(p.Y*k)
		p.Width, p.Height = round2(p.Width*k), round2(p.Height*k)
		p.BorderRadius = round2(p.BorderRadius * k)
	}

	for i := range out.LayoutConfig.TextZones {
		z := &out.LayoutConfig.TextZones[i]
		if z.Coordinates != nil {
			r, err := geometry.FromCorners(*z.Coordinates)
			if err != nil {
				return Template{}, &InvalidTemplateConfigError{TemplateID: t.ID, Zone: string(z.Type), Reason: "bad coordinates", Err: err}
			}
			z.X, z.Y, z.Width, z.Height = r.X, r.Y, r.Width, r.Height
			z.Coordinates = nil
		}
		if t.SchemaVersion == geometry.SchemaLegacyFraction {
			z.FontSize *= float64(canonical)
		}
		z.X, z.Y = round2(z.X*k), round2(z.Y*k)
		z.Width, z.Height = round2(z.Width*k), round2(z.Height*k)
		z.FontSize = round2(z.FontSize * k)
		if z.TextAlign == "" {
			z.TextAlign = AlignLeft
		}
		if z.FontWeight == "" {
			z.FontWeight = "normal"
		}
	}

	out.SchemaVersion = geometry.SchemaCanonical
	return out, nil
}

// round2 keeps migrated values readable in the stored JSON.
func round2(v float64) float64 { return math.Round(v*100) / 100 }
