// merge.go — Overlay explicit zone overrides onto a template copy.
package template

// ZoneOverride replaces individual geometry values of one zone, in canonical
// units. Nil fields keep the template's value.
type ZoneOverride struct {
	X            *float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y            *float64 `json:"y,omitempty" yaml:"y,omitempty"`
	Width        *float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height       *float64 `json:"height,omitempty" yaml:"height,omitempty"`
	FontSize     *float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	BorderRadius *float64 `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`
}

// Override zone keys.
const (
	OverridePhoto = "photo"
	OverrideName  = string(ZoneName)
	OverrideTitle = string(ZoneTitle)
)

// ApplyOverrides returns a copy of t with the overrides applied. The input is
// never modified, so a template shared between renders stays read-only.
func ApplyOverrides(t Template, zones map[string]ZoneOverride) Template {
	out := t.Clone()
	if len(zones) == 0 {
		return out
	}

	if o, ok := zones[OverridePhoto]; ok && len(out.LayoutConfig.PhotoZones) > 0 {
		p := &out.LayoutConfig.PhotoZones[0]
		set(&p.X, o.X)
		set(&p.Y, o.Y)
		set(&p.Width, o.Width)
		set(&p.Height, o.Height)
		set(&p.BorderRadius, o.BorderRadius)
	}

	seen := make(map[ZoneType]bool)
	for i := range out.LayoutConfig.TextZones {
		z := &out.LayoutConfig.TextZones[i]
		if seen[z.Type] {
			continue // only the first zone of a type is rendered
		}
		seen[z.Type] = true
		o, ok := zones[string(z.Type)]
		if !ok {
			continue
		}
		set(&z.X, o.X)
		set(&z.Y, o.Y)
		set(&z.Width, o.Width)
		set(&z.Height, o.Height)
		set(&z.FontSize, o.FontSize)
	}
	return out
}

func set(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
