// validator.go — Validate template records before they reach the renderer.
package template

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/xob0t/GoPoster/pkg/generator"
	"github.com/xob0t/GoPoster/pkg/geometry"
)

//go:embed template.schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// ValidateJSON checks raw template JSON against the embedded JSON schema. It
// catches structural problems (wrong types, unknown zone types) before the
// record is decoded.
func ValidateJSON(data []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &InvalidTemplateConfigError{Reason: "malformed template JSON", Err: err}
	}
	if result.Valid() {
		return nil
	}

	var msgs []string
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	sort.Strings(msgs)
	return &InvalidTemplateConfigError{
		TemplateID: idFromSchemaErrors(data),
		Reason:     "schema violation: " + strings.Join(msgs, "; "),
	}
}

// Validate checks a normalized (canonical schema) template for everything the
// layout calculator and compositor rely on.
func Validate(t *Template) error {
	if t.ID == "" {
		return invalid("", "", "missing id")
	}
	if t.SchemaVersion != geometry.SchemaCanonical {
		return invalid(t.ID, "", "schema version %d is not canonical, normalize it first", t.SchemaVersion)
	}
	if t.ImageURLs.Full == "" {
		return invalid(t.ID, "", "missing full-resolution image URL")
	}

	canvas := float64(geometry.Canonical)
	style := t.LayoutConfig.LayoutStyle
	if !style.Valid() {
		return invalid(t.ID, "layout", "unknown layout style %q", style)
	}

	photo, hasPhoto := t.PhotoZone()
	if style.NeedsPhoto() && !hasPhoto {
		return invalid(t.ID, "photo", "layout style %s requires a photo zone", style)
	}
	if hasPhoto {
		if err := checkRect(t.ID, "photo", photo.Rect(), canvas); err != nil {
			return err
		}
		if photo.BorderRadius < 0 {
			return invalid(t.ID, "photo", "negative border radius %.1f", photo.BorderRadius)
		}
	}

	for _, kind := range []ZoneType{ZoneName, ZoneTitle} {
		z, ok := t.TextZone(kind)
		if !ok {
			return invalid(t.ID, string(kind), "missing required text zone")
		}
		if err := checkTextZone(t.ID, z, canvas); err != nil {
			return err
		}
	}
	return nil
}

func checkTextZone(id string, z TextZone, canvas float64) error {
	zone := string(z.Type)
	if z.Coordinates != nil {
		return invalid(id, zone, "four-corner coordinates must be normalized to x/y/width/height")
	}
	if err := checkRect(id, zone, z.Rect(), canvas); err != nil {
		return err
	}
	if z.FontSize <= 0 {
		return invalid(id, zone, "font size must be positive, got %.2f", z.FontSize)
	}
	if z.FontSize < 1 {
		return invalid(id, zone, "font size %.3f looks like a fraction; canonical templates store pixels", z.FontSize)
	}
	switch z.TextAlign {
	case "", AlignLeft, AlignCenter, AlignRight:
	default:
		return invalid(id, zone, "unsupported text align %q", z.TextAlign)
	}
	switch z.TextTransform {
	case "", "none", TransformUppercase:
	default:
		return invalid(id, zone, "unsupported text transform %q", z.TextTransform)
	}
	if _, err := generator.ParseColor(z.Color); err != nil {
		return &InvalidTemplateConfigError{TemplateID: id, Zone: zone, Reason: "bad color", Err: err}
	}
	return nil
}

func checkRect(id, zone string, r geometry.Rect, canvas float64) error {
	if r.Width <= 0 || r.Height <= 0 {
		return invalid(id, zone, "non-positive size %.1fx%.1f", r.Width, r.Height)
	}
	if r.X < 0 || r.Y < 0 || r.X+r.Width > canvas || r.Y+r.Height > canvas {
		return invalid(id, zone, "rectangle (%.1f,%.1f %.1fx%.1f) outside the %.0f canvas",
			r.X, r.Y, r.Width, r.Height, canvas)
	}
	return nil
}

// Describe returns a human-readable summary of a template's zones.
func Describe(t *Template) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Template: %s (%s) [%s]\n", t.Name, t.ID, t.Category)
	canonical, err := t.CanonicalSize()
	if err != nil {
		fmt.Fprintf(&b, "Schema: %d (unknown)\n", t.SchemaVersion)
	} else {
		fmt.Fprintf(&b, "Schema: v%d, canonical %dx%d\n", t.SchemaVersion, canonical, canonical)
	}
	fmt.Fprintf(&b, "Layout style: %s\n", t.LayoutConfig.LayoutStyle)

	for i, p := range t.LayoutConfig.PhotoZones {
		shape := "rect"
		switch {
		case p.Circular():
			shape = "circle"
		case p.BorderRadius > 0:
			shape = fmt.Sprintf("rounded r=%.0f", p.BorderRadius)
		}
		ignored := ""
		if i > 0 {
			ignored = " (ignored)"
		}
		fmt.Fprintf(&b, "  [photo] x=%.0f y=%.0f %.0fx%.0f %s%s\n", p.X, p.Y, p.Width, p.Height, shape, ignored)
	}
	for _, z := range t.LayoutConfig.TextZones {
		fmt.Fprintf(&b, "  [%s] x=%.0f y=%.0f %.0fx%.0f font=%s %s %.1fpx color=%s align=%s\n",
			z.Type, z.X, z.Y, z.Width, z.Height, z.FontFamily, z.FontWeight, z.FontSize, z.Color, z.TextAlign)
	}
	return b.String()
}

// idFromSchemaErrors pulls the id out of a document that failed the schema so
// the error can still name the record.
func idFromSchemaErrors(data []byte) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ""
	}
	return probe.ID
}
