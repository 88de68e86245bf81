package template

import (
	"errors"
	"math"
	"testing"

	"github.com/xob0t/GoPoster/pkg/geometry"
)

func legacyTemplate(schema int, fontSize float64) Template {
	return Template{
		ID:            "legacy",
		SchemaVersion: schema,
		ImageURLs:     ImageURLs{Full: "bg.png"},
		LayoutConfig: LayoutConfig{
			PhotoZones: []PhotoZone{{X: 54, Y: 540, Width: 216, Height: 216, BorderRadius: 108}},
			TextZones: []TextZone{
				{
					Type: ZoneName,
					Coordinates: &geometry.Corners{
						TopLeft:     geometry.Point{X: 100, Y: 200},
						TopRight:    geometry.Point{X: 600, Y: 200},
						BottomRight: geometry.Point{X: 600, Y: 300},
						BottomLeft:  geometry.Point{X: 100, Y: 300},
					},
					FontSize: fontSize,
					Color:    "#fff",
				},
				{Type: ZoneTitle, X: 100, Y: 320, Width: 500, Height: 60, FontSize: fontSize, Color: "#fff"},
			},
		},
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 0.01 }

func TestNormalizeLegacyFraction(t *testing.T) {
	got, err := Normalize(legacyTemplate(geometry.SchemaLegacyFraction, 0.05), NormalizeOptions{LayoutStyle: StylePhotoCenter})
	if err != nil {
		t.Fatal(err)
	}
	if got.SchemaVersion != geometry.SchemaCanonical {
		t.Fatalf("schema = %d", got.SchemaVersion)
	}
	name, _ := got.TextZone(ZoneName)
	if name.Coordinates != nil {
		t.Fatal("coordinates were not folded")
	}
	// 0.05 of 1080 is 54px, which is 100px on the 2000 canvas.
	if !near(name.FontSize, 100) {
		t.Errorf("font size = %v, want 100", name.FontSize)
	}
	if !near(name.X, 185.19) || !near(name.Y, 370.37) || !near(name.Width, 925.93) || !near(name.Height, 185.19) {
		t.Errorf("rect = %+v", name.Rect())
	}
	if name.TextAlign != AlignLeft || name.FontWeight != "normal" {
		t.Errorf("defaults not applied: align=%q weight=%q", name.TextAlign, name.FontWeight)
	}
	photo, _ := got.PhotoZone()
	if !near(photo.X, 100) || !near(photo.Width, 400) || !near(photo.BorderRadius, 200) {
		t.Errorf("photo = %+v", photo)
	}
	if !photo.Circular() {
		t.Error("circular photo lost its shape")
	}
	if err := Validate(&got); err != nil {
		t.Fatalf("normalized template fails validation: %v", err)
	}
}

func TestNormalizeLegacyPixels(t *testing.T) {
	got, err := Normalize(legacyTemplate(geometry.SchemaLegacyPixels, 54), NormalizeOptions{LayoutStyle: StyleZone})
	if err != nil {
		t.Fatal(err)
	}
	title, _ := got.TextZone(ZoneTitle)
	if !near(title.FontSize, 100) {
		t.Errorf("font size = %v, want 100", title.FontSize)
	}
	if got.LayoutConfig.LayoutStyle != StyleZone {
		t.Errorf("style = %q", got.LayoutConfig.LayoutStyle)
	}
}

func TestNormalizeCanonicalIsIdentity(t *testing.T) {
	in := ExampleTemplate()
	got, err := Normalize(in, NormalizeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	a, _ := in.TextZone(ZoneName)
	b, _ := got.TextZone(ZoneName)
	if a.Rect() != b.Rect() || a.FontSize != b.FontSize {
		t.Fatalf("canonical zone changed: %+v -> %+v", a, b)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := legacyTemplate(geometry.SchemaLegacyPixels, 54)
	if _, err := Normalize(in, NormalizeOptions{LayoutStyle: StyleZone}); err != nil {
		t.Fatal(err)
	}
	if in.LayoutConfig.TextZones[0].Coordinates == nil || in.LayoutConfig.TextZones[1].FontSize != 54 {
		t.Fatal("input template was modified")
	}
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name string
		tpl  Template
		opts NormalizeOptions
	}{
		{"unknown schema", legacyTemplate(7, 54), NormalizeOptions{LayoutStyle: StyleZone}},
		{"no layout style", legacyTemplate(geometry.SchemaLegacyPixels, 54), NormalizeOptions{}},
		{"skewed corners", func() Template {
			tpl := legacyTemplate(geometry.SchemaLegacyPixels, 54)
			tpl.LayoutConfig.TextZones[0].Coordinates.TopRight.Y = 260
			return tpl
		}(), NormalizeOptions{LayoutStyle: StyleZone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.tpl, tt.opts)
			var cfgErr *InvalidTemplateConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err = %v, want InvalidTemplateConfigError", err)
			}
		})
	}
}
