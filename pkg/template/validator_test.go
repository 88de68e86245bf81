package template

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateExample(t *testing.T) {
	tpl := ExampleTemplate()
	if err := Validate(&tpl); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Template)
		zone   string
	}{
		{"missing id", func(t *Template) { t.ID = "" }, ""},
		{"legacy schema", func(t *Template) { t.SchemaVersion = 2 }, ""},
		{"missing full image", func(t *Template) { t.ImageURLs.Full = "" }, ""},
		{"unknown style", func(t *Template) { t.LayoutConfig.LayoutStyle = "diagonal" }, "layout"},
		{"photo style without photo", func(t *Template) { t.LayoutConfig.PhotoZones = nil }, "photo"},
		{"photo outside canvas", func(t *Template) { t.LayoutConfig.PhotoZones[0].X = 1900 }, "photo"},
		{"missing title", func(t *Template) { t.LayoutConfig.TextZones = t.LayoutConfig.TextZones[:1] }, "title"},
		{"zero-width name", func(t *Template) { t.LayoutConfig.TextZones[0].Width = 0 }, "name"},
		{"fractional font", func(t *Template) { t.LayoutConfig.TextZones[0].FontSize = 0.05 }, "name"},
		{"bad align", func(t *Template) { t.LayoutConfig.TextZones[1].TextAlign = "justify" }, "title"},
		{"bad color", func(t *Template) { t.LayoutConfig.TextZones[1].Color = "tomato" }, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := ExampleTemplate()
			tt.mutate(&tpl)
			err := Validate(&tpl)
			var cfgErr *InvalidTemplateConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err = %v, want InvalidTemplateConfigError", err)
			}
			if cfgErr.Zone != tt.zone {
				t.Errorf("zone = %q, want %q", cfgErr.Zone, tt.zone)
			}
		})
	}
}

func TestZoneStyleDoesNotNeedPhoto(t *testing.T) {
	tpl := ExampleTemplate()
	tpl.LayoutConfig.LayoutStyle = StyleZone
	tpl.LayoutConfig.PhotoZones = nil
	if err := Validate(&tpl); err != nil {
		t.Fatal(err)
	}
}

func TestValidateJSON(t *testing.T) {
	good, _ := GetExampleJSON()
	if err := ValidateJSON([]byte(good)); err != nil {
		t.Fatalf("example rejected: %v", err)
	}

	bad := strings.Replace(good, `"type": "title"`, `"type": "subtitle"`, 1)
	err := ValidateJSON([]byte(bad))
	var cfgErr *InvalidTemplateConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want InvalidTemplateConfigError", err)
	}
	if cfgErr.TemplateID != "classic-endorsement" {
		t.Errorf("id = %q", cfgErr.TemplateID)
	}

	if err := ValidateJSON([]byte(`{not json`)); err == nil {
		t.Fatal("malformed JSON accepted")
	}
}

func TestDescribe(t *testing.T) {
	tpl := ExampleTemplate()
	out := Describe(&tpl)
	for _, want := range []string{"Classic Endorsement", "photo-center", "circle", "[name]", "[title]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Describe output missing %q:\n%s", want, out)
		}
	}
}
