package generator

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#ffffff", color.RGBA{255, 255, 255, 255}, false},
		{"#1a2b3c", color.RGBA{0x1a, 0x2b, 0x3c, 255}, false},
		{"1a2b3c", color.RGBA{0x1a, 0x2b, 0x3c, 255}, false},
		{"#fff", color.RGBA{255, 255, 255, 255}, false},
		{"#f00", color.RGBA{255, 0, 0, 255}, false},
		{"#ffffff00", color.RGBA{0, 0, 0, 0}, false},
		{"#ff000080", color.RGBA{128, 0, 0, 128}, false},
		{"", color.RGBA{}, true},
		{"random", color.RGBA{}, true},
		{"#12345", color.RGBA{}, true},
		{"#gg0000", color.RGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGeneratePNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bg.png")
	if err := Generate(out, Config{Width: 40, Height: 30, Color: "#102030"}); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("bounds = %v", b)
	}
	r, g, b, _ := img.At(5, 5).RGBA()
	if r>>8 != 0x10 || g>>8 != 0x20 || b>>8 != 0x30 {
		t.Fatalf("pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestGenerateToWriterJPEG(t *testing.T) {
	src := NewSolidImage(16, 16, color.RGBA{200, 10, 10, 255})
	var buf bytes.Buffer
	if err := GenerateToWriter(&buf, ".jpg", Config{Image: src, Quality: 80}); err != nil {
		t.Fatal(err)
	}
	img, err := jpeg.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 16, 16) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if err := Generate(filepath.Join(t.TempDir(), "x.avi"), Config{Color: "#000"}); err == nil {
		t.Fatal("expected error for .avi")
	}
	if ContentType(".jpeg") != "image/jpeg" || ContentType("png") != "image/png" {
		t.Fatal("content type mapping")
	}
}
