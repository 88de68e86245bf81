package geometry

import (
	"math"
	"testing"
)

func TestScale(t *testing.T) {
	tests := []struct {
		v         float64
		target    int
		canonical int
		want      int
	}{
		{88, 1080, 2000, 48},
		{1607, 1080, 2000, 868},
		{368, 540, 2000, 99},
		{2000, 2000, 2000, 2000},
		{1080, 2000, 1080, 2000},
		{0, 1080, 2000, 0},
	}
	for _, tt := range tests {
		if got := Scale(tt.v, tt.target, tt.canonical); got != tt.want {
			t.Errorf("Scale(%v, %d, %d) = %d, want %d", tt.v, tt.target, tt.canonical, got, tt.want)
		}
	}
}

func TestScaleIdempotence(t *testing.T) {
	sizes := []int{300, 540, 1080, 1600}
	for v := 0.0; v <= 2000; v += 37 {
		for _, s1 := range sizes {
			for _, s2 := range sizes {
				twice := Scale(float64(Scale(v, s1, Canonical)), s2, s1)
				once := Scale(v, s2, Canonical)
				// Two roundings can drift by at most half a pixel each, scaled.
				tol := 1 + int(math.Ceil(0.5*float64(s2)/float64(s1)))
				if d := twice - once; d > tol || d < -tol {
					t.Fatalf("v=%v s1=%d s2=%d: twice=%d once=%d", v, s1, s2, twice, once)
				}
			}
		}
	}
}

func TestScalerRectUsesOneFactor(t *testing.T) {
	s := NewScaler(1080, Canonical)
	got := s.Rect(Rect{X: 100, Y: 200, Width: 400, Height: 400})
	if got.Width != got.Height {
		t.Fatalf("square zone scaled to %dx%d", got.Width, got.Height)
	}
	if got.X != 54 || got.Y != 108 || got.Width != 216 {
		t.Fatalf("unexpected rect %+v", got)
	}
	if s.Factor() != 0.54 {
		t.Fatalf("factor = %v", s.Factor())
	}
}

func TestCanonicalSize(t *testing.T) {
	for v, want := range map[int]int{1: 1080, 2: 1080, 3: 2000} {
		got, err := CanonicalSize(v)
		if err != nil || got != want {
			t.Errorf("CanonicalSize(%d) = %d, %v", v, got, err)
		}
	}
	if _, err := CanonicalSize(0); err == nil {
		t.Error("expected error for missing schema version")
	}
}

func TestCornersRoundTrip(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 300, Height: 40}
	back, err := FromCorners(r.Corners())
	if err != nil {
		t.Fatal(err)
	}
	if back != r {
		t.Fatalf("got %+v, want %+v", back, r)
	}

	skew := r.Corners()
	skew.BottomLeft.X += 25
	if _, err := FromCorners(skew); err == nil {
		t.Fatal("expected skewed corners to be rejected")
	}
}

// Each size rounds on its own grid, so a final origin can sit one pixel off
// twice the preview origin, never more.
func TestScaleDoubleSizeWithinOnePixel(t *testing.T) {
	if got := Scale(1, 1080, Canonical) - 2*Scale(1, 540, Canonical); got != 1 {
		t.Fatalf("v=1: drift = %d, want 1", got)
	}
	for v := 0.0; v <= 2000; v += 0.25 {
		if d := Scale(v, 1080, Canonical) - 2*Scale(v, 540, Canonical); d < -1 || d > 1 {
			t.Fatalf("v=%v: 1080 grid %d vs 540 grid %d", v, Scale(v, 1080, Canonical), Scale(v, 540, Canonical))
		}
	}
}
