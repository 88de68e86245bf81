package layout

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/xob0t/GoPoster/pkg/fonts"
	"github.com/xob0t/GoPoster/pkg/template"
)

func newCalc() *Calculator { return NewCalculator(EstimateMeasurer{}) }

func newFaceMeasurer(t *testing.T) *FaceMeasurer {
	t.Helper()
	m, err := fonts.NewManager()
	if err != nil {
		t.Fatal(err)
	}
	return NewFaceMeasurer(m)
}

func within(got, want, tol float64) bool { return math.Abs(got-want) <= tol }

func narrowTemplate() template.Template {
	tpl := template.ExampleTemplate()
	for i := range tpl.LayoutConfig.TextZones {
		tpl.LayoutConfig.TextZones[i].Width = 600
	}
	return tpl
}

func TestLayoutShortName(t *testing.T) {
	tpl := template.ExampleTemplate()
	res, err := newCalc().Layout(tpl, Content{Name: "Jo", Title: "Mayor"}, 1080)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 2 {
		t.Fatalf("got %d zones", len(res))
	}
	name, title := res[0], res[1]
	if name.ZoneType != template.ZoneName || title.ZoneType != template.ZoneTitle {
		t.Fatalf("zone order %s, %s", name.ZoneType, title.ZoneType)
	}
	if len(name.Lines) != 1 || name.Lines[0] != "JO" {
		t.Errorf("name lines = %q", name.Lines)
	}
	if len(title.Lines) != 1 || title.Lines[0] != "Mayor" {
		t.Errorf("title lines = %q", title.Lines)
	}
	base := 72 * 1080.0 / 2000
	if name.FontSizePx <= base {
		t.Errorf("name size %.2f did not grow above base %.2f", name.FontSizePx, base)
	}
	if name.OriginX != 270 || name.WidthPx != 756 {
		t.Errorf("name origin x=%d width=%d", name.OriginX, name.WidthPx)
	}
	if name.LineHeightPx != name.FontSizePx*1.25 || title.LineHeightPx != title.FontSizePx*1.3 {
		t.Errorf("line heights %.2f / %.2f", name.LineHeightPx, title.LineHeightPx)
	}

	// Tight spacing for a one-line name, block centred on the photo.
	gap := float64(title.OriginY) - (float64(name.OriginY) + name.HeightPx())
	if !within(gap, 25, 1) {
		t.Errorf("gap = %.2f, want 25", gap)
	}
	center := float64(name.OriginY) + (float64(title.OriginY)+title.HeightPx()-float64(name.OriginY))/2
	if !within(center, 1744*0.54, 1) {
		t.Errorf("block centre %.2f, want %.2f", center, 1744*0.54)
	}
}

func TestLayoutLongNameNarrowZone(t *testing.T) {
	content := Content{
		Name:  "Alexandria Fitzgerald-Montgomery",
		Title: "Community Organizer and Local Business Owner",
	}
	res, err := newCalc().Layout(narrowTemplate(), content, 1080)
	if err != nil {
		t.Fatal(err)
	}
	name, title := res[0], res[1]
	if n := len(name.Lines); n < 2 || n > 3 {
		t.Fatalf("name lines = %q", name.Lines)
	}
	if name.Lines[0] != "ALEXANDRIA" {
		t.Errorf("first name line = %q", name.Lines[0])
	}
	if len(title.Lines) < 2 {
		t.Errorf("title lines = %q", title.Lines)
	}
	for _, z := range res {
		for _, l := range z.Lines {
			if w := (EstimateMeasurer{}).Measure(l, z.Font()); w > float64(z.WidthPx)+0.5 {
				t.Errorf("%s line %q is %.1fpx in a %dpx zone", z.ZoneType, l, w, z.WidthPx)
			}
		}
	}

	tn := DefaultTuning()
	want := tn.Spacing(len(name.Lines)) * 1080
	gap := float64(title.OriginY) - (float64(name.OriginY) + name.HeightPx())
	if !within(gap, want, 1) {
		t.Errorf("gap = %.2f, want %.2f", gap, want)
	}
	if len(name.Lines) == 3 && !within(gap, 74.63, 1) {
		t.Errorf("three-line name should use the generous tier, gap %.2f", gap)
	}
}

func TestLayoutEmptyTitle(t *testing.T) {
	res, err := newCalc().Layout(template.ExampleTemplate(), Content{Name: "Jordan Avery", Title: "  "}, 1080)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 1 || res[0].ZoneType != template.ZoneName {
		t.Fatalf("got %+v", res)
	}
	center := float64(res[0].OriginY) + res[0].HeightPx()/2
	if !within(center, 1744*0.54, 1) {
		t.Errorf("name-only block centre %.2f", center)
	}
}

func TestLayoutEmptyContent(t *testing.T) {
	res, err := newCalc().Layout(template.ExampleTemplate(), Content{}, 1080)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 0 {
		t.Fatalf("got %+v", res)
	}
}

func TestLayoutScalesBetweenSizes(t *testing.T) {
	tpl := template.ExampleTemplate()
	calc := newCalc()
	for _, c := range []Content{
		{Name: "Jo", Title: "Mayor"},
		{Name: "Jordan Avery", Title: "Chief Technology Officer"},
		{Name: "Ana Maria Lopez Garcia", Title: "Volunteer"},
	} {
		small, err := calc.Layout(tpl, c, 540)
		if err != nil {
			t.Fatal(err)
		}
		large, err := calc.Layout(tpl, c, 1080)
		if err != nil {
			t.Fatal(err)
		}
		if len(small) != len(large) {
			t.Fatalf("%q: zone counts differ", c.Name)
		}
		for i := range small {
			s, l := small[i], large[i]
			if l.FontSizePx != 2*s.FontSizePx {
				t.Errorf("%q %s: font %.4f vs %.4f", c.Name, s.ZoneType, s.FontSizePx, l.FontSizePx)
			}
			if !reflect.DeepEqual(s.Lines, l.Lines) {
				t.Errorf("%q %s: lines %q vs %q", c.Name, s.ZoneType, s.Lines, l.Lines)
			}
			if d := l.OriginX - 2*s.OriginX; d < -1 || d > 1 {
				t.Errorf("%q %s: originX %d vs %d", c.Name, s.ZoneType, s.OriginX, l.OriginX)
			}
			if d := l.OriginY - 2*s.OriginY; d < -1 || d > 1 {
				t.Errorf("%q %s: originY %d vs %d", c.Name, s.ZoneType, s.OriginY, l.OriginY)
			}
		}
		if rep := Compare(small, 540, large, 1080, 0); !rep.Consistent() {
			t.Errorf("%q: %s", c.Name, rep)
		}
	}
}

func TestLayoutDeterministic(t *testing.T) {
	tpl := narrowTemplate()
	c := Content{Name: "Alexandria Fitzgerald-Montgomery", Title: "Community Organizer"}
	first, err := newCalc().Layout(tpl, c, 1080)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, _ := newCalc().Layout(tpl, c, 1080)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestLayoutStyles(t *testing.T) {
	c := Content{Name: "Jo", Title: "Mayor"}

	above := template.ExampleTemplate()
	above.LayoutConfig.LayoutStyle = template.StylePhotoAbove
	res, err := newCalc().Layout(above, c, 1080)
	if err != nil {
		t.Fatal(err)
	}
	bottom := float64(res[1].OriginY) + res[1].HeightPx()
	if want := 1560*0.54 - 25; !within(bottom, want, 1) {
		t.Errorf("photo-above block bottom %.2f, want %.2f", bottom, want)
	}

	zone := template.ExampleTemplate()
	zone.LayoutConfig.LayoutStyle = template.StyleZone
	res, err = newCalc().Layout(zone, c, 1080)
	if err != nil {
		t.Fatal(err)
	}
	if res[0].OriginY != 875 {
		t.Errorf("zone style name y = %d, want 875", res[0].OriginY)
	}

	res, err = newCalc().Layout(zone, Content{Title: "Mayor"}, 1080)
	if err != nil {
		t.Fatal(err)
	}
	if res[0].OriginY != 972 {
		t.Errorf("zone style title-only y = %d, want 972", res[0].OriginY)
	}
}

func TestLayoutOverrides(t *testing.T) {
	tpl := template.ExampleTemplate()
	x := 100.0
	tn := DefaultTuning()
	tn.SpacingTight = 0.01
	o := &DebugOverrides{
		Zones:  map[string]template.ZoneOverride{template.OverrideName: {X: &x}},
		Tuning: &tn,
	}
	res, err := newCalc().LayoutWith(tpl, Content{Name: "Jo", Title: "Mayor"}, 1000, o)
	if err != nil {
		t.Fatal(err)
	}
	if res[0].OriginX != 50 {
		t.Errorf("override x ignored: %d", res[0].OriginX)
	}
	gap := float64(res[1].OriginY) - (float64(res[0].OriginY) + res[0].HeightPx())
	if !within(gap, 10, 1) {
		t.Errorf("override tuning ignored: gap %.2f", gap)
	}
	if name, _ := tpl.TextZone(template.ZoneName); name.X != 500 {
		t.Error("overrides leaked into the template")
	}

	bad := DefaultTuning()
	bad.SpacingMedium = bad.SpacingGenerous
	if _, err := newCalc().LayoutWith(tpl, Content{Name: "Jo"}, 1000, &DebugOverrides{Tuning: &bad}); err == nil {
		t.Fatal("non-increasing tiers accepted")
	}
}

func TestLayoutRejects(t *testing.T) {
	tpl := template.ExampleTemplate()
	if _, err := newCalc().Layout(tpl, Content{Name: "Jo"}, 0); err == nil {
		t.Error("zero target size accepted")
	}

	tpl.LayoutConfig.TextZones = tpl.LayoutConfig.TextZones[:1]
	_, err := newCalc().Layout(tpl, Content{Name: "Jo"}, 1080)
	var cfgErr *template.InvalidTemplateConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Zone != "title" {
		t.Fatalf("err = %v, want InvalidTemplateConfigError for title", err)
	}
}

func TestFaceMeasurerMatchesFontWidths(t *testing.T) {
	fm := newFaceMeasurer(t)
	defer fm.Close()

	narrow := fm.Measure("iiii", Font{Family: "Go", SizePx: 40})
	wide := fm.Measure("WWWW", Font{Family: "Go", SizePx: 40})
	if !(narrow > 0 && wide > narrow) {
		t.Fatalf("iiii=%.1f WWWW=%.1f", narrow, wide)
	}
	double := fm.Measure("WWWW", Font{Family: "Go", SizePx: 80})
	if !within(double, 2*wide, 1) {
		t.Fatalf("width at 2x size %.2f, want ~%.2f", double, 2*wide)
	}
	if got := fm.Measure("WWWW", Font{Family: "Go", SizePx: 0}); got != 0 {
		t.Fatalf("zero size width %.2f", got)
	}
}
