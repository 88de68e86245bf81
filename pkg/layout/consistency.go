// consistency.go — Check that two layouts of one poster at different sizes
// agree once scaled.
package layout

import (
	"fmt"
	"math"
	"strings"
)

// Report lists the differences found by Compare.
type Report struct {
	Diffs []string `json:"diffs"`
}

// Consistent reports whether no differences were found.
func (r Report) Consistent() bool { return len(r.Diffs) == 0 }

func (r Report) String() string {
	if r.Consistent() {
		return "consistent"
	}
	return strings.Join(r.Diffs, "\n")
}

func (r *Report) addf(format string, args ...any) {
	r.Diffs = append(r.Diffs, fmt.Sprintf(format, args...))
}

// Compare checks layout b (computed at sizeB) against layout a (at sizeA).
// Zones must match one to one with identical lines; origins and widths may
// differ from the scaled value by tolPx pixels of the b grid on top of the
// rounding of both grids, font sizes and line heights by at most 0.1%.
func Compare(a []ZoneLayoutResult, sizeA int, b []ZoneLayoutResult, sizeB int, tolPx int) Report {
	var rep Report
	if sizeA <= 0 || sizeB <= 0 {
		rep.addf("invalid sizes %d and %d", sizeA, sizeB)
		return rep
	}
	if len(a) != len(b) {
		rep.addf("zone count %d vs %d", len(a), len(b))
		return rep
	}

	k := float64(sizeB) / float64(sizeA)
	for i := range a {
		za, zb := a[i], b[i]
		z := string(za.ZoneType)
		if za.ZoneType != zb.ZoneType {
			rep.addf("zone %d: type %s vs %s", i, za.ZoneType, zb.ZoneType)
			continue
		}
		if len(za.Lines) != len(zb.Lines) {
			rep.addf("%s: %d lines vs %d lines", z, len(za.Lines), len(zb.Lines))
		} else {
			for j := range za.Lines {
				if za.Lines[j] != zb.Lines[j] {
					rep.addf("%s: line %d %q vs %q", z, j, za.Lines[j], zb.Lines[j])
				}
			}
		}
		checkPx(&rep, z, "originX", za.OriginX, zb.OriginX, k, tolPx)
		checkPx(&rep, z, "originY", za.OriginY, zb.OriginY, k, tolPx)
		checkPx(&rep, z, "width", za.WidthPx, zb.WidthPx, k, tolPx)
		checkRel(&rep, z, "font size", za.FontSizePx, zb.FontSizePx, k)
		checkRel(&rep, z, "line height", za.LineHeightPx, zb.LineHeightPx, k)
		if za.Color != zb.Color || za.FontWeight != zb.FontWeight || za.TextAlign != zb.TextAlign {
			rep.addf("%s: style differs", z)
		}
	}
	return rep
}

func checkPx(rep *Report, zone, field string, a, b int, k float64, tol int) {
	want := float64(a) * k
	if math.Abs(float64(b)-want) > float64(tol)+(k+1)/2 {
		rep.addf("%s: %s %d, want %.1f±%d", zone, field, b, want, tol)
	}
}

func checkRel(rep *Report, zone, field string, a, b, k float64) {
	want := a * k
	if want == 0 {
		if b != 0 {
			rep.addf("%s: %s %.3f, want 0", zone, field, b)
		}
		return
	}
	if math.Abs(b-want)/want > 0.001 {
		rep.addf("%s: %s %.3f, want %.3f", zone, field, b, want)
	}
}
