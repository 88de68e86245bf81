// fonts.go - Font registry keyed by family and weight with embedded fallbacks.
// Uses golang.org/x/image/font/opentype for glyph metrics and rendering.
// Families that were never registered resolve to the embedded Go fonts, the
// same silent substitution a browser canvas performs.
package fonts

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/xob0t/GoPoster/pkg/logging"
)

// Weight names accepted in templates.
const (
	WeightNormal = "normal"
	WeightBold   = "bold"
)

// DefaultFamily is the family used when a template names nothing usable.
const DefaultFamily = "Go"

type fontKey struct {
	family string
	bold   bool
}

// Manager holds parsed fonts. It is safe for concurrent use; parsed fonts are
// shared read-only across renders while faces are created per caller.
type Manager struct {
	mu     sync.RWMutex
	fonts  map[fontKey]*opentype.Font
	dpi    float64
	hinted bool
}

// NewManager creates a manager preloaded with the embedded Go Regular and Go
// Bold fonts under DefaultFamily.
func NewManager() (*Manager, error) {
	m := &Manager{
		fonts: make(map[fontKey]*opentype.Font),
		dpi:   72,
	}
	if err := m.RegisterBytes(DefaultFamily, WeightNormal, goregular.TTF); err != nil {
		return nil, err
	}
	if err := m.RegisterBytes(DefaultFamily, WeightBold, gobold.TTF); err != nil {
		return nil, err
	}
	return m, nil
}

// SetHinting toggles full hinting for faces created afterwards. Hinting snaps
// advances to whole pixels, which makes widths depend on the target size, so
// it is off by default.
func (m *Manager) SetHinting(on bool) {
	m.mu.Lock()
	m.hinted = on
	m.mu.Unlock()
}

// RegisterFile loads a TTF/OTF file under family and weight.
func (m *Manager) RegisterFile(family, weight, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return m.RegisterBytes(family, weight, data)
}

// RegisterBytes parses raw font data under family and weight.
func (m *Manager) RegisterBytes(family, weight string, data []byte) error {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse font %q: %w", family, err)
	}
	m.mu.Lock()
	m.fonts[key(family, weight)] = parsed
	m.mu.Unlock()
	return nil
}

// Has reports whether family was registered with any weight.
func (m *Manager) Has(family string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f := normalizeFamily(family)
	for k := range m.fonts {
		if k.family == f {
			return true
		}
	}
	return false
}

// Face returns a font.Face at sizePx pixels for the requested family and
// weight, falling back to the same weight of DefaultFamily.
func (m *Manager) Face(family, weight string, sizePx float64) (font.Face, error) {
	if sizePx <= 0 {
		return nil, fmt.Errorf("invalid font size %.2f", sizePx)
	}
	f := m.resolve(family, weight)
	if f == nil {
		return nil, fmt.Errorf("no font available for %q", family)
	}

	m.mu.RLock()
	hinting := font.HintingNone
	if m.hinted {
		hinting = font.HintingFull
	}
	dpi := m.dpi
	m.mu.RUnlock()

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     dpi,
		Hinting: hinting,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

func (m *Manager) resolve(family, weight string) *opentype.Font {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := key(family, weight)
	if f, ok := m.fonts[k]; ok {
		return f
	}
	// Same family, other weight.
	if f, ok := m.fonts[fontKey{family: k.family, bold: !k.bold}]; ok {
		return f
	}
	logging.WithComponent("fonts").Debug().
		Str("family", family).Str("weight", weight).
		Msg("font family not registered, using fallback")
	if f, ok := m.fonts[fontKey{family: normalizeFamily(DefaultFamily), bold: k.bold}]; ok {
		return f
	}
	return m.fonts[fontKey{family: normalizeFamily(DefaultFamily)}]
}

func key(family, weight string) fontKey {
	return fontKey{family: normalizeFamily(family), bold: IsBold(weight)}
}

// IsBold reports whether a CSS-style weight ("bold", "700", "900") is bold.
func IsBold(weight string) bool {
	switch strings.ToLower(strings.TrimSpace(weight)) {
	case "bold", "bolder", "600", "700", "800", "900":
		return true
	}
	return false
}

// normalizeFamily takes the first entry of a CSS font stack and lower-cases it,
// so "Arial, sans-serif" and "arial" share a key.
func normalizeFamily(family string) string {
	if i := strings.IndexByte(family, ','); i >= 0 {
		family = family[:i]
	}
	family = strings.Trim(strings.TrimSpace(family), `"'`)
	return strings.ToLower(family)
}
