// tuning.go — Empirical layout constants, overridable per render.
package layout

import "fmt"

// Tuning holds the constants of the layout rules. Spacing tiers are fractions
// of the output side so they scale with the render like every other length.
type Tuning struct {
	NameLineHeight  float64 `json:"nameLineHeight" yaml:"name_line_height"`
	TitleLineHeight float64 `json:"titleLineHeight" yaml:"title_line_height"`

	// Gap between the name and title blocks, keyed on the name's line count:
	// tight for 1 line, medium for 2, generous for 3 or more.
	SpacingTight    float64 `json:"spacingTight" yaml:"spacing_tight"`
	SpacingMedium   float64 `json:"spacingMedium" yaml:"spacing_medium"`
	SpacingGenerous float64 `json:"spacingGenerous" yaml:"spacing_generous"`

	// GrowthStep is the optimizer step as a fraction of the base size.
	GrowthStep float64 `json:"growthStep" yaml:"growth_step"`
	// MaxGrowth caps the name at base * (1 + MaxGrowth).
	MaxGrowth float64 `json:"maxGrowth" yaml:"max_growth"`
	// SingleWordMargin is the share of the zone width a one-word name may fill.
	SingleWordMargin float64 `json:"singleWordMargin" yaml:"single_word_margin"`
	// HeadMargin is the share of the zone width the words before the last one
	// may fill while the last word wraps alone.
	HeadMargin float64 `json:"headMargin" yaml:"head_margin"`
}

// DefaultTuning returns the production constants. The spacing tiers are the
// 25, 45 and 74.63 px gaps of the original 1080 designs.
func DefaultTuning() Tuning {
	return Tuning{
		NameLineHeight:   1.25,
		TitleLineHeight:  1.3,
		SpacingTight:     25.0 / 1080,
		SpacingMedium:    45.0 / 1080,
		SpacingGenerous:  74.63 / 1080,
		GrowthStep:       0.025,
		MaxGrowth:        0.5,
		SingleWordMargin: 0.9,
		HeadMargin:       0.8,
	}
}

// Validate checks the constants are usable.
func (t Tuning) Validate() error {
	if t.NameLineHeight <= 0 || t.TitleLineHeight <= 0 {
		return fmt.Errorf("line height multipliers must be positive")
	}
	if t.SpacingTight < 0 || !(t.SpacingTight < t.SpacingMedium && t.SpacingMedium < t.SpacingGenerous) {
		return fmt.Errorf("spacing tiers must be strictly increasing, got %.4f/%.4f/%.4f",
			t.SpacingTight, t.SpacingMedium, t.SpacingGenerous)
	}
	if t.GrowthStep <= 0 {
		return fmt.Errorf("growth step must be positive")
	}
	if t.MaxGrowth < 0 {
		return fmt.Errorf("max growth must not be negative")
	}
	if t.SingleWordMargin <= 0 || t.SingleWordMargin > 1 || t.HeadMargin <= 0 || t.HeadMargin > 1 {
		return fmt.Errorf("width margins must be in (0, 1]")
	}
	return nil
}

// Spacing returns the gap fraction for a name of the given line count.
func (t Tuning) Spacing(nameLines int) float64 {
	switch {
	case nameLines <= 1:
		return t.SpacingTight
	case nameLines == 2:
		return t.SpacingMedium
	default:
		return t.SpacingGenerous
	}
}
