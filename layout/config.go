// Package layout derives per-element sizes and positions from an argument
// diagram snapshot. The engine is a pure function of the snapshot and its
// configuration; it never mutates caller-owned state.
package layout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gsn/diagram"
)

// SizeBounds limits an element's computed dimensions. Height has no upper
// bound; it grows until the wrapped text fits.
type SizeBounds struct {
	MinWidth  float64 `yaml:"minWidth"`
	MinHeight float64 `yaml:"minHeight"`
	MaxWidth  float64 `yaml:"maxWidth"`
}

// Config carries every tuning constant of the layout engine. Zero values
// are not usable; start from DefaultConfig or a loaded profile.
type Config struct {
	// Text measurement. CharWidth is the pixel width of one narrow
	// glyph cell; full-width glyphs occupy two cells.
	CharWidth  float64 `yaml:"charWidth"`
	LineHeight float64 `yaml:"lineHeight"`
	PaddingX   float64 `yaml:"paddingX"`
	PaddingY   float64 `yaml:"paddingY"`

	// Spacing.
	MinGap     float64 `yaml:"minGap"`     // horizontal gap between sibling subtrees
	LevelGap   float64 `yaml:"levelGap"`   // vertical gap between rows
	SatGap     float64 `yaml:"satGap"`     // gap between a node edge and its satellite stack
	SatSpacing float64 `yaml:"satSpacing"` // vertical spacing inside a satellite stack
	TreeGap    float64 `yaml:"treeGap"`    // horizontal gap between packed trees

	// Overlap resolution.
	OverlapMargin     float64 `yaml:"overlapMargin"`
	OverlapIterations int     `yaml:"overlapIterations"`

	// Per-kind size bounds. Core covers goals, strategies, evidence and
	// modules; satellites get smaller boxes; undeveloped elements render
	// as a near-square diamond.
	Core        SizeBounds `yaml:"core"`
	Satellite   SizeBounds `yaml:"satellite"`
	Undeveloped SizeBounds `yaml:"undeveloped"`
}

// DefaultConfig returns the stock layout profile.
func DefaultConfig() Config {
	return Config{
		CharWidth:  7.5,
		LineHeight: 18,
		PaddingX:   12,
		PaddingY:   10,

		MinGap:     40,
		LevelGap:   60,
		SatGap:     30,
		SatSpacing: 16,
		TreeGap:    80,

		OverlapMargin:     8,
		OverlapIterations: 50,

		Core:        SizeBounds{MinWidth: 80, MinHeight: 60, MaxWidth: 320},
		Satellite:   SizeBounds{MinWidth: 70, MinHeight: 48, MaxWidth: 240},
		Undeveloped: SizeBounds{MinWidth: 64, MinHeight: 64, MaxWidth: 160},
	}
}

// LoadConfig reads a YAML layout profile. Fields absent from the file keep
// their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading layout profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing layout profile %s: %w", path, err)
	}
	if err := cfg.check(); err != nil {
		return cfg, fmt.Errorf("layout profile %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) check() error {
	if c.CharWidth <= 0 || c.LineHeight <= 0 {
		return fmt.Errorf("text metrics must be positive")
	}
	if c.OverlapIterations < 1 {
		return fmt.Errorf("overlapIterations must be at least 1")
	}
	for _, b := range []SizeBounds{c.Core, c.Satellite, c.Undeveloped} {
		if b.MinWidth <= 0 || b.MinHeight <= 0 || b.MaxWidth < b.MinWidth {
			return fmt.Errorf("size bounds must satisfy 0 < minWidth <= maxWidth")
		}
	}
	return nil
}

// boundsFor picks the size bounds for an element kind.
func (c Config) boundsFor(k diagram.Kind) SizeBounds {
	switch {
	case k == diagram.KindUndeveloped:
		return c.Undeveloped
	case k.IsSatellite():
		return c.Satellite
	default:
		return c.Core
	}
}
