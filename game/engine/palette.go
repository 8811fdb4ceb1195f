package engine

import (
	"fmt"
	"sort"
)

// Palette is the ordered set of colours balls may take
type Palette []Colour

// Built-in palettes, selectable by name from a GameConfig
var palettes = map[string]Palette{
	"classic":  {"red", "green", "blue", "yellow", "purple"},
	"favorite": {"crimson", "teal", "gold", "orchid", "slate"},
	"pastel":   {"peach", "mint", "sky", "lemon", "lilac"},
	"vivid":    {"red", "orange", "yellow", "green", "blue", "violet"},
	"mono":     {"black", "white", "grey"},
}

// DefaultPaletteName is used when a config names no palette
const DefaultPaletteName = "classic"

// LookupPalette returns a copy of a built-in palette
func LookupPalette(name string) (Palette, bool) {
	p, ok := palettes[name]
	if !ok {
		return nil, false
	}
	out := make(Palette, len(p))
	copy(out, p)
	return out, true
}

// PaletteNames returns the names of the built-in palettes in sorted order
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultPalette returns the classic five-colour palette
func DefaultPalette() Palette {
	p, _ := LookupPalette(DefaultPaletteName)
	return p
}

// Validate checks that the palette is non-empty, has no blank or duplicate colours
// and does not exceed MaxPaletteSize
func (p Palette) Validate() error {
	if len(p) == 0 {
		return ErrEmptyPalette
	}
	if len(p) > MaxPaletteSize {
		return fmt.Errorf("%w: at most %d colours allowed, got %d", ErrInvalidPalette, MaxPaletteSize, len(p))
	}
	seen := make(map[Colour]bool, len(p))
	for i, c := range p {
		if c == "" {
			return fmt.Errorf("%w: colour %d is blank", ErrInvalidPalette, i)
		}
		if seen[c] {
			return fmt.Errorf("%w: duplicate colour %q", ErrInvalidPalette, c)
		}
		seen[c] = true
	}
	return nil
}

// Contains reports whether the palette includes colour c
func (p Palette) Contains(c Colour) bool {
	for _, pc := range p {
		if pc == c {
			return true
		}
	}
	return false
}
