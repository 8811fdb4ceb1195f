// Package validate checks game configuration JSON files before they are
// served. It reports:
//   - JSON structure and unknown fields
//   - Board dimensions and palette resolution
//   - Message format strings
//   - Warnings for boards that play badly: tiny palettes, palettes larger
//     than the board, and sample deals with no removable group
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/same-game/game/engine"
)

// RecommendedPaletteSize is the smallest palette that gives a varied game
const RecommendedPaletteSize = 5

// sampleDeals is how many seeded boards are dealt to check playability
const sampleDeals = 5

// Result captures the outcome of validating a single file. Errors make the
// file invalid; Warnings do not.
type Result struct {
	File     string             `json:"file"`
	Valid    bool               `json:"valid"`
	Errors   []string           `json:"errors"`
	Warnings []string           `json:"warnings"`
	Config   *engine.GameConfig `json:"-"`
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// File loads and validates a single configuration JSON file
func File(path string) Result {
	result := Result{
		File:     filepath.Base(path),
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	checkConfig(&result, data)
	return result
}

// Dir validates every *.json file in dir, ordered by file name
func Dir(dir string) ([]Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, f := range files {
		results = append(results, File(f))
	}
	return results, nil
}

func checkConfig(result *Result, data []byte) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var config engine.GameConfig
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		result.fail("Invalid JSON: trailing data after the config object")
		return
	}
	result.Config = &config

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
		return
	}

	palette, _ := config.ResolvePalette()
	if len(config.Palette) > 0 && config.PaletteName != "" {
		result.warn("Both palette and palette_name are set; palette %q is ignored", config.PaletteName)
	}
	if len(palette) < RecommendedPaletteSize {
		result.warn("Palette has %d colours; at least %d are recommended", len(palette), RecommendedPaletteSize)
	}
	if cells := config.Width * config.Height; len(palette) > cells {
		result.warn("Palette has %d colours but the board only has %d cells", len(palette), cells)
	}

	stuck := 0
	for seed := uint64(1); seed <= sampleDeals; seed++ {
		board, err := engine.NewBoardFromConfig(&config, nil, seed)
		if err != nil {
			result.fail("Failed to deal a board: %v", err)
			return
		}
		if !board.HasMoves() {
			stuck++
		}
	}
	if stuck > 0 {
		result.warn("%d of %d sample deals have no removable group", stuck, sampleDeals)
	}
}

// Report writes a human-readable summary of results and reports whether
// every file was valid
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			if c := result.Config; c != nil {
				fmt.Fprintf(w, "  %s: %dx%d\n", c.Name, c.Width, c.Height)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Fprintln(w, "  ⚠️  "+warning)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid
}
