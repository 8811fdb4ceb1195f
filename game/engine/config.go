package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Messages are the player-facing texts a config may override
type Messages struct {
	Welcome   string `json:"welcome"`
	Removed   string `json:"removed"`
	NoGroup   string `json:"no_group"`
	GameOver  string `json:"game_over"`
	NewRecord string `json:"new_record"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	PaletteName string   `json:"palette_name,omitempty"`
	Palette     Palette  `json:"palette,omitempty"`
	Messages    Messages `json:"messages"`
}

// DefaultMessages returns the built-in message set
func DefaultMessages() Messages {
	return Messages{
		Welcome:   "Select a ball to remove its group. Bigger groups score more!",
		Removed:   "Removed %d balls for %d points",
		NoGroup:   "That ball has no neighbours of the same colour",
		GameOver:  "Game over! Final score: %d",
		NewRecord: "New high score: %d!",
	}
}

// withDefaults fills blank messages from DefaultMessages
func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	if m.Welcome == "" {
		m.Welcome = d.Welcome
	}
	if m.Removed == "" {
		m.Removed = d.Removed
	}
	if m.NoGroup == "" {
		m.NoGroup = d.NoGroup
	}
	if m.GameOver == "" {
		m.GameOver = d.GameOver
	}
	if m.NewRecord == "" {
		m.NewRecord = d.NewRecord
	}
	return m
}

// DefaultGameConfig returns the classic 20x16 five-colour game
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Classic 20x16 board with five colours",
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		PaletteName: DefaultPaletteName,
		Messages:    DefaultMessages(),
	}
}

// ResolvePalette returns the explicit palette if one is given, otherwise the
// named built-in palette, otherwise the default palette
func (c *GameConfig) ResolvePalette() (Palette, error) {
	if len(c.Palette) > 0 {
		if err := c.Palette.Validate(); err != nil {
			return nil, err
		}
		p := make(Palette, len(c.Palette))
		copy(p, c.Palette)
		return p, nil
	}
	if c.PaletteName == "" {
		return DefaultPalette(), nil
	}
	p, ok := LookupPalette(c.PaletteName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown palette %q (available: %s)",
			ErrInvalidPalette, c.PaletteName, strings.Join(PaletteNames(), ", "))
	}
	return p, nil
}

// ValidateGameConfig validates a game configuration for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config cannot be nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.Width < MinBoardSize || config.Width > MaxBoardSize {
		return fmt.Errorf("config validation: %w: width must be between %d and %d, got %d",
			ErrInvalidDimensions, MinBoardSize, MaxBoardSize, config.Width)
	}
	if config.Height < MinBoardSize || config.Height > MaxBoardSize {
		return fmt.Errorf("config validation: %w: height must be between %d and %d, got %d",
			ErrInvalidDimensions, MinBoardSize, MaxBoardSize, config.Height)
	}

	if _, err := config.ResolvePalette(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	// Validate format strings
	m := config.Messages
	if m.Removed != "" && strings.Count(m.Removed, "%d") != 2 {
		return fmt.Errorf("config validation: messages.removed must contain two %%d for count and points")
	}
	if m.GameOver != "" && !strings.Contains(m.GameOver, "%d") {
		return fmt.Errorf("config validation: messages.game_over must contain %%d for score")
	}
	if m.NewRecord != "" && !strings.Contains(m.NewRecord, "%d") {
		return fmt.Errorf("config validation: messages.new_record must contain %%d for score")
	}

	return nil
}

// LoadGameConfig loads and validates a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filename, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", filename, err)
	}

	return &config, nil
}
