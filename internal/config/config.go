// Package config holds the appearance and layout configuration shared by
// both render surfaces. Values come from an optional YAML file layered
// over defaults; command-line flags override afterwards.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls timeline layout and export appearance
type Config struct {
	Layout struct {
		MinGap            float64 `yaml:"min_gap"`             // Minimum horizontal separation between adjacent cards
		PxPerDay          float64 `yaml:"px_per_day"`          // Baseline density of the export surface
		Bleed             float64 `yaml:"bleed"`               // Margin beyond a window in which cards are still drawn
		DomainPaddingDays int     `yaml:"domain_padding_days"` // Padding added before the first and after the last event
	} `yaml:"layout"`
	Screen struct {
		CardWidth    int     `yaml:"card_width"`    // Card width in terminal cells
		CellsPerDay  float64 `yaml:"cells_per_day"` // Baseline density of the interactive surface
		MinGapCells  float64 `yaml:"min_gap_cells"` // Minimum card separation in terminal cells
		PanStepCells float64 `yaml:"pan_step"`      // Horizontal pan distance per keypress
	} `yaml:"screen"`
	Export struct {
		Margin       float64 `yaml:"margin"`        // Page margin in points
		CardWidth    float64 `yaml:"card_width"`    // Card width in points
		CardHeight   float64 `yaml:"card_height"`   // Card height in points
		Watermark    string  `yaml:"watermark"`     // Diagonal watermark text, empty disables it
		ThumbFetches int     `yaml:"thumb_fetches"` // Concurrent thumbnail fetches during prefetch
	} `yaml:"export"`
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{}
	cfg.Layout.MinGap = 150
	cfg.Layout.PxPerDay = 2.0
	cfg.Layout.Bleed = 80
	cfg.Layout.DomainPaddingDays = 30

	cfg.Screen.CardWidth = 18
	cfg.Screen.CellsPerDay = 0.25
	cfg.Screen.MinGapCells = 20
	cfg.Screen.PanStepCells = 8

	cfg.Export.Margin = 36
	cfg.Export.CardWidth = 130
	cfg.Export.CardHeight = 110
	cfg.Export.Watermark = "chronoline"
	cfg.Export.ThumbFetches = 4
	return cfg
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Layout.MinGap <= 0 {
		return fmt.Errorf("layout.min_gap must be positive, got %v", c.Layout.MinGap)
	}
	if c.Layout.PxPerDay <= 0 {
		return fmt.Errorf("layout.px_per_day must be positive, got %v", c.Layout.PxPerDay)
	}
	if c.Layout.Bleed < 0 {
		return fmt.Errorf("layout.bleed must not be negative, got %v", c.Layout.Bleed)
	}
	if c.Screen.CardWidth < 8 {
		return fmt.Errorf("screen.card_width must be at least 8, got %v", c.Screen.CardWidth)
	}
	if c.Export.CardWidth <= 0 || c.Export.CardHeight <= 0 {
		return fmt.Errorf("export card dimensions must be positive")
	}
	return nil
}
