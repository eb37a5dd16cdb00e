package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Selection
	MaxPhotos     int  `yaml:"max_photos"`
	DebounceMS    int  `yaml:"debounce_ms"`
	LandscapeOnly bool `yaml:"landscape_only"`

	// Compositing
	Layout                string `yaml:"layout"`
	CellWidth             int    `yaml:"cell_width"`
	CellHeight            int    `yaml:"cell_height"`
	Background            string `yaml:"background"`
	ThumbnailMaxDimension int    `yaml:"thumbnail_max_dimension"`

	// Gallery
	GalleryDir   string `yaml:"gallery_dir"` // empty = vault gallery, else bundled
	WatchGallery bool   `yaml:"watch_gallery"`

	// UI Settings
	CopyPath   bool   `yaml:"copy_path"`
	ColorTheme string `yaml:"color_theme"`
	Editor     string `yaml:"editor"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		MaxPhotos:             6,
		DebounceMS:            250,
		LandscapeOnly:         true,
		Layout:                "grid",
		CellWidth:             480,
		CellHeight:            320,
		Background:            "#1e1e2e",
		ThumbnailMaxDimension: 320,
		GalleryDir:            "",
		WatchGallery:          true,
		CopyPath:              true,
		ColorTheme:            "auto",
		Editor:                "",
		LogLevel:              "info",
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults for essential values if missing
	defaults := DefaultConfig()
	if cfg.MaxPhotos <= 0 {
		cfg.MaxPhotos = defaults.MaxPhotos
	}
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = defaults.DebounceMS
	}
	if cfg.CellWidth <= 0 {
		cfg.CellWidth = defaults.CellWidth
	}
	if cfg.CellHeight <= 0 {
		cfg.CellHeight = defaults.CellHeight
	}
	if cfg.ThumbnailMaxDimension <= 0 {
		cfg.ThumbnailMaxDimension = defaults.ThumbnailMaxDimension
	}
	if cfg.Background == "" {
		cfg.Background = defaults.Background
	}
	if cfg.ColorTheme == "" {
		cfg.ColorTheme = defaults.ColorTheme
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}

	if !isValidLayout(cfg.Layout) {
		cfg.Layout = defaults.Layout
	}

	return cfg, nil
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// isValidLayout checks if the layout is one the compositor knows
func isValidLayout(layout string) bool {
	validLayouts := []string{"grid", "horizontal", "vertical"}
	for _, valid := range validLayouts {
		if layout == valid {
			return true
		}
	}
	return false
}
