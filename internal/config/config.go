// Package config loads the TOML defaults CLI flags override, following
// the same defaultConfig/LoadConfig shape used throughout this codebase.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DeviceConfig names one of the two fixed e-ink geometries.
type DeviceConfig struct {
	Name string `toml:"name"` // "X4" or "X3"
}

// DitherConfig holds the default dithering/filter settings.
type DitherConfig struct {
	Algorithm string  `toml:"algorithm"`
	Contrast  int     `toml:"contrast"`
	Gamma     float64 `toml:"gamma"`
	Invert    bool    `toml:"invert"`
	Is2Bit    bool    `toml:"two_bit"`
}

// LayoutConfig holds default crop/split/manhwa settings.
type LayoutConfig struct {
	HorizontalMarginPercent float64 `toml:"horizontal_margin_percent"`
	VerticalMarginPercent   float64 `toml:"vertical_margin_percent"`
	PadBlack                bool    `toml:"pad_black"`
	Orientation             string  `toml:"orientation"`
	SplitMode               string  `toml:"split_mode"`
	IncludeOverviews        bool    `toml:"include_overviews"`
	SidewaysOverviews       bool    `toml:"sideways_overviews"`
	Manhwa                  bool    `toml:"manhwa"`
	ManhwaOverlapPercent    int     `toml:"manhwa_overlap_percent"`
	ImageMode               string  `toml:"image_mode"`
}

// Config is the top-level TOML document shape, loaded once per run and
// overridden field-by-field by CLI flags in internal/cliopts.
type Config struct {
	Device DeviceConfig `toml:"device"`
	Dither DitherConfig `toml:"dither"`
	Layout LayoutConfig `toml:"layout"`
}

func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{Name: "X4"},
		Dither: DitherConfig{
			Algorithm: "stucki",
			Contrast:  0,
			Gamma:     1.0,
		},
		Layout: LayoutConfig{
			HorizontalMarginPercent: 0,
			VerticalMarginPercent:   0,
			Orientation:             "landscape",
			SplitMode:               "overlap",
			ManhwaOverlapPercent:    50,
			ImageMode:               "letterbox",
		},
	}
}

// LoadConfig reads path if it exists, falling back to built-in defaults
// when it doesn't (a missing config file is not an error).
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
