package config

import (
	"fmt"
	"strings"
)

// DefaultResolution is the number of grid points the density is sampled at.
const DefaultResolution = 1024

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	LoadConfig() (*ConfigData, error)
}

// ConfigData represents the complete run configuration
type ConfigData struct {
	Threshold ThresholdData `json:"threshold"`
	Plot      PlotData      `json:"plot"`
	Text      TextData      `json:"text"`
}

// ThresholdData controls density sampling and threshold selection
type ThresholdData struct {
	// Resolution is the number of evenly spaced grid points the density is
	// evaluated at. Must be at least 3 for an interior minimum to exist.
	Resolution int `json:"resolution"`

	// FallbackResolutions are tried in order when no local minimum is found
	// at Resolution. Empty means no retry.
	FallbackResolutions []int `json:"fallback_resolutions,omitempty"`

	// Bandwidth names the KDE bandwidth rule: "scott" or "silverman".
	Bandwidth string `json:"bandwidth"`
}

// PlotData controls the diagnostic histogram
type PlotData struct {
	Enabled bool `json:"enabled"`
}

// TextData controls how delimited text matrices are read
type TextData struct {
	// Transpose reads rows as timepoints and columns as locations.
	Transpose bool `json:"transpose"`

	// SkipRows drops this many leading non-comment rows, e.g. a header line.
	SkipRows int `json:"skip_rows"`

	// Comment is the line prefix marking comments. Empty disables comments.
	Comment string `json:"comment"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *ConfigData {
	return &ConfigData{
		Threshold: ThresholdData{
			Resolution: DefaultResolution,
			Bandwidth:  "scott",
		},
		Plot: PlotData{
			Enabled: false,
		},
		Text: TextData{
			Comment: "#",
		},
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *ConfigData) Validate() error {
	if c.Threshold.Resolution < 3 {
		return fmt.Errorf("threshold.resolution must be at least 3, got %d", c.Threshold.Resolution)
	}
	for i, r := range c.Threshold.FallbackResolutions {
		if r < 3 {
			return fmt.Errorf("threshold.fallback_resolutions[%d] must be at least 3, got %d", i, r)
		}
	}
	if c.Text.SkipRows < 0 {
		return fmt.Errorf("text.skip_rows must not be negative, got %d", c.Text.SkipRows)
	}
	switch strings.ToLower(c.Threshold.Bandwidth) {
	case "", "scott", "silverman":
	default:
		return fmt.Errorf("threshold.bandwidth must be 'scott' or 'silverman', got %q", c.Threshold.Bandwidth)
	}
	return nil
}
