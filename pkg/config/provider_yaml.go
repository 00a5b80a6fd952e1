package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// ThresholdYAML is the on-disk form of ThresholdData
type ThresholdYAML struct {
	Resolution          int    `yaml:"resolution,omitempty"`
	FallbackResolutions []int  `yaml:"fallback_resolutions,omitempty"`
	Bandwidth           string `yaml:"bandwidth,omitempty"`
}

// PlotYAML is the on-disk form of PlotData
type PlotYAML struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// TextYAML is the on-disk form of TextData
type TextYAML struct {
	Transpose *bool   `yaml:"transpose,omitempty"`
	SkipRows  int     `yaml:"skip_rows,omitempty"`
	Comment   *string `yaml:"comment,omitempty"`
}

// LoadConfig reads the YAML file and overlays it on DefaultConfig. Keys that
// are absent keep their default values.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}
	return Parse(cfgFile)
}

// Parse decodes YAML bytes into a validated ConfigData.
func Parse(data []byte) (*ConfigData, error) {
	var yamlConfig struct {
		Threshold ThresholdYAML `yaml:"threshold,omitempty"`
		Plot      PlotYAML      `yaml:"plot,omitempty"`
		Text      TextYAML      `yaml:"text,omitempty"`
	}

	if err := yaml.UnmarshalStrict(data, &yamlConfig); err != nil {
		return nil, fmt.Errorf("error parsing YAML config: %w", err)
	}

	config := DefaultConfig()
	if yamlConfig.Threshold.Resolution != 0 {
		config.Threshold.Resolution = yamlConfig.Threshold.Resolution
	}
	if len(yamlConfig.Threshold.FallbackResolutions) > 0 {
		config.Threshold.FallbackResolutions = yamlConfig.Threshold.FallbackResolutions
	}
	if yamlConfig.Threshold.Bandwidth != "" {
		config.Threshold.Bandwidth = yamlConfig.Threshold.Bandwidth
	}
	if yamlConfig.Plot.Enabled != nil {
		config.Plot.Enabled = *yamlConfig.Plot.Enabled
	}
	if yamlConfig.Text.Transpose != nil {
		config.Text.Transpose = *yamlConfig.Text.Transpose
	}
	if yamlConfig.Text.SkipRows != 0 {
		config.Text.SkipRows = yamlConfig.Text.SkipRows
	}
	if yamlConfig.Text.Comment != nil {
		config.Text.Comment = *yamlConfig.Text.Comment
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
