package prompts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/white-rabbit/pkg/narrative"
)

// Config is the static narrative configuration: one prompt template and one parse
// pattern per stage. Stages left out use the built-in defaults.
type Config struct {
	Templates map[narrative.Stage]string `yaml:"templates"`
	Patterns  map[narrative.Stage]string `yaml:"patterns"`
}

// DefaultConfig returns the built-in templates and patterns.
func DefaultConfig() *Config {
	cfg := &Config{
		Templates: make(map[narrative.Stage]string, len(DefaultTemplates)),
		Patterns:  make(map[narrative.Stage]string, len(narrative.DefaultPatterns)),
	}
	for stage, tmpl := range DefaultTemplates {
		cfg.Templates[stage] = tmpl
	}
	for stage, p := range narrative.DefaultPatterns {
		cfg.Patterns[stage] = p
	}
	return cfg
}

// LoadConfig reads a YAML override file on top of the defaults and validates the result.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read narrative config: %w", err)
	}
	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse narrative config %s: %w", path, err)
	}
	for stage, tmpl := range override.Templates {
		if !stage.Valid() {
			return nil, fmt.Errorf("narrative config %s: templates: %w", path, &narrative.InvalidStageError{Stage: string(stage)})
		}
		cfg.Templates[stage] = tmpl
	}
	for stage, p := range override.Patterns {
		if !stage.Valid() {
			return nil, fmt.Errorf("narrative config %s: patterns: %w", path, &narrative.InvalidStageError{Stage: string(stage)})
		}
		cfg.Patterns[stage] = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("narrative config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate compiles every template and pattern.
func (c *Config) Validate() error {
	if _, err := NewBuilder(c); err != nil {
		return err
	}
	if _, err := c.PatternSet(); err != nil {
		return err
	}
	return nil
}

// PatternSet compiles the configured parse patterns.
func (c *Config) PatternSet() (*narrative.PatternSet, error) {
	return narrative.NewPatternSet(c.Patterns)
}
