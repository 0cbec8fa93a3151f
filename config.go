package whalecs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default capacity bounds, matching a mid-sized game scene.
const (
	DefaultMaxEntities   = 5000
	DefaultMaxComponents = 64
)

// Config fixes the capacity bounds of a World. The bounds are set once at
// world construction and are not runtime-adjustable: entity creation beyond
// MaxEntities returns the invalid sentinel entity, and registering more than
// MaxComponents distinct component (or tag) types panics.
type Config struct {
	MaxEntities   int `yaml:"max_entities"`
	MaxComponents int `yaml:"max_components"`
}

// DefaultConfig returns the default capacity bounds.
func DefaultConfig() Config {
	return Config{
		MaxEntities:   DefaultMaxEntities,
		MaxComponents: DefaultMaxComponents,
	}
}

func (c Config) validate() error {
	if c.MaxEntities < 2 {
		return fmt.Errorf("ecs: max_entities must be at least 2 (id 0 is reserved), got %d", c.MaxEntities)
	}
	if c.MaxComponents < 1 {
		return fmt.Errorf("ecs: max_components must be positive, got %d", c.MaxComponents)
	}
	return nil
}

// LoadConfig reads capacity bounds from a YAML file. Missing keys keep their
// default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("ecs: read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("ecs: parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
