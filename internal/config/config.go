// Package config reads the settings of a blueprint run.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/blueprint/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel string `yaml:"log_level"`
	// Prototypes lists prototype document files, loaded in order.
	Prototypes []string `yaml:"prototypes"`
	// Map is the map document to load.
	Map           string `yaml:"map"`
	RunMapInit    bool   `yaml:"run_map_init"`
	DecodeWorkers int    `yaml:"decode_workers"`
}

func Default() Config {
	return Config{
		LogLevel:      "info",
		DecodeWorkers: 4,
	}
}

// Load reads a YAML config over the defaults. Unknown keys are rejected.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return Load(f)
}

func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error", "silent", "off":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.DecodeWorkers < 0 {
		return fmt.Errorf("%w: decode_workers %d is negative", ErrInvalidConfig, c.DecodeWorkers)
	}
	return nil
}

func (c Config) Level() log.Level {
	return log.ParseLevel(c.LogLevel)
}
