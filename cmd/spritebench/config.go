package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the benchmark configuration. Zero fields in a config file keep
// their defaults.
type Config struct {
	// Backend names the atlas backend; empty selects the best registered.
	Backend string `yaml:"backend"`
	// Workers is the number of draw goroutines; 0 uses GOMAXPROCS.
	Workers int `yaml:"workers"`
	// Sprites is the number of live sprites.
	Sprites int `yaml:"sprites"`
	// Frames is the number of frames to run.
	Frames int `yaml:"frames"`
	// Quads is the number of sprite quads drawn per frame.
	Quads int `yaml:"quads"`
	// PruneEvery prunes the atlas every n frames.
	PruneEvery int `yaml:"prune_every"`
	// DropEvery replaces one sprite every n frames; 0 never drops.
	DropEvery int `yaml:"drop_every"`
	// MaxAtlas is the largest sprite edge the atlas accepts.
	MaxAtlas int `yaml:"max_atlas"`
	// Text is drawn once per frame through the glyph cache.
	Text string `yaml:"text"`
	// Seed seeds sprite generation.
	Seed uint64 `yaml:"seed"`
	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Sprites:    256,
		Frames:     600,
		Quads:      20000,
		PruneEvery: 60,
		DropEvery:  5,
		MaxAtlas:   2048,
		Text:       "spritebench",
		Seed:       1,
	}
}

// maxConfigSize bounds config files.
const maxConfigSize = 1 << 20

// LoadConfig reads a YAML config from path on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	info, err := os.Stat(path)
	if err != nil {
		return cfg, err
	}
	if info.Size() > maxConfigSize {
		return cfg, fmt.Errorf("config %s: %d bytes exceeds %d", path, info.Size(), maxConfigSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, errors.New("workers must not be negative"))
	}
	if c.Sprites <= 0 {
		errs = append(errs, errors.New("sprites must be positive"))
	}
	if c.Frames <= 0 {
		errs = append(errs, errors.New("frames must be positive"))
	}
	if c.Quads < 0 {
		errs = append(errs, errors.New("quads must not be negative"))
	}
	if c.PruneEvery < 0 || c.DropEvery < 0 {
		errs = append(errs, errors.New("prune_every and drop_every must not be negative"))
	}
	if c.MaxAtlas < 64 {
		errs = append(errs, fmt.Errorf("max_atlas %d is below 64", c.MaxAtlas))
	}
	return errors.Join(errs...)
}
