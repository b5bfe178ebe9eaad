package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"pipelined.dev/fovea/gaze"
)

// config carries the tunables of the transcode command.
type config struct {
	Capacity     int    `toml:"capacity"`
	LagCapacity  int    `toml:"lag_capacity"`
	Profile      string `toml:"profile"`
	OutputSuffix string `toml:"output_suffix"`

	Gaze gazeConfig `toml:"gaze"`
}

// gazeConfig is the static fallback gaze used without an eye tracker.
type gazeConfig struct {
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	Spread float64 `toml:"spread"`
	Offset float64 `toml:"offset"`
}

func defaultConfig() config {
	return config{
		Capacity:     32,
		LagCapacity:  32,
		Profile:      "libx264",
		OutputSuffix: ".fov.mkv",
		Gaze: gazeConfig{
			X:      0.5,
			Y:      0.5,
			Spread: gaze.DefaultSpread,
			Offset: gaze.DefaultOffset,
		},
	}
}

// loadConfig returns defaults overridden by the TOML file at path, or
// plain defaults for an empty path.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Capacity < 1 {
		return cfg, fmt.Errorf("config: capacity must be positive, got %d", cfg.Capacity)
	}
	if cfg.LagCapacity < 1 {
		return cfg, fmt.Errorf("config: lag_capacity must be positive, got %d", cfg.LagCapacity)
	}
	return cfg, nil
}
