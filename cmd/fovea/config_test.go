package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	assert.Nil(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fovea.toml")
	err := os.WriteFile(path, []byte(`
capacity = 8
profile = "libx265"

[gaze]
x = 0.25
y = 0.75
offset = 20.0
`), 0o644)
	assert.Nil(t, err)

	cfg, err := loadConfig(path)
	assert.Nil(t, err)
	assert.Equal(t, 8, cfg.Capacity)
	assert.Equal(t, "libx265", cfg.Profile)
	assert.Equal(t, 0.25, cfg.Gaze.X)
	assert.Equal(t, 0.75, cfg.Gaze.Y)
	assert.Equal(t, 20.0, cfg.Gaze.Offset)
	// untouched keys keep their defaults
	assert.Equal(t, 32, cfg.LagCapacity)
	assert.Equal(t, ".fov.mkv", cfg.OutputSuffix)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fovea.toml")
	err := os.WriteFile(path, []byte("capacity = 0\n"), 0o644)
	assert.Nil(t, err)

	_, err = loadConfig(path)
	assert.NotNil(t, err)
}

func TestParseLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	err := os.WriteFile(path, []byte("a.mkv\n\n  \nb.mp4\n"), 0o644)
	assert.Nil(t, err)

	lines, err := parseLines(path)
	assert.Nil(t, err)
	assert.Equal(t, []string{"a.mkv", "b.mp4"}, lines)
}
