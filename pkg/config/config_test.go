package config

import (
	"bytes"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/molsketch/pkg/diagram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets key for the test and restores it afterwards.
func clearEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

var keys = []string{
	"MOLSKETCH_WINDOW_WIDTH", "MOLSKETCH_WINDOW_HEIGHT",
	"MOLSKETCH_FONT_FAMILY", "MOLSKETCH_FONT_SIZE", "MOLSKETCH_ATOM_COLOUR",
	"MOLSKETCH_LOG_LEVEL", "MOLSKETCH_RENDER_MARGIN", "MOLSKETCH_RENDER_SCALE",
}

func clearAll(t *testing.T) {
	for _, k := range keys {
		clearEnv(t, k)
	}
}

func TestDefaults(t *testing.T) {
	clearAll(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, WindowConfig{Width: 1024, Height: 768}, cfg.Window)
	assert.Equal(t, RenderConfig{Margin: 20, Scale: 2}, cfg.Render)
	assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
	assert.Equal(t, diagram.DefaultAtomSpec(), cfg.AtomDefaults())
}

func TestEnvironmentOverrides(t *testing.T) {
	clearAll(t)
	t.Setenv("MOLSKETCH_WINDOW_WIDTH", "800")
	t.Setenv("MOLSKETCH_FONT_FAMILY", "Helvetica")
	t.Setenv("MOLSKETCH_FONT_SIZE", "12.5")
	t.Setenv("MOLSKETCH_ATOM_COLOUR", "navy")
	t.Setenv("MOLSKETCH_LOG_LEVEL", "debug")
	t.Setenv("MOLSKETCH_RENDER_SCALE", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 768, cfg.Window.Height)
	assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
	assert.Equal(t, 3.0, cfg.Render.Scale)

	spec := cfg.AtomDefaults()
	assert.Equal(t, "Helvetica", spec.FontFamily)
	assert.Equal(t, 12.5, spec.FontSize)
	assert.Equal(t, color.RGBA{B: 128, A: 255}, spec.Colour)
	assert.Equal(t, "C", spec.Symbol)
}

func TestMalformedValues(t *testing.T) {
	clearAll(t)
	t.Setenv("MOLSKETCH_WINDOW_HEIGHT", "tall")
	t.Setenv("MOLSKETCH_ATOM_COLOUR", "#12")
	t.Setenv("MOLSKETCH_LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MOLSKETCH_WINDOW_HEIGHT")
	assert.Contains(t, err.Error(), "MOLSKETCH_ATOM_COLOUR")
	assert.Contains(t, err.Error(), "MOLSKETCH_LOG_LEVEL")
}

func TestDotEnvFile(t *testing.T) {
	clearAll(t)
	path := filepath.Join(t.TempDir(), "molsketch.env")
	require.NoError(t, os.WriteFile(path, []byte("MOLSKETCH_FONT_SIZE=20\nMOLSKETCH_RENDER_MARGIN=5\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20.0, cfg.Atom.FontSize)
	assert.Equal(t, 5.0, cfg.Render.Margin)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoggerLevel(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: slog.LevelWarn}}
	var buf bytes.Buffer
	log := cfg.Logger(&buf)
	log.Info("hidden")
	log.Warn("shown", "key", "value")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "key=value")
}
