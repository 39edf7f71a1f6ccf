// Package config loads molsketch settings from the environment, with an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/molsketch/pkg/diagram"
	"github.com/chazu/molsketch/pkg/props"
	"github.com/joho/godotenv"
)

// Config is the application configuration.
type Config struct {
	Window WindowConfig
	Atom   AtomConfig
	Render RenderConfig
	Log    LogConfig
}

// WindowConfig sizes the editor window.
type WindowConfig struct {
	Width  int
	Height int
}

// AtomConfig holds the starting state of new atoms.
type AtomConfig struct {
	FontFamily string
	FontSize   float64
	Colour     color.RGBA
}

// RenderConfig controls exported images.
type RenderConfig struct {
	Margin float64
	Scale  float64
}

// LogConfig selects the log level.
type LogConfig struct {
	Level slog.Level
}

// Load reads the given .env files (".env" when none are named) and then
// the MOLSKETCH_* environment. A missing default .env is not an error;
// malformed values are.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: .env: %w", err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var p parser
	cfg := &Config{
		Window: WindowConfig{
			Width:  p.int("MOLSKETCH_WINDOW_WIDTH", 1024),
			Height: p.int("MOLSKETCH_WINDOW_HEIGHT", 768),
		},
		Atom: AtomConfig{
			FontFamily: getEnv("MOLSKETCH_FONT_FAMILY", diagram.DefaultFontFamily),
			FontSize:   p.float("MOLSKETCH_FONT_SIZE", diagram.DefaultFontSize),
			Colour:     p.colour("MOLSKETCH_ATOM_COLOUR", diagram.DefaultColour),
		},
		Render: RenderConfig{
			Margin: p.float("MOLSKETCH_RENDER_MARGIN", 20),
			Scale:  p.float("MOLSKETCH_RENDER_SCALE", 2),
		},
		Log: LogConfig{
			Level: p.level("MOLSKETCH_LOG_LEVEL", slog.LevelInfo),
		},
	}
	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// AtomDefaults returns the AtomSpec new atoms start from.
func (c *Config) AtomDefaults() diagram.AtomSpec {
	spec := diagram.DefaultAtomSpec()
	spec.FontFamily = c.Atom.FontFamily
	spec.FontSize = c.Atom.FontSize
	spec.Colour = c.Atom.Colour
	return spec
}

// Logger returns a text logger on w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.Log.Level}))
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// parser collects every malformed variable rather than stopping at the
// first.
type parser struct {
	errs []error
}

func (p *parser) fail(key, value, want string) {
	p.errs = append(p.errs, fmt.Errorf("%s=%q: expected %s", key, value, want))
}

func (p *parser) int(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		p.fail(key, value, "a positive integer")
		return defaultValue
	}
	return n
}

func (p *parser) float(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		p.fail(key, value, "a non-negative number")
		return defaultValue
	}
	return f
}

func (p *parser) colour(key string, defaultValue color.RGBA) color.RGBA {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	c, ok := props.ParseColor(value)
	if !ok {
		p.fail(key, value, "a hex colour or CSS colour name")
		return defaultValue
	}
	return c
}

func (p *parser) level(key string, defaultValue slog.Level) slog.Level {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(value))); err != nil {
		p.fail(key, value, "debug, info, warn or error")
		return defaultValue
	}
	return l
}
