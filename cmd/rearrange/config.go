package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/setanarut/rearranger"
	"github.com/setanarut/rearranger/utils"
)

type CanvasConfig struct {
	Size       int    `toml:"size"` // 0 = use the color map's size
	Background string `toml:"background"`
}

type TransferConfig struct {
	WindowRadius int `toml:"window_radius"`
}

type OutputConfig struct {
	Palette       string `toml:"palette"`
	PaletteColors int    `toml:"palette_colors"`
	PaletteMethod string `toml:"palette_method"`
	Report        bool   `toml:"report"`
}

type WatchConfig struct {
	DebounceMS int `toml:"debounce_ms"` // 0 = default (500ms)
}

func (w WatchConfig) Debounce() time.Duration {
	if w.DebounceMS > 0 {
		return time.Duration(w.DebounceMS) * time.Millisecond
	}
	return 500 * time.Millisecond
}

type Config struct {
	LogLevel string         `toml:"log_level"`
	Canvas   CanvasConfig   `toml:"canvas"`
	Transfer TransferConfig `toml:"transfer"`
	Output   OutputConfig   `toml:"output"`
	Watch    WatchConfig    `toml:"watch"`
}

func defaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Canvas: CanvasConfig{
			Size:       500,
			Background: "#1f2937",
		},
		Transfer: TransferConfig{
			WindowRadius: rearranger.DefaultWindowRadius,
		},
		Output: OutputConfig{
			PaletteColors: 6,
			PaletteMethod: utils.PaletteMethodUsage.String(),
		},
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Canvas.Size < 0 {
		return fmt.Errorf("canvas size must be >= 0, got %d", c.Canvas.Size)
	}
	if c.Transfer.WindowRadius < 0 {
		return fmt.Errorf("window_radius must be >= 0, got %d", c.Transfer.WindowRadius)
	}
	if _, err := utils.ParseHexColor(c.Canvas.Background); err != nil {
		return err
	}
	if c.Output.PaletteColors <= 0 {
		return fmt.Errorf("palette_colors must be > 0, got %d", c.Output.PaletteColors)
	}
	if _, err := utils.ParsePaletteMethod(c.Output.PaletteMethod); err != nil {
		return err
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// canvas converts the [canvas] section. Callers validate first.
func (c *Config) canvas() utils.Canvas {
	bg, err := utils.ParseHexColor(c.Canvas.Background)
	if err != nil {
		return utils.Canvas{Size: c.Canvas.Size, Background: utils.DefaultBackground}
	}
	return utils.Canvas{Size: c.Canvas.Size, Background: bg}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}
