/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user-scoped inkboard configuration: a YAML file
// layered over Defaults, with INK_* environment variables applied last.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	applog "inkboard/internal/log"
)

// EnvPrefix is the prefix of every environment override, e.g. INK_CANVAS_GRID_SIZE.
const EnvPrefix = "INK"

// EnvConfigFile points Load at an explicit config file.
const EnvConfigFile = "INK_CONFIG"

// CanvasConfig tunes the drawing surface and interaction engine.
type CanvasConfig struct {
	GridSize        float64 `yaml:"grid_size" envconfig:"GRID_SIZE"`
	ShowGrid        bool    `yaml:"show_grid" envconfig:"SHOW_GRID"`
	Snap            bool    `yaml:"snap" envconfig:"SNAP"`
	GridDotCap      int     `yaml:"grid_dot_cap" envconfig:"GRID_DOT_CAP"`
	HistoryDepth    int     `yaml:"history_depth" envconfig:"HISTORY_DEPTH"`
	HitTolerance    float64 `yaml:"hit_tolerance" envconfig:"HIT_TOLERANCE"`
	GuideTolerance  float64 `yaml:"guide_tolerance" envconfig:"GUIDE_TOLERANCE"`
	RotationSnapDeg float64 `yaml:"rotation_snap_deg" envconfig:"ROTATION_SNAP_DEG"`
	MinZoom         float64 `yaml:"min_zoom" envconfig:"MIN_ZOOM"`
	MaxZoom         float64 `yaml:"max_zoom" envconfig:"MAX_ZOOM"`
	Background      string  `yaml:"background" envconfig:"BACKGROUND"`
}

// ToolsConfig holds the style new objects are created with.
type ToolsConfig struct {
	PenColor         string  `yaml:"pen_color" envconfig:"PEN_COLOR"`
	PenWidth         float64 `yaml:"pen_width" envconfig:"PEN_WIDTH"`
	ShapeFill        string  `yaml:"shape_fill" envconfig:"SHAPE_FILL"`
	ShapeStroke      string  `yaml:"shape_stroke" envconfig:"SHAPE_STROKE"`
	ShapeStrokeWidth float64 `yaml:"shape_stroke_width" envconfig:"SHAPE_STROKE_WIDTH"`
	TextFont         string  `yaml:"text_font" envconfig:"TEXT_FONT"`
	TextSize         float64 `yaml:"text_size" envconfig:"TEXT_SIZE"`
	TextColor        string  `yaml:"text_color" envconfig:"TEXT_COLOR"`
}

// AssetsConfig controls where dropped pixel data is cached.
type AssetsConfig struct {
	// CachePath is the SQLite blob cache; empty keeps assets in memory only.
	CachePath     string `yaml:"cache_path" envconfig:"CACHE_PATH"`
	MemoryEntries int    `yaml:"memory_entries" envconfig:"MEMORY_ENTRIES"`
	// MaxBytes caps the blob cache; least recently used blobs go first.
	MaxBytes int64 `yaml:"max_bytes" envconfig:"MAX_BYTES"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
	Source bool   `yaml:"source" envconfig:"SOURCE"`
	File   string `yaml:"file" envconfig:"FILE"`
}

// AppConfig is the persisted configuration document.
// config_version is bumped on backward-incompatible layout changes.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version" ignored:"true"`
	Canvas        CanvasConfig  `yaml:"canvas" envconfig:"CANVAS"`
	Tools         ToolsConfig   `yaml:"tools" envconfig:"TOOLS"`
	Assets        AssetsConfig  `yaml:"assets" envconfig:"ASSETS"`
	Logging       LoggingConfig `yaml:"logging" envconfig:"LOG"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas: CanvasConfig{
			GridSize:        20,
			ShowGrid:        true,
			Snap:            true,
			GridDotCap:      120,
			HistoryDepth:    50,
			HitTolerance:    6,
			GuideTolerance:  5,
			RotationSnapDeg: 15,
			MinZoom:         0.05,
			MaxZoom:         20,
			Background:      "#fafafa",
		},
		Tools: ToolsConfig{
			PenColor:         "#1e1e1e",
			PenWidth:         3,
			ShapeFill:        "transparent",
			ShapeStroke:      "#1e1e1e",
			ShapeStrokeWidth: 2,
			TextFont:         "Go",
			TextSize:         20,
			TextColor:        "#1e1e1e",
		},
		Assets:  AssetsConfig{MemoryEntries: 64, MaxBytes: 256 << 20},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// ConfigPath returns the per-user config file path, honoring INK_CONFIG.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Inkboard")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Inkboard")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "inkboard")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "inkboard")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file if present and applies environment overrides.
// A missing file is not an error.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), err
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit path.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// yaml.v3 leaves keys absent from the file at their default values.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Defaults(), fmt.Errorf("parse %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.normalize()
	return cfg, nil
}

// ApplyEnv overlays INK_* variables onto cfg. Unset variables leave fields untouched.
func ApplyEnv(cfg *AppConfig) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	return nil
}

// Save writes cfg as YAML to the user config path.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as YAML to path, creating parent directories.
func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Marshal renders cfg as YAML.
func Marshal(cfg AppConfig) ([]byte, error) { return yaml.Marshal(cfg) }

func (c *AppConfig) normalize() {
	d := Defaults()
	if c.Canvas.GridSize <= 0 {
		c.Canvas.GridSize = d.Canvas.GridSize
	}
	if c.Canvas.GridDotCap <= 0 {
		c.Canvas.GridDotCap = d.Canvas.GridDotCap
	}
	if c.Canvas.HistoryDepth <= 0 {
		c.Canvas.HistoryDepth = d.Canvas.HistoryDepth
	}
	if c.Canvas.HitTolerance < 0 {
		c.Canvas.HitTolerance = d.Canvas.HitTolerance
	}
	if c.Canvas.RotationSnapDeg <= 0 {
		c.Canvas.RotationSnapDeg = d.Canvas.RotationSnapDeg
	}
	if c.Canvas.MinZoom <= 0 || c.Canvas.MaxZoom < c.Canvas.MinZoom {
		c.Canvas.MinZoom, c.Canvas.MaxZoom = d.Canvas.MinZoom, d.Canvas.MaxZoom
	}
	if c.Tools.PenWidth <= 0 {
		c.Tools.PenWidth = d.Tools.PenWidth
	}
	if c.Tools.TextSize <= 0 {
		c.Tools.TextSize = d.Tools.TextSize
	}
	if c.Assets.MemoryEntries <= 0 {
		c.Assets.MemoryEntries = d.Assets.MemoryEntries
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// LogOptions maps the logging section onto logger options.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

// EnvOverrideFor reports the environment variable overriding a dotted yaml key
// such as "canvas.grid_size", if one is set.
func EnvOverrideFor(key string) (string, bool) {
	section, field, ok := strings.Cut(key, ".")
	if !ok {
		return "", false
	}
	if section == "logging" {
		section = "log"
	}
	name := strings.ToUpper(EnvPrefix + "_" + section + "_" + field)
	if _, set := os.LookupEnv(name); set {
		return name, true
	}
	return "", false
}
