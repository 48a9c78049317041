// Package config loads the run configuration: defaults, then an optional
// YAML file, then PASSLOG_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/star/passlog/internal/tle"
)

// Config is the complete run configuration.
type Config struct {
	Input      InputConfig     `yaml:"input"`
	Station    StationConfig   `yaml:"station"`
	Thresholds ThresholdConfig `yaml:"thresholds"`
	Window     WindowConfig    `yaml:"window"`
	Satellites []string        `yaml:"satellites" validate:"min=1,dive,required"`
	TLE        TLEConfig       `yaml:"tle"`
	Output     OutputConfig    `yaml:"output"`
	Smoothing  SmoothingConfig `yaml:"smoothing"`
	Log        LogConfig       `yaml:"log"`
}

type InputConfig struct {
	Folder  string `yaml:"folder"`
	Pattern string `yaml:"pattern" validate:"required"`
	Marker  string `yaml:"marker" validate:"required"`
}

// StationConfig is the terminal's geodetic position.
type StationConfig struct {
	Latitude  float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `yaml:"longitude" validate:"gte=-180,lte=180"`
	AltitudeM float64 `yaml:"altitude_m" validate:"gte=-500,lte=10000"`
}

type ThresholdConfig struct {
	MinElevation   float64 `yaml:"min_elevation_deg" validate:"gte=0,lt=90"`
	RSSIDetect     float64 `yaml:"rssi_detect"`
	RSSIMaxDisplay float64 `yaml:"rssi_max_display" validate:"gtfield=RSSIDetect"`
}

// WindowConfig bounds the observation window. A zero bound is open.
type WindowConfig struct {
	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`
}

type TLEConfig struct {
	SourceURL string        `yaml:"source_url" validate:"required"`
	CacheDir  string        `yaml:"cache_dir" validate:"required"`
	MaxAge    time.Duration `yaml:"max_age" validate:"gte=0"`
	Offline   bool          `yaml:"offline"`
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
}

type OutputConfig struct {
	Dir    string `yaml:"dir" validate:"required"`
	Width  int    `yaml:"width" validate:"gte=200"`
	Height int    `yaml:"height" validate:"gte=200"`
}

type SmoothingConfig struct {
	Window int `yaml:"window" validate:"gte=1"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Input: InputConfig{Folder: ".", Pattern: "*.csv", Marker: "HK"},
		Thresholds: ThresholdConfig{
			MinElevation:   5,
			RSSIDetect:     4,
			RSSIMaxDisplay: 18,
		},
		Window: WindowConfig{
			Start: time.Date(2022, 2, 4, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2022, 2, 5, 23, 59, 59, 0, time.UTC),
		},
		Satellites: []string{
			"ASTROCAST-0101", "ASTROCAST-0102", "ASTROCAST-0103", "ASTROCAST-0104", "ASTROCAST-0105",
			"ASTROCAST-0201", "ASTROCAST-0202", "ASTROCAST-0203", "ASTROCAST-0204", "ASTROCAST-0205",
		},
		TLE: TLEConfig{
			SourceURL: tle.DefaultSourceURL,
			CacheDir:  "tle",
			MaxAge:    24 * time.Hour,
			Timeout:   30 * time.Second,
		},
		Output:    OutputConfig{Dir: "plots", Width: 1200, Height: 900},
		Smoothing: SmoothingConfig{Window: 8},
		Log:       LogConfig{Level: "info", Format: "json"},
	}
}

// LoadDotEnv loads variables from a .env file in the working directory, if
// one exists. Variables already set in the environment win.
func LoadDotEnv(logger *slog.Logger) {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		logger.Warn("failed to load .env file", "error", err)
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment, then validates it.
func Load(path string, logger *slog.Logger) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg, logger)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field ranges and cross-field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !c.Window.Start.IsZero() && !c.Window.End.IsZero() && !c.Window.End.After(c.Window.Start) {
		return fmt.Errorf("invalid configuration: window end %s not after start %s",
			c.Window.End.Format(time.RFC3339), c.Window.Start.Format(time.RFC3339))
	}
	return nil
}

// InputPattern returns the glob matching the input log files.
func (c *Config) InputPattern() string {
	return filepath.Join(c.Input.Folder, c.Input.Pattern)
}

// LoaderConfig returns the TLE loader settings.
func (c *Config) LoaderConfig() tle.LoaderConfig {
	return tle.LoaderConfig{
		SourceURL: c.TLE.SourceURL,
		CacheDir:  c.TLE.CacheDir,
		MaxAge:    c.TLE.MaxAge,
		Offline:   c.TLE.Offline,
		Timeout:   c.TLE.Timeout,
	}
}
