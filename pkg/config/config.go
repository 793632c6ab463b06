// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/gunass/terminal-space-program/pkg/flight"
)

// EnvPrefix prefixes environment overrides, e.g. TSP_PHYSICS_GRAVITY.
const EnvPrefix = "TSP"

// Config contains everything that used to be a process-wide constant.
type Config struct {
	Physics PhysicsConfig `json:"physics" mapstructure:"physics"`
	Field   FieldConfig   `json:"field" mapstructure:"field"`
	Glyphs  GlyphConfig   `json:"glyphs" mapstructure:"glyphs"`
	Display DisplayConfig `json:"display" mapstructure:"display"`
}

// PhysicsConfig contains integration settings
type PhysicsConfig struct {
	Gravity      float64 `json:"gravity" mapstructure:"gravity"`
	FrameRate    int     `json:"frameRate" mapstructure:"frameRate"`
	Scaled       bool    `json:"scaled" mapstructure:"scaled"`
	SteerBySlope bool    `json:"steerBySlope" mapstructure:"steerBySlope"`
	// TrackingRange ends a flight once the rocket is this far from the pad
	// on either axis. Zero keeps tracking forever.
	TrackingRange float64 `json:"trackingRange" mapstructure:"trackingRange"`
}

// FieldConfig contains the grid dimensions and its footer line
type FieldConfig struct {
	Width  int    `json:"width" mapstructure:"width"`
	Height int    `json:"height" mapstructure:"height"`
	Footer string `json:"footer" mapstructure:"footer"`
}

// GlyphConfig contains the rocket symbols, one character each
type GlyphConfig struct {
	FromSlope bool   `json:"fromSlope" mapstructure:"fromSlope"`
	Vertical  string `json:"vertical" mapstructure:"vertical"`
	Rising    string `json:"rising" mapstructure:"rising"`
	Level     string `json:"level" mapstructure:"level"`
	Falling   string `json:"falling" mapstructure:"falling"`
	Crash     string `json:"crash" mapstructure:"crash"`
}

// DisplayConfig contains terminal output settings
type DisplayConfig struct {
	Separator   string `json:"separator" mapstructure:"separator"`
	ClearScreen bool   `json:"clearScreen" mapstructure:"clearScreen"`
	// Pace sleeps one frame interval between ticks.
	Pace bool `json:"pace" mapstructure:"pace"`
}

// DefaultConfig returns the classic 100x30 field at 5 frames per second.
func DefaultConfig() *Config {
	return &Config{
		Physics: PhysicsConfig{
			Gravity:       9.8,
			FrameRate:     5,
			Scaled:        true,
			SteerBySlope:  true,
			TrackingRange: 1e6,
		},
		Field: FieldConfig{
			Width:  100,
			Height: 30,
			Footer: strings.Repeat("—", 5) + strings.Repeat("_", 95),
		},
		Glyphs: GlyphConfig{
			FromSlope: true,
			Vertical:  "|",
			Rising:    "/",
			Level:     "—",
			Falling:   "\\",
			Crash:     "&",
		},
		Display: DisplayConfig{
			Separator: strings.Repeat("-", 89),
			Pace:      true,
		},
	}
}

// LoadConfig reads a JSON, TOML or YAML file over the defaults and applies
// TSP_* environment overrides. An empty path loads defaults and environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("physics.gravity", d.Physics.Gravity)
	v.SetDefault("physics.frameRate", d.Physics.FrameRate)
	v.SetDefault("physics.scaled", d.Physics.Scaled)
	v.SetDefault("physics.steerBySlope", d.Physics.SteerBySlope)
	v.SetDefault("physics.trackingRange", d.Physics.TrackingRange)
	v.SetDefault("field.width", d.Field.Width)
	v.SetDefault("field.height", d.Field.Height)
	v.SetDefault("field.footer", d.Field.Footer)
	v.SetDefault("glyphs.fromSlope", d.Glyphs.FromSlope)
	v.SetDefault("glyphs.vertical", d.Glyphs.Vertical)
	v.SetDefault("glyphs.rising", d.Glyphs.Rising)
	v.SetDefault("glyphs.level", d.Glyphs.Level)
	v.SetDefault("glyphs.falling", d.Glyphs.Falling)
	v.SetDefault("glyphs.crash", d.Glyphs.Crash)
	v.SetDefault("display.separator", d.Display.Separator)
	v.SetDefault("display.clearScreen", d.Display.ClearScreen)
	v.SetDefault("display.pace", d.Display.Pace)
}

// SaveConfig writes a configuration as indented JSON
func SaveConfig(config *Config, path string) error {
	if config == nil {
		return errors.New("cannot save nil config")
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks physics, dimensions and glyphs.
func (c *Config) Validate() error {
	if math.IsNaN(c.Physics.Gravity) || math.IsInf(c.Physics.Gravity, 0) {
		return fmt.Errorf("gravity must be finite, got %v", c.Physics.Gravity)
	}
	if math.IsNaN(c.Physics.TrackingRange) || c.Physics.TrackingRange < 0 {
		return fmt.Errorf("tracking range must be zero or positive, got %v", c.Physics.TrackingRange)
	}
	if c.Physics.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive, got %d", c.Physics.FrameRate)
	}
	if c.Field.Width <= 0 || c.Field.Height <= 0 {
		return fmt.Errorf("field must have positive dimensions, got %dx%d", c.Field.Width, c.Field.Height)
	}
	glyphs := map[string]string{
		"vertical": c.Glyphs.Vertical,
		"rising":   c.Glyphs.Rising,
		"level":    c.Glyphs.Level,
		"falling":  c.Glyphs.Falling,
		"crash":    c.Glyphs.Crash,
	}
	for name, g := range glyphs {
		if utf8.RuneCountInString(g) != 1 {
			return fmt.Errorf("glyph %q must be a single character, got %q", name, g)
		}
	}
	return nil
}

// FlightSettings converts the config into simulator settings.
func (c *Config) FlightSettings() flight.Settings {
	return flight.Settings{
		Gravity:       c.Physics.Gravity,
		FrameRate:     float64(c.Physics.FrameRate),
		Scaled:        c.Physics.Scaled,
		SlopeGlyphs:   c.Glyphs.FromSlope,
		SteerBySlope:  c.Physics.SteerBySlope,
		TrackingRange: c.Physics.TrackingRange,
		Glyphs: flight.Glyphs{
			Vertical: firstRune(c.Glyphs.Vertical),
			Rising:   firstRune(c.Glyphs.Rising),
			Level:    firstRune(c.Glyphs.Level),
			Falling:  firstRune(c.Glyphs.Falling),
			Crash:    firstRune(c.Glyphs.Crash),
		},
	}
}

// EngineThrust converts thrust as entered by the pilot into the per-frame
// thrust the simulator expects. Scaled flights take thrust per frame.
func (c *Config) EngineThrust(entered float64) float64 {
	if !c.Physics.Scaled {
		return entered
	}
	return entered / float64(c.Physics.FrameRate)
}

// FrameInterval is the wall-clock time between ticks when pacing.
func (c *Config) FrameInterval() time.Duration {
	if !c.Display.Pace {
		return 0
	}
	return time.Second / time.Duration(c.Physics.FrameRate)
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
