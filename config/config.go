// Package config provides configuration loading and access for the pet.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Pet       PetConfig       `yaml:"pet"`
	System    SystemConfig    `yaml:"system"`
	Game      GameConfig      `yaml:"game"`
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PetConfig holds pet vitals and metabolism parameters.
type PetConfig struct {
	StartingSizeMB    int     `yaml:"starting_size_mb"`
	MaxSizeMB         int     `yaml:"max_size_mb"`     // 0 = uncapped
	MetabolismRate    float64 `yaml:"metabolism_rate"` // MB per second
	HungerRate        float64 `yaml:"hunger_rate"`     // hunger per second
	HappinessDecay    float64 `yaml:"happiness_decay"` // happiness lost per second while hungry
	StartingHunger    float64 `yaml:"starting_hunger"`
	StartingHappiness float64 `yaml:"starting_happiness"`
}

// SystemConfig holds host memory safety parameters.
type SystemConfig struct {
	MinFreeRAMMB       int `yaml:"min_free_ram_mb"`
	WarningThresholdMB int `yaml:"warning_threshold_mb"`
	MonitorIntervalMs  int `yaml:"monitor_interval_ms"`
	FallbackTotalMB    int `yaml:"fallback_total_mb"`
	FallbackFreeMB     int `yaml:"fallback_free_mb"`
	HistorySize        int `yaml:"history_size"`
}

// GameConfig holds session parameters.
type GameConfig struct {
	TickIntervalMs      int        `yaml:"tick_interval_ms"`
	WarningCooldownSec  float64    `yaml:"warning_cooldown_sec"`
	MessageTTLSec       float64    `yaml:"message_ttl_sec"`
	MaxMessages         int        `yaml:"max_messages"`
	AutosaveIntervalSec int        `yaml:"autosave_interval_sec"` // 0 disables
	SoundEnabled        bool       `yaml:"sound_enabled"`
	Difficulty          Difficulty `yaml:"difficulty"`
	SavePath            string     `yaml:"save_path"`
}

// GraphicsConfig holds terminal display settings.
type GraphicsConfig struct {
	UseColors bool `yaml:"use_colors"`
	DebugMode bool `yaml:"debug_mode"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"`
}

// LogConfig holds structured log output settings.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// MetricsConfig holds the Prometheus listener address.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Difficulty scales how fast the pet gets hungry and digests.
type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyNormal    Difficulty = "normal"
	DifficultyHard      Difficulty = "hard"
	DifficultyNightmare Difficulty = "nightmare"
)

// Multiplier returns the rate scale applied to hunger and metabolism.
func (d Difficulty) Multiplier() float64 {
	switch d {
	case DifficultyEasy:
		return 0.5
	case DifficultyHard:
		return 1.5
	case DifficultyNightmare:
		return 2.0
	default:
		return 1.0
	}
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	HungerRate      float64       // Pet.HungerRate scaled by difficulty
	MetabolismRate  float64       // Pet.MetabolismRate scaled by difficulty
	TickInterval    time.Duration // Game.TickIntervalMs
	MonitorInterval time.Duration // System.MonitorIntervalMs
	WarningCooldown time.Duration
	MessageTTL      time.Duration
	Autosave        time.Duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) validate() error {
	c.Game.Difficulty = Difficulty(strings.ToLower(string(c.Game.Difficulty)))
	switch c.Game.Difficulty {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyNightmare:
	case "":
		c.Game.Difficulty = DifficultyNormal
	default:
		return fmt.Errorf("unknown difficulty %q", c.Game.Difficulty)
	}
	if c.Pet.StartingSizeMB < 0 {
		return fmt.Errorf("pet.starting_size_mb must not be negative, got %d", c.Pet.StartingSizeMB)
	}
	if c.System.MinFreeRAMMB < 0 {
		return fmt.Errorf("system.min_free_ram_mb must not be negative, got %d", c.System.MinFreeRAMMB)
	}
	return nil
}

// SetDifficulty switches the difficulty and recomputes derived rates.
func (c *Config) SetDifficulty(d Difficulty) error {
	prev := c.Game.Difficulty
	c.Game.Difficulty = d
	if err := c.validate(); err != nil {
		c.Game.Difficulty = prev
		return err
	}
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	mult := c.Game.Difficulty.Multiplier()
	c.Derived.HungerRate = c.Pet.HungerRate * mult
	c.Derived.MetabolismRate = c.Pet.MetabolismRate * mult

	c.Derived.TickInterval = millis(c.Game.TickIntervalMs, 200)
	c.Derived.MonitorInterval = millis(c.System.MonitorIntervalMs, 1000)
	c.Derived.WarningCooldown = time.Duration(c.Game.WarningCooldownSec * float64(time.Second))
	c.Derived.MessageTTL = time.Duration(c.Game.MessageTTLSec * float64(time.Second))
	c.Derived.Autosave = time.Duration(c.Game.AutosaveIntervalSec) * time.Second

	if c.Game.MaxMessages < 1 {
		c.Game.MaxMessages = 1
	}
	if c.System.HistorySize < 2 {
		c.System.HistorySize = 2
	}
}

func millis(ms, fallback int) time.Duration {
	if ms <= 0 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// YAML renders the configuration as YAML bytes.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}
