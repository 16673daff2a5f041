// Package config provides Viper-based configuration loading for the
// battle simulator.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulationConfig holds the batch-run settings.
type SimulationConfig struct {
	// MaxRounds caps a single battle; hitting the cap is a draw.
	MaxRounds int `mapstructure:"max_rounds"`
	// Battles is how many battles to simulate in the batch.
	Battles int `mapstructure:"battles"`
	// Parallelism bounds concurrent battles; 0 means one per battle.
	Parallelism int `mapstructure:"parallelism"`
	// Seed is the batch master seed; per-battle seeds derive from it.
	Seed uint64 `mapstructure:"seed"`
	// Strategy is the targeting strategy: "nearest", "weakest", or
	// "highest_threat".
	Strategy string `mapstructure:"strategy"`
	// Preset names a built-in mechanics preset ("mvp", "roguelike",
	// "tactical"); empty uses the mechanics file instead.
	Preset string `mapstructure:"preset"`
	// MinDamage is the combat kernel damage floor.
	MinDamage int `mapstructure:"min_damage"`
}

// PathsConfig holds input file locations.
type PathsConfig struct {
	// Roster is the scenario file defining both teams.
	Roster string `mapstructure:"roster"`
	// Mechanics is the mechanics toggle file; ignored when a preset is set.
	Mechanics string `mapstructure:"mechanics"`
	// Scripts is the optional Lua hook directory; empty disables hooks.
	Scripts string `mapstructure:"scripts"`
}

// ScriptingConfig holds Lua sandbox settings.
type ScriptingConfig struct {
	// InstructionLimit caps Lua opcodes per hook call; 0 uses the
	// sandbox default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Paths      PathsConfig      `mapstructure:"paths"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Paths.Roster == "" {
		errs = append(errs, "paths.roster must not be empty")
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.MaxRounds < 1 {
		errs = append(errs, fmt.Sprintf("simulation.max_rounds must be >= 1, got %d", s.MaxRounds))
	}
	if s.Battles < 1 {
		errs = append(errs, fmt.Sprintf("simulation.battles must be >= 1, got %d", s.Battles))
	}
	if s.Parallelism < 0 {
		errs = append(errs, fmt.Sprintf("simulation.parallelism must be >= 0, got %d", s.Parallelism))
	}
	validStrategies := map[string]bool{"nearest": true, "weakest": true, "highest_threat": true}
	if !validStrategies[s.Strategy] {
		errs = append(errs, fmt.Sprintf("simulation.strategy must be one of [nearest, weakest, highest_threat], got %q", s.Strategy))
	}
	if s.Preset != "" {
		validPresets := map[string]bool{"mvp": true, "roguelike": true, "tactical": true}
		if !validPresets[s.Preset] {
			errs = append(errs, fmt.Sprintf("simulation.preset must be one of [mvp, roguelike, tactical], got %q", s.Preset))
		}
	}
	if s.MinDamage < 0 {
		errs = append(errs, fmt.Sprintf("simulation.min_damage must be >= 0, got %d", s.MinDamage))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with WARBAND_ prefix
	v.SetEnvPrefix("WARBAND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers every default value on v. Exposed so the CLI can
// layer flags over a defaulted Viper instance.
func SetDefaults(v *viper.Viper) { setDefaults(v) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("simulation.max_rounds", 100)
	v.SetDefault("simulation.battles", 1)
	v.SetDefault("simulation.parallelism", 0)
	v.SetDefault("simulation.seed", 1)
	v.SetDefault("simulation.strategy", "nearest")
	v.SetDefault("simulation.min_damage", 1)

	v.SetDefault("paths.roster", "configs/roster.yaml")
	v.SetDefault("paths.mechanics", "configs/mechanics.yaml")

	v.SetDefault("scripting.instruction_limit", 0)
}
