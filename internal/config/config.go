package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pbaille/fretnote/internal/fretboard"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Engine bounds for random positions
	Engine fretboard.Config `yaml:",inline"`

	// API server
	Addr      string `yaml:"addr"`
	MaxRounds int    `yaml:"max_rounds"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		// MaxFretGenerate stays zero so fretboard.New derives it from Frets.
		Engine: fretboard.Config{
			Strings: fretboard.DefaultStrings,
			Frets:   fretboard.DefaultFrets,
		},
		Addr:      ":8080",
		MaxRounds: 1024,
		LogLevel:  "info",
	}
}

// Load layers defaults, the optional YAML file at path, then FRETNOTE_*
// environment variables. Engine values are validated by fretboard.New.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	var err error
	if cfg.Engine.Strings, err = getEnvInt("FRETNOTE_STRINGS", cfg.Engine.Strings); err != nil {
		return cfg, err
	}
	if cfg.Engine.Frets, err = getEnvInt("FRETNOTE_FRETS", cfg.Engine.Frets); err != nil {
		return cfg, err
	}
	if cfg.Engine.MaxFretGenerate, err = getEnvInt("FRETNOTE_MAX_FRET_GENERATE", cfg.Engine.MaxFretGenerate); err != nil {
		return cfg, err
	}
	if cfg.MaxRounds, err = getEnvInt("FRETNOTE_MAX_ROUNDS", cfg.MaxRounds); err != nil {
		return cfg, err
	}
	cfg.Addr = getEnv("FRETNOTE_ADDR", cfg.Addr)
	cfg.LogLevel = getEnv("FRETNOTE_LOG_LEVEL", cfg.LogLevel)

	if cfg.MaxRounds <= 0 {
		return cfg, fmt.Errorf("max_rounds must be positive, got %d", cfg.MaxRounds)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
