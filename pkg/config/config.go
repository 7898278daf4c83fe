// Package config loads run configuration from YAML files and environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Input formats accepted by the readers.
const (
	FormatDense  = "dense"
	FormatSparse = "sparse"
	FormatPoints = "points"
)

type Config struct {
	Algorithm Algorithm `yaml:"algorithm"`
	Input     Input     `yaml:"input"`
	Output    Output    `yaml:"output"`
}

type Algorithm struct {
	MaxIterations int     `yaml:"max_iterations"`
	Damping       float64 `yaml:"damping"`
	Workers       int     `yaml:"workers"`
}

type Input struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

type Output struct {
	Path string `yaml:"path"`
}

func Default() *Config {
	return &Config{
		Algorithm: Algorithm{
			MaxIterations: 15,
			Damping:       0.9,
		},
		Input: Input{
			Format: FormatSparse,
		},
	}
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}
	return config, nil
}

// FromEnv builds a configuration from AP_* environment variables, falling
// back to defaults for anything unset.
func FromEnv() *Config {
	return &Config{
		Algorithm: Algorithm{
			MaxIterations: getEnvInt("AP_MAX_ITERATIONS", 15),
			Damping:       getEnvFloat("AP_DAMPING", 0.9),
			Workers:       getEnvInt("AP_WORKERS", 0),
		},
		Input: Input{
			Path:   getEnv("AP_INPUT_PATH", ""),
			Format: getEnv("AP_INPUT_FORMAT", FormatSparse),
		},
		Output: Output{
			Path: getEnv("AP_OUTPUT_PATH", ""),
		},
	}
}

func (c *Config) Validate() error {
	if c.Algorithm.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", c.Algorithm.MaxIterations)
	}
	if c.Algorithm.Damping < 0 || c.Algorithm.Damping >= 1 {
		return fmt.Errorf("damping must be in [0, 1), got %v", c.Algorithm.Damping)
	}
	switch c.Input.Format {
	case FormatDense, FormatSparse, FormatPoints:
	default:
		return fmt.Errorf("unknown input format %q", c.Input.Format)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
