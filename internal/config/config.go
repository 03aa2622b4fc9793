// Package config builds the immutable session configuration: the default
// ParameterSet, drag sensitivity, worker mode, logging and metrics settings.
package config

import (
	"fmt"
	"os"

	"kinky/internal/models"

	"gopkg.in/yaml.v3"
)

const (
	WorkerModeLocal   = "local"
	WorkerModeProcess = "process"
)

// Sensitivity controls how pointer travel maps onto parameter changes.
type Sensitivity struct {
	// ExpFactor is the drag distance that changes a coarse parameter tenfold.
	ExpFactor float64 `yaml:"exp_factor"`
	// FineReduction further slows the enhancement radius axis.
	FineReduction float64 `yaml:"fine_reduction"`
	// PrecisionFactor slows every axis while the precision modifier is held.
	PrecisionFactor float64 `yaml:"precision_factor"`
}

type WorkerConfig struct {
	Mode string `yaml:"mode"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Config is constructed once per session and passed explicitly.
type Config struct {
	Defaults    models.ParameterSet `yaml:"defaults"`
	Sensitivity Sensitivity         `yaml:"sensitivity"`
	Worker      WorkerConfig        `yaml:"worker"`
	Log         LogConfig           `yaml:"log"`
	Metrics     MetricsConfig       `yaml:"metrics"`
}

func Default() Config {
	return Config{
		Defaults: models.DefaultParameters(),
		Sensitivity: Sensitivity{
			ExpFactor:       200,
			FineReduction:   5,
			PrecisionFactor: 5,
		},
		Worker: WorkerConfig{Mode: WorkerModeLocal},
		Log:    LogConfig{Level: "info"},
	}
}

// Load layers an optional YAML file and then environment overrides on top of
// Default, and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("KINKY_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("KINKY_WORKER_MODE"); ok && v != "" {
		c.Worker.Mode = v
	}
	if v, ok := lookup("KINKY_METRICS_ADDR"); ok {
		c.Metrics.Addr = v
	}
}

// Validate rejects values the mapper or scheduler cannot work with.
func (c Config) Validate() error {
	if err := c.Defaults.Validate(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}

	positive := []struct {
		name  string
		value float64
	}{
		{"sensitivity.exp_factor", c.Sensitivity.ExpFactor},
		{"sensitivity.fine_reduction", c.Sensitivity.FineReduction},
		{"sensitivity.precision_factor", c.Sensitivity.PrecisionFactor},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			return &models.ValidationError{Field: p.name, Value: p.value, Reason: "must be positive"}
		}
	}

	switch c.Worker.Mode {
	case WorkerModeLocal, WorkerModeProcess:
	default:
		return fmt.Errorf("worker.mode must be %q or %q, got %q", WorkerModeLocal, WorkerModeProcess, c.Worker.Mode)
	}
	return nil
}
