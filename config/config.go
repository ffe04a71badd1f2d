// Package config loads solver settings from an optional YAML file and
// TWOPHASE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"q.log/twophase/simplex"
)

const EnvPrefix = "TWOPHASE"

type Config struct {
	Solver SolverConfig `mapstructure:"solver"`
	Batch  BatchConfig  `mapstructure:"batch"`
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
}

type SolverConfig struct {
	Tolerance     float64 `mapstructure:"tolerance"      validate:"gt=0,lt=1"`
	MaxIterations int     `mapstructure:"max_iterations" validate:"min=1"`
	Pricing       string  `mapstructure:"pricing"        validate:"oneof=dantzig bland"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers" validate:"min=1"`
}

type OutputConfig struct {
	// Precision is the number of decimals printed by the table renderer.
	Precision int `mapstructure:"precision" validate:"min=0,max=12"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("solver.tolerance", simplex.DefaultTolerance)
	v.SetDefault("solver.max_iterations", simplex.DefaultMaxIterations)
	v.SetDefault("solver.pricing", simplex.Dantzig.String())
	v.SetDefault("batch.workers", 4)
	v.SetDefault("output.precision", 4)
	v.SetDefault("log.level", "info")
}

// New returns a viper instance with defaults and environment overrides.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path into v when path is not empty, then decodes and validates
// the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config error: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// SolverOptions translates the solver section into simplex options.
func (c *Config) SolverOptions() ([]simplex.Option, error) {
	rule, err := simplex.ParsePricingRule(c.Solver.Pricing)
	if err != nil {
		return nil, errors.Join(errors.New("config validation failed"), err)
	}
	return []simplex.Option{
		simplex.WithTolerance(c.Solver.Tolerance),
		simplex.WithMaxIterations(c.Solver.MaxIterations),
		simplex.WithPricingRule(rule),
	}, nil
}
