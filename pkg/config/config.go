// Copyright © 2025 jackelyj <dreamerlyj@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//

// Package config loads harness configuration from perfunit.yaml and
// PERFUNIT_* environment variables, in that precedence order (env wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/innovationmech/perfunit/pkg/tracing"
)

// ConfigBaseName is the base name of the configuration file without
// extension.
const ConfigBaseName = "perfunit"

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "PERFUNIT"

// Config is the harness configuration.
type Config struct {
	// OutputDir is the output/log directory used for profiler output
	// files, the telemetry sink file and published metric artifacts.
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir" validate:"required"`

	// Attempts is the default measurement attempt count for benchmarks
	// that do not set their own.
	Attempts int `yaml:"attempts" mapstructure:"attempts" validate:"min=1"`

	// WarmupIterations is the default warmup iteration count.
	WarmupIterations int `yaml:"warmup_iterations" mapstructure:"warmup_iterations" validate:"min=0"`

	// SizePolicy controls what happens when a workload reports an input
	// size different from the expected one: ignore, warn or strict.
	SizePolicy string `yaml:"size_policy" mapstructure:"size_policy" validate:"oneof=ignore warn strict"`

	// Profiling configures the per-attempt profiler.
	Profiling ProfilingConfig `yaml:"profiling" mapstructure:"profiling"`

	// Tracing configures the span recorder.
	Tracing tracing.Config `yaml:"tracing" mapstructure:"tracing"`

	// Publishers selects which metric sinks receive published runs.
	Publishers PublishersConfig `yaml:"publishers" mapstructure:"publishers"`
}

// ProfilingConfig configures the per-attempt profiler.
type ProfilingConfig struct {
	// Enabled selects the built-in pprof CPU profiler. When false the
	// harness falls back to whatever is registered, or to the no-op.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// HeapSnapshot additionally dumps a heap profile after each attempt.
	HeapSnapshot bool `yaml:"heap_snapshot" mapstructure:"heap_snapshot"`
}

// PublishersConfig selects metric sinks.
type PublishersConfig struct {
	File       bool `yaml:"file" mapstructure:"file"`
	Prometheus bool `yaml:"prometheus" mapstructure:"prometheus"`
}

// DefaultConfig returns the built-in defaults: three attempts, one warmup
// iteration, file publication into a per-user temp directory.
func DefaultConfig() *Config {
	return &Config{
		OutputDir:        filepath.Join(os.TempDir(), "perfunit", "log"),
		Attempts:         3,
		WarmupIterations: 1,
		SizePolicy:       "ignore",
		Profiling: ProfilingConfig{
			Enabled: false,
		},
		Tracing: *tracing.DefaultConfig(),
		Publishers: PublishersConfig{
			File: true,
		},
	}
}

// Options configures Load.
type Options struct {
	// WorkDir is where the configuration file is looked up. Default ".".
	WorkDir string

	// ConfigFile overrides file discovery with an explicit path.
	ConfigFile string
}

// Load builds the configuration from defaults, an optional perfunit.yaml and
// PERFUNIT_* environment variables, then validates it.
func Load(options Options) (*Config, error) {
	if options.WorkDir == "" {
		options.WorkDir = "."
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// PERFUNIT_LOG_DIR is the documented override for the output
	// directory; PERFUNIT_OUTPUT_DIR works through the automatic mapping.
	if err := v.BindEnv("output_dir", "PERFUNIT_OUTPUT_DIR", "PERFUNIT_LOG_DIR"); err != nil {
		return nil, fmt.Errorf("bind output dir env: %w", err)
	}

	defaults := DefaultConfig()
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("attempts", defaults.Attempts)
	v.SetDefault("warmup_iterations", defaults.WarmupIterations)
	v.SetDefault("size_policy", defaults.SizePolicy)
	v.SetDefault("profiling.enabled", defaults.Profiling.Enabled)
	v.SetDefault("profiling.heap_snapshot", defaults.Profiling.HeapSnapshot)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	v.SetDefault("tracing.sampling.type", defaults.Tracing.Sampling.Type)
	v.SetDefault("tracing.sampling.rate", defaults.Tracing.Sampling.Rate)
	v.SetDefault("tracing.exporter.type", defaults.Tracing.Exporter.Type)
	v.SetDefault("tracing.exporter.timeout", defaults.Tracing.Exporter.Timeout)
	v.SetDefault("publishers.file", defaults.Publishers.File)
	v.SetDefault("publishers.prometheus", defaults.Publishers.Prometheus)

	if options.ConfigFile != "" {
		v.SetConfigFile(options.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", options.ConfigFile, err)
		}
	} else {
		v.SetConfigName(ConfigBaseName)
		v.AddConfigPath(options.WorkDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
			// No file is a valid setup; defaults plus env apply.
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Tracing.ApplyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural constraints and the tracing sub-config.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid harness config: %w", err)
	}
	if err := c.Tracing.Validate(); err != nil {
		return fmt.Errorf("invalid harness config: %w", err)
	}
	return nil
}
