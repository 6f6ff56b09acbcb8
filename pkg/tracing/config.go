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

package tracing

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// SinkFileName is the default name of the telemetry sink file created inside
// the harness output directory when the file exporter is selected.
const SinkFileName = "opentelemetry.json"

// Config represents the span recorder configuration.
type Config struct {
	// Enabled toggles span recording. When false every span is a no-op.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// ServiceName names the tracer and the OTel resource.
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`

	// Sampling selects the sampling strategy.
	Sampling SamplingConfig `yaml:"sampling" mapstructure:"sampling"`

	// Exporter selects where recorded spans go.
	Exporter ExporterConfig `yaml:"exporter" mapstructure:"exporter"`

	// ResourceAttributes are attached to the OTel resource, useful for
	// tagging runs with machine or branch identifiers.
	ResourceAttributes map[string]string `yaml:"resource_attributes" mapstructure:"resource_attributes"`
}

// SamplingConfig represents sampling strategy configuration.
type SamplingConfig struct {
	Type string  `yaml:"type" mapstructure:"type"` // always_on, always_off, traceidratio
	Rate float64 `yaml:"rate" mapstructure:"rate"` // 0.0-1.0 for traceidratio
}

// ExporterConfig represents the exporter configuration.
type ExporterConfig struct {
	Type string `yaml:"type" mapstructure:"type"` // console, file, otlp

	// Path is the telemetry sink file for the file exporter. Empty means
	// SinkFileName inside the harness output directory.
	Path string `yaml:"path" mapstructure:"path"`

	// OTLP settings.
	Endpoint    string            `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure    bool              `yaml:"insecure" mapstructure:"insecure"`
	Headers     map[string]string `yaml:"headers" mapstructure:"headers"`
	Timeout     string            `yaml:"timeout" mapstructure:"timeout"`
	Compression string            `yaml:"compression" mapstructure:"compression"` // gzip, none
}

// DefaultConfig returns the default span recorder configuration.
//
// Benchmark runs want every span on disk, so sampling defaults to always_on
// and the exporter defaults to the telemetry sink file.
func DefaultConfig() *Config {
	return &Config{
		Enabled:     true,
		ServiceName: "perfunit",
		Sampling: SamplingConfig{
			Type: "always_on",
		},
		Exporter: ExporterConfig{
			Type:    "file",
			Timeout: "10s",
		},
		ResourceAttributes: map[string]string{},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil // nothing else matters when recording is off
	}

	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required when tracing is enabled")
	}

	if err := c.Sampling.Validate(); err != nil {
		return fmt.Errorf("sampling configuration invalid: %w", err)
	}

	if err := c.Exporter.Validate(); err != nil {
		return fmt.Errorf("exporter configuration invalid: %w", err)
	}

	return nil
}

// Validate validates the sampling configuration.
func (s *SamplingConfig) Validate() error {
	switch s.Type {
	case "always_on", "always_off":
	case "traceidratio":
		if s.Rate < 0.0 || s.Rate > 1.0 {
			return fmt.Errorf("sampling rate must be between 0.0 and 1.0, got %f", s.Rate)
		}
	case "":
		return fmt.Errorf("sampling type is required")
	default:
		return fmt.Errorf("unsupported sampling type: %s", s.Type)
	}
	return nil
}

// Validate validates the exporter configuration.
func (e *ExporterConfig) Validate() error {
	switch e.Type {
	case "console":
	case "file":
		// Path may stay empty; the harness resolves it against the
		// output directory at initialization time.
	case "otlp":
		if e.Endpoint == "" {
			return fmt.Errorf("otlp exporter requires endpoint")
		}
	case "":
		return fmt.Errorf("exporter type is required")
	default:
		return fmt.Errorf("unsupported exporter type: %s", e.Type)
	}

	if e.Timeout != "" {
		if _, err := time.ParseDuration(e.Timeout); err != nil {
			return fmt.Errorf("invalid timeout format: %w", err)
		}
	}

	if e.Compression != "" && e.Compression != "gzip" && e.Compression != "none" {
		return fmt.Errorf("unsupported compression type: %s", e.Compression)
	}

	return nil
}

// GetTimeout returns the parsed timeout duration or a default value.
func (e *ExporterConfig) GetTimeout() time.Duration {
	if e.Timeout == "" {
		return 10 * time.Second
	}

	duration, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 10 * time.Second
	}

	return duration
}

// ApplyEnvironmentOverrides applies environment variable overrides to the
// configuration. Variables use the PERFUNIT_TRACING_ prefix.
func (c *Config) ApplyEnvironmentOverrides() {
	if enabled := os.Getenv("PERFUNIT_TRACING_ENABLED"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			c.Enabled = val
		}
	}

	if serviceName := os.Getenv("PERFUNIT_TRACING_SERVICE_NAME"); serviceName != "" {
		c.ServiceName = serviceName
	}

	if samplingType := os.Getenv("PERFUNIT_TRACING_SAMPLING_TYPE"); samplingType != "" {
		c.Sampling.Type = samplingType
	}

	if samplingRate := os.Getenv("PERFUNIT_TRACING_SAMPLING_RATE"); samplingRate != "" {
		if val, err := strconv.ParseFloat(samplingRate, 64); err == nil {
			c.Sampling.Rate = val
		}
	}

	if exporterType := os.Getenv("PERFUNIT_TRACING_EXPORTER_TYPE"); exporterType != "" {
		c.Exporter.Type = exporterType
	}

	if sinkPath := os.Getenv("PERFUNIT_TRACING_EXPORTER_PATH"); sinkPath != "" {
		c.Exporter.Path = sinkPath
	}

	if endpoint := os.Getenv("PERFUNIT_TRACING_EXPORTER_ENDPOINT"); endpoint != "" {
		c.Exporter.Endpoint = endpoint
	}

	if timeout := os.Getenv("PERFUNIT_TRACING_EXPORTER_TIMEOUT"); timeout != "" {
		c.Exporter.Timeout = timeout
	}

	if insecure := os.Getenv("PERFUNIT_TRACING_EXPORTER_INSECURE"); insecure != "" {
		if val, err := strconv.ParseBool(insecure); err == nil {
			c.Exporter.Insecure = val
		}
	}
}
