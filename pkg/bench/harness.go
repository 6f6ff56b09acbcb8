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

package bench

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/innovationmech/perfunit/pkg/config"
	"github.com/innovationmech/perfunit/pkg/logger"
	"github.com/innovationmech/perfunit/pkg/metrics"
	"github.com/innovationmech/perfunit/pkg/profiler"
	"github.com/innovationmech/perfunit/pkg/tracing"
)

// Harness owns the collaborators a benchmark run needs: the span recorder,
// the profiler, the metrics publisher and the measured environment. It is
// created once, hands out benchmark builders, and is torn down with Close.
// There is no hidden global state; everything a run touches hangs off the
// harness instance.
type Harness struct {
	cfg    *config.Config
	log    *zap.Logger
	tracer tracing.Manager
	prof   profiler.Profiler
	pub    metrics.Publisher
	env    *Environment

	prometheus *metrics.PrometheusPublisher
	ownsTracer bool
}

// Option overrides one harness collaborator.
type Option func(*Harness)

// WithProfiler injects a profiler implementation, taking precedence over
// configuration and the package registry.
func WithProfiler(p profiler.Profiler) Option {
	return func(h *Harness) { h.prof = p }
}

// WithPublisher injects the metrics publisher.
func WithPublisher(p metrics.Publisher) Option {
	return func(h *Harness) { h.pub = p }
}

// WithTracing injects an already-initialized span recorder. The harness will
// not shut it down on Close.
func WithTracing(m tracing.Manager) Option {
	return func(h *Harness) { h.tracer = m }
}

// WithEnvironment injects the measured environment.
func WithEnvironment(env *Environment) Option {
	return func(h *Harness) { h.env = env }
}

// New assembles a harness from configuration plus options. A nil config
// means built-in defaults.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Harness, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Harness{
		cfg: cfg,
		log: logger.Named("bench"),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.env == nil {
		h.env = NewEnvironment(cfg.OutputDir)
	}
	if _, err := h.env.EnsureOutputDir(); err != nil {
		return nil, fmt.Errorf("prepare output dir: %w", err)
	}

	if h.tracer == nil {
		tcfg := cfg.Tracing
		if tcfg.Exporter.Type == "file" && tcfg.Exporter.Path == "" {
			tcfg.Exporter.Path = filepath.Join(h.env.OutputDir(), tracing.SinkFileName)
		}

		manager := tracing.NewManager()
		if err := manager.Initialize(ctx, &tcfg); err != nil {
			return nil, fmt.Errorf("initialize span recorder: %w", err)
		}
		h.tracer = manager
		h.ownsTracer = true
	}

	if h.prof == nil {
		if cfg.Profiling.Enabled {
			var popts []profiler.CPUProfilerOption
			if cfg.Profiling.HeapSnapshot {
				popts = append(popts, profiler.WithHeapSnapshot())
			}
			h.prof = profiler.NewCPUProfiler(popts...)
		} else {
			h.prof = profiler.Discover()
		}
	}

	if h.pub == nil {
		pub, err := h.buildPublisher()
		if err != nil {
			return nil, err
		}
		h.pub = pub
	}

	return h, nil
}

func (h *Harness) buildPublisher() (metrics.Publisher, error) {
	var pubs []metrics.Publisher

	if h.cfg.Publishers.File {
		pubs = append(pubs, metrics.NewFilePublisher(h.env.OutputDir()))
	}
	if h.cfg.Publishers.Prometheus {
		promPub, err := metrics.NewPrometheusPublisher(nil)
		if err != nil {
			return nil, fmt.Errorf("build prometheus publisher: %w", err)
		}
		h.prometheus = promPub
		pubs = append(pubs, promPub)
	}

	switch len(pubs) {
	case 0:
		// Nothing configured still must not lose data silently.
		return h.loggingPublisher(), nil
	case 1:
		return pubs[0], nil
	default:
		return metrics.NewMultiPublisher(pubs...), nil
	}
}

// loggingPublisher reports the run summary through the harness logger.
func (h *Harness) loggingPublisher() metrics.Publisher {
	return metrics.PublisherFunc(func(_ context.Context, testName, displayName string, report metrics.Report) error {
		h.log.Info("benchmark results",
			zap.String("test", testName),
			zap.String("name", displayName),
			zap.Int("attempts", len(report.Measurements)),
			zap.Duration("min", report.MinDuration()),
			zap.Duration("mean", report.MeanDuration()),
			zap.Duration("max", report.MaxDuration()))
		return nil
	})
}

// Environment returns the measured environment, e.g. to register storage
// cache flush hooks.
func (h *Harness) Environment() *Environment {
	return h.env
}

// PrometheusPublisher returns the prometheus sink when configured, nil
// otherwise.
func (h *Harness) PrometheusPublisher() *metrics.PrometheusPublisher {
	return h.prometheus
}

// Close tears the harness down, flushing the span recorder it owns.
func (h *Harness) Close(ctx context.Context) error {
	if h.ownsTracer {
		return h.tracer.Shutdown(ctx)
	}
	return nil
}
