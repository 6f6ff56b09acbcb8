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

package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusPublisher exposes run measurements on a Prometheus registry so a
// scraping or push pipeline can pick them up. Attempt durations land in a
// histogram labeled by test identity, which keeps all measured attempts
// visible downstream instead of a single aggregate.
type PrometheusPublisher struct {
	registry        *prometheus.Registry
	attemptDuration *prometheus.HistogramVec
	attemptsTotal   *prometheus.CounterVec
	lastInputSize   *prometheus.GaugeVec
	lastRunTime     *prometheus.GaugeVec
}

// NewPrometheusPublisher creates a publisher backed by the given registry.
// A nil registry gets a fresh private one.
func NewPrometheusPublisher(registry *prometheus.Registry) (*PrometheusPublisher, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	p := &PrometheusPublisher{
		registry: registry,
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "perfunit",
			Name:      "attempt_duration_seconds",
			Help:      "Wall-clock duration of measurement-phase workload attempts.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"test"}),
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "perfunit",
			Name:      "attempts_total",
			Help:      "Number of published measurement attempts.",
		}, []string{"test"}),
		lastInputSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "perfunit",
			Name:      "last_input_size",
			Help:      "Input size reported by the workload on the last published attempt.",
		}, []string{"test"}),
		lastRunTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "perfunit",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the last published run.",
		}, []string{"test"}),
	}

	collectors := []prometheus.Collector{
		p.attemptDuration, p.attemptsTotal, p.lastInputSize, p.lastRunTime,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("register perfunit collector: %w", err)
		}
	}

	return p, nil
}

// Registry returns the backing registry for scraping or gathering.
func (p *PrometheusPublisher) Registry() *prometheus.Registry {
	return p.registry
}

// Publish implements Publisher.
func (p *PrometheusPublisher) Publish(ctx context.Context, testName, displayName string, report Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, m := range report.Measurements {
		p.attemptDuration.WithLabelValues(testName).Observe(m.Duration.Seconds())
		p.attemptsTotal.WithLabelValues(testName).Inc()
		p.lastInputSize.WithLabelValues(testName).Set(float64(m.InputSize))
	}
	p.lastRunTime.WithLabelValues(testName).Set(float64(report.RecordedAt.Unix()))

	return nil
}
