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

// Package metrics accumulates per-attempt benchmark measurements and
// publishes them once a run's measurement phase completes. Only
// measurement-phase attempts are recorded; warmup attempts never reach the
// recorder. All measured attempts are published, not just the best or the
// median, so downstream aggregation can apply its own statistics.
package metrics

import (
	"sync"
	"time"
)

// Measurement is the result of one measurement-phase attempt.
type Measurement struct {
	// Attempt is the 1-based attempt number within the measurement phase.
	Attempt int `json:"attempt"`

	// Duration is the wall-clock time of the workload invocation.
	Duration time.Duration `json:"duration_ns"`

	// InputSize is the actual input size the workload reported.
	InputSize int `json:"input_size"`

	// AllocDelta is the heap allocation growth across the invocation, in
	// bytes. Zero when memory shrank.
	AllocDelta uint64 `json:"alloc_delta_bytes"`
}

// Report is a snapshot of one run's recorded measurements.
type Report struct {
	RunID        string        `json:"run_id"`
	RecordedAt   time.Time     `json:"recorded_at"`
	Measurements []Measurement `json:"measurements"`
}

// TotalDuration sums the duration of every recorded attempt.
func (r Report) TotalDuration() time.Duration {
	var total time.Duration
	for _, m := range r.Measurements {
		total += m.Duration
	}
	return total
}

// MinDuration returns the fastest attempt, or zero for an empty report.
func (r Report) MinDuration() time.Duration {
	if len(r.Measurements) == 0 {
		return 0
	}
	min := r.Measurements[0].Duration
	for _, m := range r.Measurements[1:] {
		if m.Duration < min {
			min = m.Duration
		}
	}
	return min
}

// MaxDuration returns the slowest attempt, or zero for an empty report.
func (r Report) MaxDuration() time.Duration {
	var max time.Duration
	for _, m := range r.Measurements {
		if m.Duration > max {
			max = m.Duration
		}
	}
	return max
}

// MeanDuration returns the mean attempt duration, or zero for an empty
// report.
func (r Report) MeanDuration() time.Duration {
	if len(r.Measurements) == 0 {
		return 0
	}
	return r.TotalDuration() / time.Duration(len(r.Measurements))
}

// Recorder accumulates measurements for a single run. Safe for concurrent
// use, although the iteration controller records strictly sequentially.
type Recorder struct {
	mu           sync.Mutex
	runID        string
	measurements []Measurement
}

// NewRecorder creates a recorder for the given run ID.
func NewRecorder(runID string) *Recorder {
	return &Recorder{runID: runID}
}

// Record appends one measurement.
func (r *Recorder) Record(m Measurement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.measurements = append(r.measurements, m)
}

// Count returns the number of recorded measurements.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.measurements)
}

// Snapshot returns a copy of everything recorded so far.
func (r *Recorder) Snapshot() Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	measurements := make([]Measurement, len(r.measurements))
	copy(measurements, r.measurements)

	return Report{
		RunID:        r.runID,
		RecordedAt:   time.Now(),
		Measurements: measurements,
	}
}
