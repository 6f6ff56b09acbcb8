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

// Package profiler bounds low-level execution captures (CPU, allocations) to
// single benchmark attempts. Profiling is best-effort diagnostics: failures
// are reported to the caller but must never fail a benchmark run.
package profiler

import (
	"sync"

	"github.com/innovationmech/perfunit/pkg/logger"
)

// Profiler represents a process-wide profiling capability. Start and Stop
// calls must be paired per attempt; at most one session is active at a time.
type Profiler interface {
	// StartProfiling begins a capture, writing output files into outputDir.
	// The label tags the capture with the iteration mode and attempt
	// number (e.g. "MEASURE2").
	StartProfiling(outputDir, label string) error

	// StopProfiling finishes the active capture and flushes its output.
	StopProfiling() error
}

// Noop is the profiler used when no implementation is registered. Every
// operation succeeds without doing anything.
type Noop struct{}

// StartProfiling implements Profiler.
func (Noop) StartProfiling(string, string) error { return nil }

// StopProfiling implements Profiler.
func (Noop) StopProfiling() error { return nil }

var (
	registryMu sync.RWMutex
	registered Profiler
	absenceLog sync.Once
)

// Register installs a process-wide profiler implementation. Harness instances
// built without an explicit profiler pick it up via Discover. Passing nil
// clears the registration (test hook).
func Register(p Profiler) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registered = p
}

// Discover returns the registered profiler, or Noop when nothing has been
// registered. Absence is a valid configuration, not an error.
func Discover() Profiler {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if registered == nil {
		absenceLog.Do(func() {
			logger.Named("profiler").Info("no profiler implementation registered, profiling disabled")
		})
		return Noop{}
	}
	return registered
}
