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
	"os"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/innovationmech/perfunit/pkg/logger"
)

// Environment is the explicit runtime context a harness measures inside: the
// output directory shared by profiler and telemetry sinks, the quiescence
// wait before each phase and the memory normalization between attempts. The
// harness assumes it owns the process during a run; flushing shared caches
// between attempts is hygiene, not a locking protocol.
type Environment struct {
	outputDir string
	log       *zap.Logger

	quiesceTimeout  time.Duration
	quiesceInterval time.Duration
	stableSamples   int

	mu         sync.Mutex
	flushHooks []func()
}

// EnvOption configures an Environment.
type EnvOption func(*Environment)

// WithQuiescence tunes the background-activity wait: the goroutine count has
// to stay unchanged for stableSamples consecutive samples taken interval
// apart, bounded by timeout.
func WithQuiescence(timeout, interval time.Duration, stableSamples int) EnvOption {
	return func(e *Environment) {
		e.quiesceTimeout = timeout
		e.quiesceInterval = interval
		e.stableSamples = stableSamples
	}
}

// NewEnvironment creates an environment rooted at the given output directory.
func NewEnvironment(outputDir string, opts ...EnvOption) *Environment {
	e := &Environment{
		outputDir:       outputDir,
		log:             logger.Named("bench.env"),
		quiesceTimeout:  10 * time.Second,
		quiesceInterval: 10 * time.Millisecond,
		stableSamples:   3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OutputDir returns the output/log directory.
func (e *Environment) OutputDir() string {
	return e.outputDir
}

// EnsureOutputDir creates the output directory if needed and returns it.
func (e *Environment) EnsureOutputDir() (string, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", err
	}
	return e.outputDir, nil
}

// RegisterFlushHook registers a callback run during memory normalization,
// typically a storage layer dropping its direct-memory cache so one attempt
// cannot leak cached state into the next.
func (e *Environment) RegisterFlushHook(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flushHooks = append(e.flushHooks, fn)
}

// WaitForQuiescence blocks until background activity in the process calms
// down: the goroutine count must hold steady across consecutive samples.
// The wait is best-effort; hitting the timeout only logs, because a noisy
// host degrades measurement quality but does not invalidate the protocol.
func (e *Environment) WaitForQuiescence(ctx context.Context) {
	deadline := time.Now().Add(e.quiesceTimeout)
	last := runtime.NumGoroutine()
	stable := 1

	for stable < e.stableSamples {
		if time.Now().After(deadline) {
			e.log.Warn("background activity did not calm down before phase start",
				zap.Int("goroutines", last),
				zap.Duration("waited", e.quiesceTimeout))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(e.quiesceInterval):
		}

		current := runtime.NumGoroutine()
		if current == last {
			stable++
		} else {
			stable = 1
			last = current
		}
	}
}

// NormalizeMemory forces a garbage collection cycle, returns freed memory to
// the OS and runs the registered cache flush hooks. Called after every
// attempt so collection pauses and cache contents do not bleed into the next
// one.
func (e *Environment) NormalizeMemory() {
	runtime.GC()
	debug.FreeOSMemory()

	e.mu.Lock()
	hooks := make([]func(), len(e.flushHooks))
	copy(hooks, e.flushHooks)
	e.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}
