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

// Package bench runs a workload repeatedly under controlled conditions to
// produce stable, comparable performance measurements. A run executes a
// warmup phase whose results are discarded, then a measurement phase whose
// attempts are all published, each attempt bracketed by setup, profiling and
// memory normalization. Naive single-shot timing is unreliable because of
// cache warmup, collector pauses and background activity; the harness exists
// so individual tests do not reimplement that protocol.
package bench

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/innovationmech/perfunit/pkg/metrics"
	"github.com/innovationmech/perfunit/pkg/tracing"
)

// Workload is the measured computation. It reports the actual size of the
// input it processed; the harness never looks inside it.
type Workload func() (int, error)

// Setup runs before every attempt. A setup failure is fatal to the run.
type Setup func() error

// SizePolicy decides what a mismatch between expected and actual workload
// input size means.
type SizePolicy int

const (
	// SizePolicyIgnore captures the actual size for the published report
	// but never compares it.
	SizePolicyIgnore SizePolicy = iota

	// SizePolicyWarn logs a warning on mismatch and continues.
	SizePolicyWarn

	// SizePolicyStrict fails the run on mismatch.
	SizePolicyStrict
)

// ParseSizePolicy maps the configuration strings onto SizePolicy values.
func ParseSizePolicy(s string) (SizePolicy, error) {
	switch s {
	case "", "ignore":
		return SizePolicyIgnore, nil
	case "warn":
		return SizePolicyWarn, nil
	case "strict":
		return SizePolicyStrict, nil
	default:
		return SizePolicyIgnore, fmt.Errorf("unknown size policy %q", s)
	}
}

// Builder accumulates benchmark configuration fluently. Build validates it
// and returns an immutable Benchmark.
type Builder struct {
	h *Harness

	name              string
	expectedInputSize int
	workload          Workload
	setup             Setup
	attempts          int
	warmupIterations  int
	sizePolicy        SizePolicy
	identity          *TestIdentity
	subtest           string
	err               error
}

// Benchmark creates a builder for the named workload. expectedInputSize must
// be positive; it documents the input volume the workload is supposed to
// process.
func (h *Harness) Benchmark(name string, expectedInputSize int, workload Workload) *Builder {
	b := &Builder{
		h:                 h,
		name:              name,
		expectedInputSize: expectedInputSize,
		workload:          workload,
		attempts:          h.cfg.Attempts,
		warmupIterations:  h.cfg.WarmupIterations,
	}

	policy, err := ParseSizePolicy(h.cfg.SizePolicy)
	if err != nil {
		b.err = err
	}
	b.sizePolicy = policy
	return b
}

// Setup installs the per-attempt setup action. It may be set only once.
func (b *Builder) Setup(setup Setup) *Builder {
	if b.setup != nil && b.err == nil {
		b.err = errors.New("setup action is already configured")
	}
	b.setup = setup
	return b
}

// Attempts sets the measurement attempt count. Attempts govern repetition
// for statistical stability, not recovery from failures.
func (b *Builder) Attempts(n int) *Builder {
	b.attempts = n
	return b
}

// WarmupIterations sets how many times the workload runs before the final
// measurements.
func (b *Builder) WarmupIterations(n int) *Builder {
	b.warmupIterations = n
	return b
}

// SizePolicy overrides the configured input size validation policy.
func (b *Builder) SizePolicy(p SizePolicy) *Builder {
	b.sizePolicy = p
	return b
}

// Identity pins the publication identity, bypassing stack resolution.
func (b *Builder) Identity(id TestIdentity) *Builder {
	b.identity = &id
	return b
}

// Subtest appends a subtest label to the resolved identity. Labels must be
// unique within a test, otherwise published results overwrite each other.
func (b *Builder) Subtest(name string) *Builder {
	b.subtest = name
	return b
}

// Build validates the configuration and returns the runnable benchmark.
func (b *Builder) Build() (*Benchmark, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.workload == nil {
		return nil, errors.New("benchmark workload must not be nil")
	}
	if b.expectedInputSize <= 0 {
		return nil, fmt.Errorf("expected input size must be > 0, was: %d", b.expectedInputSize)
	}
	if b.attempts < 1 {
		return nil, fmt.Errorf("attempts must be >= 1, was: %d", b.attempts)
	}
	if b.warmupIterations < 0 {
		return nil, fmt.Errorf("warmup iterations must be >= 0, was: %d", b.warmupIterations)
	}

	return &Benchmark{
		h:                 b.h,
		name:              b.name,
		expectedInputSize: b.expectedInputSize,
		workload:          b.workload,
		setup:             b.setup,
		attempts:          b.attempts,
		warmupIterations:  b.warmupIterations,
		sizePolicy:        b.sizePolicy,
		identity:          b.identity,
		subtest:           b.subtest,
	}, nil
}

// Start builds and starts in one step, resolving the identity from the call
// stack unless one was pinned.
func (b *Builder) Start(ctx context.Context) error {
	bm, err := b.Build()
	if err != nil {
		return err
	}
	return bm.Start(ctx)
}

// StartAs builds and starts under an explicit identity.
func (b *Builder) StartAs(ctx context.Context, id TestIdentity) error {
	bm, err := b.Build()
	if err != nil {
		return err
	}
	return bm.StartAs(ctx, id)
}

// StartAsSubtest builds and starts with a subtest label appended to the
// resolved identity. Subtest names must be unique within a test, otherwise
// published results overwrite each other.
func (b *Builder) StartAsSubtest(ctx context.Context, subtest string) error {
	bm, err := b.Build()
	if err != nil {
		return err
	}
	return bm.StartAsSubtest(ctx, subtest)
}

// Benchmark is an immutable run specification. Each Start call re-runs the
// full warmup+measure protocol and re-publishes, so a test case should start
// it once.
type Benchmark struct {
	h *Harness

	name              string
	expectedInputSize int
	workload          Workload
	setup             Setup
	attempts          int
	warmupIterations  int
	sizePolicy        SizePolicy
	identity          *TestIdentity
	subtest           string
}

// Start executes the benchmark: the warmup phase, the measurement phase and
// exactly one publication of the recorded measurements. The identity is
// resolved lazily from the call stack unless pinned at build time.
func (bm *Benchmark) Start(ctx context.Context) error {
	id, err := bm.resolveIdentity()
	if err != nil {
		return err
	}
	return bm.start(ctx, id)
}

// StartAs executes the benchmark under an explicit identity.
func (bm *Benchmark) StartAs(ctx context.Context, id TestIdentity) error {
	return bm.start(ctx, id)
}

// StartAsSubtest executes the benchmark with a subtest label appended to the
// resolved identity.
func (bm *Benchmark) StartAsSubtest(ctx context.Context, subtest string) error {
	id, err := bm.resolveIdentity()
	if err != nil {
		return err
	}
	return bm.start(ctx, id.WithSubtest(subtest))
}

func (bm *Benchmark) resolveIdentity() (TestIdentity, error) {
	id, err := bm.baseIdentity()
	if err != nil {
		return TestIdentity{}, err
	}
	if bm.subtest != "" {
		id = id.WithSubtest(bm.subtest)
	}
	return id, nil
}

func (bm *Benchmark) baseIdentity() (TestIdentity, error) {
	if bm.identity != nil {
		return *bm.identity, nil
	}
	return ResolveIdentityFromStack()
}

func (bm *Benchmark) start(ctx context.Context, id TestIdentity) error {
	run := &runState{
		identity: id,
		runID:    uuid.NewString(),
	}
	run.recorder = metrics.NewRecorder(run.runID)

	if err := bm.runPhase(ctx, ModeWarmup, run); err != nil {
		return err
	}
	return bm.runPhase(ctx, ModeMeasure, run)
}

// runState carries the mutable state of one Start call across both phases.
type runState struct {
	identity TestIdentity
	runID    string
	recorder *metrics.Recorder
}

// runPhase executes one phase: quiescence wait, the attempt loop inside a
// phase span, and for the measurement phase the exactly-once publication in
// a deferred block regardless of how the phase ended.
func (bm *Benchmark) runPhase(ctx context.Context, mode IterationMode, run *runState) (err error) {
	bm.h.log.Info("starting performance test",
		zap.String("test", run.identity.FullName()),
		zap.String("mode", mode.String()),
		zap.String("run_id", run.runID))

	iterations := bm.attempts
	if mode.IsWarmup() {
		iterations = bm.warmupIterations
	}

	// A single-attempt phase gets a full collection up front so the pause
	// does not land inside the one measured attempt.
	if iterations == 1 {
		runtime.GC()
	}

	if mode == ModeMeasure {
		defer func() {
			if pubErr := bm.publish(ctx, run); pubErr != nil {
				bm.h.log.Error("publishing performance metrics failed",
					zap.String("test", run.identity.FullName()),
					zap.Error(pubErr))
				err = errors.Join(err, pubErr)
			}
		}()
	}

	attrs := []attribute.KeyValue{
		attribute.String("warmup", strconv.FormatBool(mode.IsWarmup())),
		attribute.String("run_id", run.runID),
	}
	return tracing.WithSpan(ctx, bm.h.tracer, bm.name, attrs, func(ctx context.Context) error {
		bm.h.env.WaitForQuiescence(ctx)

		for attempt := 1; attempt <= iterations; attempt++ {
			if bm.setup != nil {
				if setupErr := bm.setup(); setupErr != nil {
					return setupErr
				}
			}

			if attemptErr := bm.runAttempt(ctx, mode, attempt, run); attemptErr != nil {
				return attemptErr
			}

			bm.h.env.NormalizeMemory()
		}
		return nil
	})
}

// runAttempt performs one profiled workload invocation inside an attempt
// span. Profiling stop is a release-on-exit obligation: it runs even when
// the workload fails. Profiling failures themselves are logged, never fatal.
func (bm *Benchmark) runAttempt(ctx context.Context, mode IterationMode, attempt int, run *runState) error {
	label := fmt.Sprintf("%s%d", mode, attempt)
	warmupAttr := strconv.FormatBool(mode.IsWarmup())

	return tracing.WithSpanAttribute(ctx, bm.h.tracer, fmt.Sprintf("Attempt: %d", attempt), "warmup", warmupAttr, func(context.Context) error {
		if err := bm.h.prof.StartProfiling(bm.h.env.OutputDir(), label); err != nil {
			bm.h.log.Warn("can't start profiling", zap.String("label", label), zap.Error(err))
		}
		defer func() {
			if err := bm.h.prof.StopProfiling(); err != nil {
				bm.h.log.Warn("can't stop profiling", zap.String("label", label), zap.Error(err))
			}
		}()

		var before runtime.MemStats
		runtime.ReadMemStats(&before)

		started := time.Now()
		actualSize, err := bm.workload()
		elapsed := time.Since(started)
		if err != nil {
			return err
		}

		var after runtime.MemStats
		runtime.ReadMemStats(&after)
		var allocDelta uint64
		if after.Alloc > before.Alloc {
			allocDelta = after.Alloc - before.Alloc
		}

		if mode == ModeMeasure {
			run.recorder.Record(metrics.Measurement{
				Attempt:    attempt,
				Duration:   elapsed,
				InputSize:  actualSize,
				AllocDelta: allocDelta,
			})
		}

		return bm.checkSize(actualSize)
	})
}

func (bm *Benchmark) checkSize(actual int) error {
	if actual == bm.expectedInputSize || bm.sizePolicy == SizePolicyIgnore {
		return nil
	}

	if bm.sizePolicy == SizePolicyWarn {
		bm.h.log.Warn("workload processed unexpected input size",
			zap.String("name", bm.name),
			zap.Int("expected", bm.expectedInputSize),
			zap.Int("actual", actual))
		return nil
	}

	return fmt.Errorf("workload processed input size %d, expected %d", actual, bm.expectedInputSize)
}

func (bm *Benchmark) publish(ctx context.Context, run *runState) error {
	report := run.recorder.Snapshot()
	if err := bm.h.pub.Publish(ctx, run.identity.FullName(), bm.name, report); err != nil {
		return err
	}

	bm.h.log.Info("published performance metrics",
		zap.String("test", run.identity.FullName()),
		zap.Int("measurements", len(report.Measurements)),
		zap.Duration("mean", report.MeanDuration()))
	return nil
}
