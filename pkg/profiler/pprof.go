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

package profiler

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sync"
)

// CPUProfiler captures a CPU profile per attempt via runtime/pprof, writing
// <label>.pprof into the output directory. When WithHeapSnapshot is set it
// also dumps <label>.heap.pprof on stop.
type CPUProfiler struct {
	mu           sync.Mutex
	out          *os.File
	dir          string
	label        string
	heapSnapshot bool
}

// CPUProfilerOption configures a CPUProfiler.
type CPUProfilerOption func(*CPUProfiler)

// WithHeapSnapshot makes StopProfiling dump a heap profile alongside the CPU
// profile.
func WithHeapSnapshot() CPUProfilerOption {
	return func(p *CPUProfiler) {
		p.heapSnapshot = true
	}
}

// NewCPUProfiler creates a pprof-backed profiler.
func NewCPUProfiler(opts ...CPUProfilerOption) *CPUProfiler {
	p := &CPUProfiler{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// StartProfiling implements Profiler.
func (p *CPUProfiler) StartProfiling(outputDir, label string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out != nil {
		return fmt.Errorf("profiling session %q is still active", p.label)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create profiler output dir: %w", err)
	}

	path := filepath.Join(outputDir, label+".pprof")
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cpu profile %s: %w", path, err)
	}

	if err := pprof.StartCPUProfile(out); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("start cpu profile: %w", err)
	}

	p.out = out
	p.dir = outputDir
	p.label = label
	return nil
}

// StopProfiling implements Profiler.
func (p *CPUProfiler) StopProfiling() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out == nil {
		return fmt.Errorf("no active profiling session")
	}

	pprof.StopCPUProfile()
	err := p.out.Close()

	if p.heapSnapshot {
		if heapErr := p.dumpHeap(); err == nil {
			err = heapErr
		}
	}

	p.out = nil
	p.label = ""
	return err
}

func (p *CPUProfiler) dumpHeap() error {
	path := filepath.Join(p.dir, p.label+".heap.pprof")
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create heap profile %s: %w", path, err)
	}
	defer out.Close()

	// Up-to-date allocation statistics require a completed GC cycle.
	runtime.GC()
	if err := pprof.Lookup("heap").WriteTo(out, 0); err != nil {
		return fmt.Errorf("write heap profile: %w", err)
	}
	return nil
}
