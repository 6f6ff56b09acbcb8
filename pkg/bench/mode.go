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

// IterationMode discriminates the two sequential phases of a run. It is
// never persisted; its String form tags profiling sessions and log lines.
type IterationMode int

const (
	// ModeWarmup runs iterations whose results are discarded. They only
	// stabilize caches and code paths before measurement.
	ModeWarmup IterationMode = iota

	// ModeMeasure runs the iterations whose results are published.
	ModeMeasure
)

// String implements fmt.Stringer.
func (m IterationMode) String() string {
	switch m {
	case ModeWarmup:
		return "WARMUP"
	case ModeMeasure:
		return "MEASURE"
	default:
		return "UNKNOWN"
	}
}

// IsWarmup reports whether results of this mode are discarded.
func (m IterationMode) IsWarmup() bool {
	return m == ModeWarmup
}
