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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderAccumulates(t *testing.T) {
	r := NewRecorder("run-1")

	r.Record(Measurement{Attempt: 1, Duration: 10 * time.Millisecond, InputSize: 100})
	r.Record(Measurement{Attempt: 2, Duration: 30 * time.Millisecond, InputSize: 100})
	r.Record(Measurement{Attempt: 3, Duration: 20 * time.Millisecond, InputSize: 100})

	assert.Equal(t, 3, r.Count())

	report := r.Snapshot()
	assert.Equal(t, "run-1", report.RunID)
	require.Len(t, report.Measurements, 3)
	assert.Equal(t, 1, report.Measurements[0].Attempt)
	assert.False(t, report.RecordedAt.IsZero())
}

func TestRecorderSnapshotIsACopy(t *testing.T) {
	r := NewRecorder("run-2")
	r.Record(Measurement{Attempt: 1, Duration: time.Millisecond})

	report := r.Snapshot()
	r.Record(Measurement{Attempt: 2, Duration: time.Millisecond})

	assert.Len(t, report.Measurements, 1)
	assert.Equal(t, 2, r.Count())
}

func TestReportAggregates(t *testing.T) {
	report := Report{
		Measurements: []Measurement{
			{Attempt: 1, Duration: 10 * time.Millisecond},
			{Attempt: 2, Duration: 30 * time.Millisecond},
			{Attempt: 3, Duration: 20 * time.Millisecond},
		},
	}

	assert.Equal(t, 60*time.Millisecond, report.TotalDuration())
	assert.Equal(t, 10*time.Millisecond, report.MinDuration())
	assert.Equal(t, 30*time.Millisecond, report.MaxDuration())
	assert.Equal(t, 20*time.Millisecond, report.MeanDuration())
}

func TestReportAggregatesEmpty(t *testing.T) {
	var report Report

	assert.Zero(t, report.TotalDuration())
	assert.Zero(t, report.MinDuration())
	assert.Zero(t, report.MaxDuration())
	assert.Zero(t, report.MeanDuration())
}
