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
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerUninitializedGivesNoOpSpans(t *testing.T) {
	m := NewManager()

	ctx, span := m.StartSpan(context.Background(), "orphan")
	require.NotNil(t, span)
	assert.NotNil(t, ctx)

	// All operations on a no-op span must be safe.
	span.SetAttribute("warmup", true)
	span.AddEvent("noop")
	span.End()

	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestManagerInitializeDisabled(t *testing.T) {
	m := NewManager()
	cfg := DefaultConfig()
	cfg.Enabled = false

	require.NoError(t, m.Initialize(context.Background(), cfg))

	_, span := m.StartSpan(context.Background(), "disabled")
	span.End()
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestManagerInitializeNilConfig(t *testing.T) {
	m := NewManager()
	err := m.Initialize(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be nil")
}

func TestManagerInitializeInvalidConfig(t *testing.T) {
	m := NewManager()
	cfg := DefaultConfig()
	cfg.Sampling.Type = "coin-flip"

	err := m.Initialize(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tracing config")
}

func TestManagerFileSinkRecordsSpans(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "log", SinkFileName)

	m := NewManager()
	cfg := DefaultConfig()
	cfg.Exporter.Path = sink

	require.NoError(t, m.Initialize(context.Background(), cfg))

	ctx := context.Background()
	err := WithSpanAttribute(ctx, m, "phase", "warmup", "true", func(ctx context.Context) error {
		return WithSpanAttribute(ctx, m, "Attempt: 1", "warmup", "true", func(context.Context) error {
			return nil
		})
	})
	require.NoError(t, err)
	require.NoError(t, m.Shutdown(context.Background()))

	data, err := os.ReadFile(sink)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Attempt: 1")
	assert.Contains(t, string(data), "warmup")
}

func TestWithSpanAttributePropagatesError(t *testing.T) {
	m := NewManager()
	cfg := DefaultConfig()
	cfg.Exporter.Type = "console"
	require.NoError(t, m.Initialize(context.Background(), cfg))

	boom := errors.New("workload exploded")
	err := WithSpanAttribute(context.Background(), m, "phase", "warmup", "false", func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NoError(t, m.Shutdown(context.Background()))
}

func TestCreateSampler(t *testing.T) {
	for _, typ := range []string{"always_on", "always_off", "traceidratio"} {
		s, err := createSampler(SamplingConfig{Type: typ, Rate: 0.5})
		require.NoError(t, err, typ)
		assert.NotNil(t, s, typ)
	}

	_, err := createSampler(SamplingConfig{Type: "dice"})
	assert.Error(t, err)
}
