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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSpanExporterConsole(t *testing.T) {
	exporter, err := NewExporterFactory().CreateSpanExporter(context.Background(), ExporterConfig{Type: "console"})
	require.NoError(t, err)
	require.NotNil(t, exporter)
	assert.NoError(t, exporter.Shutdown(context.Background()))
}

func TestCreateSpanExporterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", SinkFileName)

	exporter, err := NewExporterFactory().CreateSpanExporter(context.Background(), ExporterConfig{
		Type: "file",
		Path: path,
	})
	require.NoError(t, err)
	require.NotNil(t, exporter)

	// The sink file and its directory must exist after creation.
	assert.FileExists(t, path)
	assert.NoError(t, exporter.Shutdown(context.Background()))
}

func TestCreateSpanExporterFileWithoutPath(t *testing.T) {
	_, err := NewExporterFactory().CreateSpanExporter(context.Background(), ExporterConfig{Type: "file"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink path")
}

func TestCreateSpanExporterUnknownType(t *testing.T) {
	_, err := NewExporterFactory().CreateSpanExporter(context.Background(), ExporterConfig{Type: "carrier-pigeon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported exporter type")
}

func TestCreateSpanExporterOTLPRequiresEndpoint(t *testing.T) {
	_, err := NewExporterFactory().CreateSpanExporter(context.Background(), ExporterConfig{Type: "otlp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires endpoint")
}

func TestShouldUseHTTPProtocol(t *testing.T) {
	assert.True(t, shouldUseHTTPProtocol("http://collector:4318/v1/traces"))
	assert.False(t, shouldUseHTTPProtocol("collector:4317"))
}
