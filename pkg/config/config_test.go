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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.Attempts)
	assert.Equal(t, 1, cfg.WarmupIterations)
	assert.Equal(t, "ignore", cfg.SizePolicy)
	assert.True(t, cfg.Publishers.File)
	assert.False(t, cfg.Publishers.Prometheus)
	assert.NotEmpty(t, cfg.OutputDir)
	require.NoError(t, cfg.Validate())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(Options{WorkDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Attempts)
	assert.Equal(t, 1, cfg.WarmupIterations)
	assert.Equal(t, "file", cfg.Tracing.Exporter.Type)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
output_dir: /tmp/perfunit-test
attempts: 5
warmup_iterations: 2
size_policy: warn
profiling:
  enabled: true
  heap_snapshot: true
publishers:
  file: true
  prometheus: true
tracing:
  enabled: true
  service_name: perfunit-suite
  sampling:
    type: always_on
  exporter:
    type: console
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "perfunit.yaml"), content, 0o644))

	cfg, err := Load(Options{WorkDir: dir})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/perfunit-test", cfg.OutputDir)
	assert.Equal(t, 5, cfg.Attempts)
	assert.Equal(t, 2, cfg.WarmupIterations)
	assert.Equal(t, "warn", cfg.SizePolicy)
	assert.True(t, cfg.Profiling.Enabled)
	assert.True(t, cfg.Profiling.HeapSnapshot)
	assert.True(t, cfg.Publishers.Prometheus)
	assert.Equal(t, "perfunit-suite", cfg.Tracing.ServiceName)
	assert.Equal(t, "console", cfg.Tracing.Exporter.Type)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PERFUNIT_ATTEMPTS", "7")
	t.Setenv("PERFUNIT_SIZE_POLICY", "strict")
	t.Setenv("PERFUNIT_LOG_DIR", "/tmp/perfunit-env")

	cfg, err := Load(Options{WorkDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Attempts)
	assert.Equal(t, "strict", cfg.SizePolicy)
	assert.Equal(t, "/tmp/perfunit-env", cfg.OutputDir)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("PERFUNIT_SIZE_POLICY", "maybe")

	_, err := Load(Options{WorkDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid harness config")
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestValidateRejectsBadAttempts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Attempts = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.WarmupIterations = -1
	assert.Error(t, cfg.Validate())
}
