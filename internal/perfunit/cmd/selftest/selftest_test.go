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

package selftest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortAndHashWorkloadReportsInputSize(t *testing.T) {
	data := []int{5, 3, 1, 4, 2}
	n, err := sortAndHashWorkload(data)
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, data)
}

func TestSelftestCommandProducesArtifacts(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "log")
	t.Setenv("PERFUNIT_OUTPUT_DIR", outputDir)

	cmd := NewSelftestCommand()
	cmd.SetArgs([]string{"--attempts", "1", "--warmup", "0"})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "selftest passed")

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries, "published artifacts land in the output directory")
}
