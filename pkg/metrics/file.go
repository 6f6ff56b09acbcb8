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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilePublisher writes each run's report as a JSON artifact into the harness
// output directory, one file per test identity. Re-publishing the same
// identity overwrites the previous artifact, which is why subtests need
// unique names.
type FilePublisher struct {
	dir string
}

// NewFilePublisher creates a publisher writing into dir.
func NewFilePublisher(dir string) *FilePublisher {
	return &FilePublisher{dir: dir}
}

// fileReport is the on-disk artifact layout.
type fileReport struct {
	TestName    string `json:"test_name"`
	DisplayName string `json:"display_name"`
	Report
}

// Publish implements Publisher.
func (p *FilePublisher) Publish(ctx context.Context, testName, displayName string, report Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("create metrics output dir: %w", err)
	}

	path := filepath.Join(p.dir, sanitizeFileName(testName)+".json")

	data, err := json.MarshalIndent(fileReport{
		TestName:    testName,
		DisplayName: displayName,
		Report:      report,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metrics report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write metrics report %s: %w", path, err)
	}
	return nil
}

// sanitizeFileName maps a qualified test name onto a filesystem-safe file
// name, keeping it recognizable.
func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
