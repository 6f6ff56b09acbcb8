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

// Package env prints the effective harness configuration after all layers
// (defaults, perfunit.yaml, PERFUNIT_* environment variables) are merged, so
// a surprising benchmark run can be explained without reading viper internals.
package env

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/innovationmech/perfunit/pkg/config"
)

// NewEnvCommand creates the env command.
func NewEnvCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print the effective harness configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{ConfigFile: configFile})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "output_dir=%s\n", cfg.OutputDir)
			fmt.Fprintf(out, "attempts=%d\n", cfg.Attempts)
			fmt.Fprintf(out, "warmup_iterations=%d\n", cfg.WarmupIterations)
			fmt.Fprintf(out, "size_policy=%s\n", cfg.SizePolicy)
			fmt.Fprintf(out, "profiling.enabled=%t\n", cfg.Profiling.Enabled)
			fmt.Fprintf(out, "profiling.heap_snapshot=%t\n", cfg.Profiling.HeapSnapshot)
			fmt.Fprintf(out, "tracing.enabled=%t\n", cfg.Tracing.Enabled)
			fmt.Fprintf(out, "tracing.exporter.type=%s\n", cfg.Tracing.Exporter.Type)
			fmt.Fprintf(out, "publishers.file=%t\n", cfg.Publishers.File)
			fmt.Fprintf(out, "publishers.prometheus=%t\n", cfg.Publishers.Prometheus)
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "explicit configuration file path")
	return cmd
}
