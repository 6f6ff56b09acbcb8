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

// Package selftest runs a built-in workload through the full measurement
// protocol. It is the smoke test for a new installation: if selftest
// completes, profiling output, the telemetry sink and the published artifacts
// all landed in the output directory.
package selftest

import (
	"crypto/sha256"
	"fmt"
	"math/rand"
	"sort"

	"github.com/spf13/cobra"

	"github.com/innovationmech/perfunit/pkg/bench"
	"github.com/innovationmech/perfunit/pkg/config"
)

// selfTestInputSize is the number of elements the built-in workload sorts
// and hashes per invocation.
const selfTestInputSize = 100_000

// NewSelftestCommand creates the selftest command.
func NewSelftestCommand() *cobra.Command {
	var (
		configFile string
		attempts   int
		warmup     int
	)

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run a built-in workload through the measurement protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Options{ConfigFile: configFile})
			if err != nil {
				return err
			}
			if attempts > 0 {
				cfg.Attempts = attempts
			}
			if warmup >= 0 {
				cfg.WarmupIterations = warmup
			}

			ctx := cmd.Context()
			h, err := bench.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer h.Close(ctx)

			// There is no test function on the stack here, so the run is
			// named statically instead of via stack resolution.
			id, err := bench.IdentityFromFunc(sortAndHashWorkload)
			if err != nil {
				return err
			}

			data := make([]int, selfTestInputSize)
			rng := rand.New(rand.NewSource(1))
			err = h.Benchmark("selftest: sort and hash", selfTestInputSize, func() (int, error) {
				for i := range data {
					data[i] = rng.Int()
				}
				return sortAndHashWorkload(data)
			}).StartAs(ctx, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "selftest passed; artifacts in %s\n", h.Environment().OutputDir())
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "explicit configuration file path")
	cmd.Flags().IntVar(&attempts, "attempts", 0, "override the measurement attempt count")
	cmd.Flags().IntVar(&warmup, "warmup", -1, "override the warmup iteration count")
	return cmd
}

// sortAndHashWorkload sorts the slice and hashes it, touching enough memory
// and CPU to produce non-trivial profiles and measurements.
func sortAndHashWorkload(data []int) (int, error) {
	sort.Ints(data)

	h := sha256.New()
	var buf [8]byte
	for _, v := range data {
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	h.Sum(nil)

	return len(data), nil
}
