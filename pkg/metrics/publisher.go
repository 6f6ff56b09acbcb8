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
	"errors"
)

// Publisher flushes one run's measurements, keyed by the resolved test
// identity and a human-readable display label. The iteration controller
// invokes it exactly once per run, after the measurement phase completes.
// Publication failures are fatal to the run; silent data loss would corrupt
// longitudinal performance tracking.
type Publisher interface {
	Publish(ctx context.Context, testName, displayName string, report Report) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, testName, displayName string, report Report) error

// Publish implements Publisher.
func (f PublisherFunc) Publish(ctx context.Context, testName, displayName string, report Report) error {
	return f(ctx, testName, displayName, report)
}

// MultiPublisher fans a report out to several publishers. Every publisher
// runs even when an earlier one fails; errors are joined.
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher creates a fan-out publisher.
func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	return &MultiPublisher{publishers: publishers}
}

// Publish implements Publisher.
func (p *MultiPublisher) Publish(ctx context.Context, testName, displayName string, report Report) error {
	var errs []error
	for _, pub := range p.publishers {
		if err := pub.Publish(ctx, testName, displayName, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
