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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
)

// ExporterFactory defines the interface for creating span exporters.
type ExporterFactory interface {
	CreateSpanExporter(ctx context.Context, config ExporterConfig) (trace.SpanExporter, error)
}

type exporterFactory struct{}

// NewExporterFactory creates a new exporter factory.
func NewExporterFactory() ExporterFactory {
	return &exporterFactory{}
}

// CreateSpanExporter creates a span exporter based on the configuration.
func (f *exporterFactory) CreateSpanExporter(ctx context.Context, config ExporterConfig) (trace.SpanExporter, error) {
	switch config.Type {
	case "console":
		return f.createConsoleExporter()
	case "file":
		return f.createFileExporter(config)
	case "otlp":
		return f.createOTLPExporter(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", config.Type)
	}
}

func (f *exporterFactory) createConsoleExporter() (trace.SpanExporter, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create console exporter: %w", err)
	}
	return exporter, nil
}

// createFileExporter writes spans as JSON lines to the telemetry sink file.
// The sink survives the process so a later collector can pick it up.
func (f *exporterFactory) createFileExporter(config ExporterConfig) (trace.SpanExporter, error) {
	path := config.Path
	if path == "" {
		return nil, fmt.Errorf("file exporter requires a sink path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry sink directory: %w", err)
	}

	sink, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry sink %s: %w", path, err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(sink))
	if err != nil {
		sink.Close()
		return nil, fmt.Errorf("failed to create file exporter: %w", err)
	}

	return &fileExporter{SpanExporter: exporter, sink: sink}, nil
}

// fileExporter closes the sink file once the underlying exporter shuts down.
type fileExporter struct {
	trace.SpanExporter
	sink *os.File
}

func (e *fileExporter) Shutdown(ctx context.Context) error {
	err := e.SpanExporter.Shutdown(ctx)
	if closeErr := e.sink.Close(); err == nil {
		err = closeErr
	}
	return err
}

// createOTLPExporter creates an OTLP exporter (HTTP or gRPC).
func (f *exporterFactory) createOTLPExporter(ctx context.Context, config ExporterConfig) (trace.SpanExporter, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("otlp exporter requires endpoint")
	}

	if shouldUseHTTPProtocol(config.Endpoint) {
		return f.createOTLPHTTPExporter(ctx, config)
	}
	return f.createOTLPGRPCExporter(ctx, config)
}

// shouldUseHTTPProtocol determines if HTTP protocol should be used for OTLP.
// Endpoints ending in the standard /v1/traces path are HTTP.
func shouldUseHTTPProtocol(endpoint string) bool {
	return strings.HasSuffix(endpoint, "/v1/traces")
}

func (f *exporterFactory) createOTLPHTTPExporter(ctx context.Context, config ExporterConfig) (trace.SpanExporter, error) {
	options := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(config.Endpoint),
		otlptracehttp.WithTimeout(config.GetTimeout()),
	}

	if config.Insecure {
		options = append(options, otlptracehttp.WithInsecure())
	}

	if len(config.Headers) > 0 {
		options = append(options, otlptracehttp.WithHeaders(config.Headers))
	}

	switch config.Compression {
	case "gzip":
		options = append(options, otlptracehttp.WithCompression(otlptracehttp.GzipCompression))
	case "none":
		options = append(options, otlptracehttp.WithCompression(otlptracehttp.NoCompression))
	}

	exporter, err := otlptracehttp.New(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp http exporter: %w", err)
	}

	return exporter, nil
}

func (f *exporterFactory) createOTLPGRPCExporter(ctx context.Context, config ExporterConfig) (trace.SpanExporter, error) {
	options := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(config.Endpoint),
		otlptracegrpc.WithTimeout(config.GetTimeout()),
	}

	if config.Insecure {
		options = append(options, otlptracegrpc.WithInsecure())
	}

	if len(config.Headers) > 0 {
		options = append(options, otlptracegrpc.WithHeaders(config.Headers))
	}

	if config.Compression == "gzip" {
		options = append(options, otlptracegrpc.WithCompressor("gzip"))
	}

	exporter, err := otlptracegrpc.New(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp grpc exporter: %w", err)
	}

	return exporter, nil
}

// CreateBatchSpanProcessor creates a batch span processor for network exporters.
func CreateBatchSpanProcessor(exporter trace.SpanExporter) trace.SpanProcessor {
	return trace.NewBatchSpanProcessor(exporter,
		trace.WithMaxExportBatchSize(512),
		trace.WithMaxQueueSize(2048),
	)
}

// CreateSimpleSpanProcessor creates a synchronous span processor.
// Benchmark processes are short-lived; console and file sinks use this so
// every span reaches the sink before the process exits.
func CreateSimpleSpanProcessor(exporter trace.SpanExporter) trace.SpanProcessor {
	return trace.NewSimpleSpanProcessor(exporter)
}
