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

// Package tracing records benchmark phases and attempts as OpenTelemetry
// spans so measurement runs can be correlated in telemetry pipelines.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Manager defines the interface for span recording management.
type Manager interface {
	// Initialize initializes the tracer with the given configuration.
	Initialize(ctx context.Context, config *Config) error

	// StartSpan creates a new span with the given operation name.
	StartSpan(ctx context.Context, operationName string, opts ...SpanOption) (context.Context, Span)

	// Shutdown flushes pending spans and shuts the recorder down.
	Shutdown(ctx context.Context) error
}

// Span defines the interface for a recorded span.
type Span interface {
	// SetAttribute sets a single attribute on the span.
	SetAttribute(key string, value interface{})

	// SetAttributes sets multiple attributes on the span.
	SetAttributes(attrs ...attribute.KeyValue)

	// AddEvent adds an event to the span.
	AddEvent(name string, opts ...oteltrace.EventOption)

	// SetStatus sets the status of the span.
	SetStatus(code codes.Code, description string)

	// End ends the span.
	End(opts ...oteltrace.SpanEndOption)

	// RecordError records an error as an event on the span.
	RecordError(err error, opts ...oteltrace.EventOption)
}

// SpanOption represents an option for creating spans.
type SpanOption func(*spanConfig)

type spanConfig struct {
	attributes []attribute.KeyValue
}

// WithAttributes sets span attributes.
func WithAttributes(attrs ...attribute.KeyValue) SpanOption {
	return func(c *spanConfig) {
		c.attributes = append(c.attributes, attrs...)
	}
}

type manager struct {
	provider *trace.TracerProvider
	tracer   oteltrace.Tracer
	config   *Config
}

// NewManager creates a new span recorder manager. Until Initialize is called
// every span it hands out is a no-op.
func NewManager() Manager {
	return &manager{}
}

// Initialize initializes the tracer with the given configuration.
func (m *manager) Initialize(ctx context.Context, config *Config) error {
	if config == nil {
		return fmt.Errorf("tracing config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid tracing config: %w", err)
	}

	m.config = config

	if !config.Enabled {
		// Leave the tracer nil; StartSpan degrades to no-op spans.
		return nil
	}

	res, err := m.createResource(config)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := NewExporterFactory().CreateSpanExporter(ctx, config.Exporter)
	if err != nil {
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	var processor trace.SpanProcessor
	if config.Exporter.Type == "otlp" {
		processor = CreateBatchSpanProcessor(exporter)
	} else {
		processor = CreateSimpleSpanProcessor(exporter)
	}

	sampler, err := createSampler(config.Sampling)
	if err != nil {
		return fmt.Errorf("failed to create sampler: %w", err)
	}

	m.provider = trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithSpanProcessor(processor),
		trace.WithSampler(sampler),
	)
	m.tracer = m.provider.Tracer(config.ServiceName)

	return nil
}

func (m *manager) createResource(config *Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(config.ServiceName),
	}

	for key, value := range config.ResourceAttributes {
		attrs = append(attrs, attribute.String(key, value))
	}

	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, attrs...),
	)
}

func createSampler(config SamplingConfig) (trace.Sampler, error) {
	switch config.Type {
	case "always_on":
		return trace.AlwaysSample(), nil
	case "always_off":
		return trace.NeverSample(), nil
	case "traceidratio":
		return trace.TraceIDRatioBased(config.Rate), nil
	default:
		return nil, fmt.Errorf("unsupported sampling type: %s", config.Type)
	}
}

// StartSpan creates a new span with the given operation name.
func (m *manager) StartSpan(ctx context.Context, operationName string, opts ...SpanOption) (context.Context, Span) {
	if m.tracer == nil {
		return ctx, &noOpSpan{}
	}

	config := &spanConfig{}
	for _, opt := range opts {
		opt(config)
	}

	spanOpts := []oteltrace.SpanStartOption{}
	if len(config.attributes) > 0 {
		spanOpts = append(spanOpts, oteltrace.WithAttributes(config.attributes...))
	}

	ctx, otelSpan := m.tracer.Start(ctx, operationName, spanOpts...)
	return ctx, &spanWrapper{span: otelSpan}
}

// Shutdown flushes pending spans and shuts the recorder down.
func (m *manager) Shutdown(ctx context.Context) error {
	if m.provider != nil {
		return m.provider.Shutdown(ctx)
	}
	return nil
}

// WithSpanAttribute wraps fn in a span carrying a single string attribute and
// records any failure on the span before it ends. This is the building block
// for phase and attempt spans: the phase span wraps the attempt loop, and
// each attempt span nests inside it through the returned context.
func WithSpanAttribute(ctx context.Context, m Manager, spanName, attrKey, attrValue string, fn func(context.Context) error) error {
	return WithSpan(ctx, m, spanName, []attribute.KeyValue{attribute.String(attrKey, attrValue)}, fn)
}

// WithSpan is the variadic-attribute form of WithSpanAttribute.
func WithSpan(ctx context.Context, m Manager, spanName string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := m.StartSpan(ctx, spanName, WithAttributes(attrs...))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// spanWrapper wraps an OpenTelemetry span to implement our Span interface.
type spanWrapper struct {
	span oteltrace.Span
}

// SetAttribute sets a single attribute on the span.
func (s *spanWrapper) SetAttribute(key string, value interface{}) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
	}
}

func (s *spanWrapper) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

func (s *spanWrapper) AddEvent(name string, opts ...oteltrace.EventOption) {
	s.span.AddEvent(name, opts...)
}

func (s *spanWrapper) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}

func (s *spanWrapper) End(opts ...oteltrace.SpanEndOption) {
	s.span.End(opts...)
}

func (s *spanWrapper) RecordError(err error, opts ...oteltrace.EventOption) {
	s.span.RecordError(err, opts...)
}

// noOpSpan is a no-operation span implementation.
type noOpSpan struct{}

func (s *noOpSpan) SetAttribute(key string, value interface{})           {}
func (s *noOpSpan) SetAttributes(attrs ...attribute.KeyValue)            {}
func (s *noOpSpan) AddEvent(name string, opts ...oteltrace.EventOption)  {}
func (s *noOpSpan) SetStatus(code codes.Code, description string)        {}
func (s *noOpSpan) End(opts ...oteltrace.SpanEndOption)                  {}
func (s *noOpSpan) RecordError(err error, opts ...oteltrace.EventOption) {}
