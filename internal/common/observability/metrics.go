package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the OpenTelemetry meter and tracer used by the pipeline.
type Observability struct {
	registry       *promclient.Registry
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	stepCounter    otelmetric.Int64Counter
	stepDuration   otelmetric.Float64Histogram
}

type options struct {
	spanProcessors []sdktrace.SpanProcessor
	global         bool
}

type Option func(*options)

// WithSpanProcessor attaches a processor (exporter batcher, test recorder) to the tracer.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) { o.spanProcessors = append(o.spanProcessors, sp) }
}

// WithGlobal installs the providers as the otel globals.
func WithGlobal() Option {
	return func(o *options) { o.global = true }
}

func New(serviceName string, opts ...Option) *Observability {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tpOpts := make([]sdktrace.TracerProviderOption, 0, len(o.spanProcessors))
	for _, sp := range o.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
	}
	tracerProvider := sdktrace.NewTracerProvider(tpOpts...)

	obs := &Observability{
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(serviceName),
	}

	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return obs
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	if o.global {
		otel.SetMeterProvider(provider)
		otel.SetTracerProvider(tracerProvider)
	}

	meter := provider.Meter(serviceName)

	stepCounter, _ := meter.Int64Counter(
		"intake.steps.processed",
		otelmetric.WithDescription("Number of pipeline steps processed"),
	)

	stepDuration, _ := meter.Float64Histogram(
		"intake.steps.duration",
		otelmetric.WithDescription("Pipeline step duration"),
		otelmetric.WithUnit("ms"),
	)

	obs.registry = registry
	obs.meterProvider = provider
	obs.stepCounter = stepCounter
	obs.stepDuration = stepDuration
	return obs
}

// Registry exposes the prometheus registry the OTel exporter writes to.
func (o *Observability) Registry() *promclient.Registry {
	return o.registry
}

// StartStep opens a span for one pipeline step.
func (o *Observability) StartStep(ctx context.Context, step, applicationID string) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	attrs := []attribute.KeyValue{attribute.String("intake.step", step)}
	if applicationID != "" {
		attrs = append(attrs, attribute.String("intake.application_id", applicationID))
	}
	return o.tracer.Start(ctx, "intake."+step, trace.WithAttributes(attrs...))
}

// EndStep records the step metrics and closes the span.
func (o *Observability) EndStep(ctx context.Context, span trace.Span, step string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	)
	if o.stepCounter != nil {
		o.stepCounter.Add(ctx, 1, attrs)
	}
	if o.stepDuration != nil {
		o.stepDuration.Record(ctx, float64(time.Since(started).Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
