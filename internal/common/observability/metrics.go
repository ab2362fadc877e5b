package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records end-to-end pipeline metrics through OpenTelemetry,
// exported on the default Prometheus registry.
type Observability struct {
	meterProvider    *metric.MeterProvider
	meter            otelmetric.Meter
	pipelineCounter  otelmetric.Int64Counter
	pipelineDuration otelmetric.Float64Histogram
}

// New returns a usable Observability even when the exporter cannot be
// created; recording then becomes a no-op.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	pipelineCounter, _ := meter.Int64Counter(
		"relay.pipeline.completed",
		otelmetric.WithDescription("Primary records that reached a delivery outcome"),
	)

	pipelineDuration, _ := meter.Float64Histogram(
		"relay.pipeline.duration",
		otelmetric.WithDescription("Time from primary capture to delivery outcome"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:    provider,
		meter:            meter,
		pipelineCounter:  pipelineCounter,
		pipelineDuration: pipelineDuration,
	}, nil
}

// RecordPipeline records one finished pipeline run.
func (o *Observability) RecordPipeline(ctx context.Context, duration time.Duration, outcome string, enriched bool) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Bool("enriched", enriched),
	)
	if o.pipelineCounter != nil {
		o.pipelineCounter.Add(ctx, 1, attrs)
	}
	if o.pipelineDuration != nil {
		o.pipelineDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
