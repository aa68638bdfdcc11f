package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics counts what happens to inbound order webhooks.
type PipelineMetrics struct {
	received       metric.Int64Counter
	skipped        metric.Int64Counter
	resolved       metric.Int64Counter
	lookupFailures metric.Int64Counter
	deliveries     metric.Int64Counter
}

func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	received, err := meter.Int64Counter("webhooks_received_total",
		metric.WithDescription("Order webhooks received"))
	if err != nil {
		return nil, err
	}

	skipped, err := meter.Int64Counter("orders_skipped_total",
		metric.WithDescription("Orders dropped before delivery, by reason"))
	if err != nil {
		return nil, err
	}

	resolved, err := meter.Int64Counter("assets_resolved_total",
		metric.WithDescription("Line items resolved to a download link"))
	if err != nil {
		return nil, err
	}

	lookupFailures, err := meter.Int64Counter("catalog_lookup_failures_total",
		metric.WithDescription("Catalog variant lookups that failed"))
	if err != nil {
		return nil, err
	}

	deliveries, err := meter.Int64Counter("deliveries_total",
		metric.WithDescription("Delivery emails attempted, by result"))
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		received:       received,
		skipped:        skipped,
		resolved:       resolved,
		lookupFailures: lookupFailures,
		deliveries:     deliveries,
	}, nil
}

// NewGlobalPipelineMetrics registers the instruments on the global meter
// provider.
func NewGlobalPipelineMetrics() (*PipelineMetrics, error) {
	return NewPipelineMetrics(otel.Meter("download-delivery"))
}

func (m *PipelineMetrics) WebhookReceived(ctx context.Context, topic string) {
	m.received.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}

func (m *PipelineMetrics) OrderSkipped(ctx context.Context, reason string) {
	m.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *PipelineMetrics) AssetResolved(ctx context.Context) {
	m.resolved.Add(ctx, 1)
}

func (m *PipelineMetrics) LookupFailed(ctx context.Context) {
	m.lookupFailures.Add(ctx, 1)
}

func (m *PipelineMetrics) DeliveryAttempted(ctx context.Context, result string) {
	m.deliveries.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
