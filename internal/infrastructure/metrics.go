package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"twstock/internal/table"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// QueryMetrics holds the instruments of the query layer.
type QueryMetrics struct {
	tableLoads    metric.Int64Counter
	queryDuration metric.Float64Histogram
	batchDropped  metric.Int64Counter
}

// NewQueryMetrics creates the query instruments on meter.
func NewQueryMetrics(meter metric.Meter) (*QueryMetrics, error) {
	tableLoads, err := meter.Int64Counter(
		"twstock_table_loads_total",
		metric.WithDescription("Total number of table file loads"),
	)
	if err != nil {
		return nil, err
	}

	queryDuration, err := meter.Float64Histogram(
		"twstock_query_duration_seconds",
		metric.WithDescription("Query execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	batchDropped, err := meter.Int64Counter(
		"twstock_batch_items_dropped_total",
		metric.WithDescription("Total number of identifiers dropped from batch queries"),
	)
	if err != nil {
		return nil, err
	}

	return &QueryMetrics{
		tableLoads:    tableLoads,
		queryDuration: queryDuration,
		batchDropped:  batchDropped,
	}, nil
}

// ObserveLoad implements table.LoadObserver.
func (m *QueryMetrics) ObserveLoad(ctx context.Context, encoding string, err error) {
	if m == nil {
		return
	}
	kind, outcome := "none", OutcomeSuccess
	if err != nil {
		kind, outcome = table.KindOf(err).String(), OutcomeFailure
	}
	if encoding == "" {
		encoding = "none"
	}
	m.tableLoads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("encoding", encoding),
		attribute.String("outcome", outcome),
	))

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent("table.loaded", trace.WithAttributes(
			attribute.String("encoding", encoding),
			attribute.String("outcome", outcome),
		))
	}
}

// RecordQuery records the duration of one query operation.
func (m *QueryMetrics) RecordQuery(ctx context.Context, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.queryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordDropped counts one identifier dropped from a batch operation.
func (m *QueryMetrics) RecordDropped(ctx context.Context, operation string, err error) {
	if m == nil {
		return
	}
	reason := table.KindOf(err).String()
	m.batchDropped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("reason", reason),
	))
}
