package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"twstock/internal/files"
	"twstock/internal/infrastructure"
	"twstock/internal/table"
)

// Column names of the instrument and snapshot tables.
const (
	ColumnDate          = "Date"
	ColumnClose         = "Close"
	ColumnHigh          = "High"
	ColumnLow           = "Low"
	ColumnChangePercent = "ChangePercent"
)

// TableLoader loads one table file. *table.Loader satisfies it.
type TableLoader interface {
	Load(ctx context.Context, path string) (*table.Table, error)
}

// Option configures a query service.
type Option func(*options)

type options struct {
	metrics     *infrastructure.QueryMetrics
	tracer      trace.Tracer
	concurrency int
}

// WithMetrics records query durations and dropped batch items on m.
func WithMetrics(m *infrastructure.QueryMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithTracer sets the tracer used for query spans. The global tracer is
// used otherwise.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

// WithConcurrency bounds the number of tables a batch query loads at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

func newOptions(opts []Option) options {
	o := options{concurrency: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(infrastructure.InstrumentationName)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	return o
}

// store resolves identifiers to table files inside one directory.
type store struct {
	loader TableLoader
	dir    string
}

var errInvalidID = errors.New("invalid identifier")

func (s store) path(id string) (string, error) {
	if !files.ValidID(id) {
		return "", table.NotFoundError(id, errInvalidID)
	}
	return files.TablePath(s.dir, id), nil
}

func (s store) load(ctx context.Context, id string) (*table.Table, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	return s.loader.Load(ctx, path)
}

// startQuery opens a span for operation. The returned func ends it and
// records the duration; call it with the address of the named error result.
func (o options) startQuery(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "query."+operation, trace.WithAttributes(attrs...))
	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		span.End()
		o.metrics.RecordQuery(ctx, operation, time.Since(start), err)
	}
}

// logQueryError logs a failed query operation
func logQueryError(ctx context.Context, logger *slog.Logger, operation, subject string, err error) {
	logger.LogAttrs(ctx, slog.LevelDebug, "query failed",
		slog.String("operation", operation),
		slog.String("subject", subject),
		infrastructure.KindAttr(err),
		infrastructure.ErrorAttr(err))
}

// latestDate returns the date of row as text, or nil for a null cell.
func latestDate(row table.Row) (*string, error) {
	s, ok, err := row.String(ColumnDate)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

// latestByDate sorts t by date descending and keeps the first n rows.
func latestByDate(t *table.Table, n int) (*table.Table, error) {
	sorted, err := table.SortByColumn(t, ColumnDate, true)
	if err != nil {
		return nil, err
	}
	return table.Head(sorted, n), nil
}
