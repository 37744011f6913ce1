package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"twstock/internal/config"
	"twstock/internal/sanitize"
	"twstock/internal/table"
)

// StockStats describes the most recent window of an instrument's history.
// Price fields are nil when the window holds no usable value.
type StockStats struct {
	Code        string   `json:"code"`
	DaysCount   int      `json:"days_count"`
	LatestPrice *float64 `json:"latest_price"`
	AvgPrice    *float64 `json:"avg_price"`
	MaxPrice    *float64 `json:"max_price"`
	MinPrice    *float64 `json:"min_price"`
	LatestDate  *string  `json:"latest_date"`
}

// StockService answers queries over single instrument history files.
type StockService struct {
	store  store
	logger *slog.Logger
	options
}

// NewStockService creates a stock service reading from paths.StockDir.
func NewStockService(loader TableLoader, paths *config.Paths, logger *slog.Logger, opts ...Option) *StockService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("StockService initialized",
		slog.String("stock_dir", paths.StockDir))

	return &StockService{
		store:   store{loader: loader, dir: paths.StockDir},
		logger:  logger.With(slog.String("component", "stock_service")),
		options: newOptions(opts),
	}
}

// History returns up to limit rows of id, most recent first.
func (s *StockService) History(ctx context.Context, id string, limit int) (rows []map[string]any, err error) {
	ctx, done := s.startQuery(ctx, "history",
		attribute.String("code", id), attribute.Int("limit", limit))
	defer func() { done(&err) }()

	t, err := s.store.load(ctx, id)
	if err != nil {
		logQueryError(ctx, s.logger, "history", id, err)
		return nil, err
	}
	if !t.HasColumn(ColumnDate) {
		err = table.MissingColumnError(ColumnDate)
		logQueryError(ctx, s.logger, "history", id, err)
		return nil, err
	}

	window, err := latestByDate(t, limit)
	if err != nil {
		return nil, err
	}
	return sanitize.Records(window.Records()), nil
}

// Latest returns the most recent row of id.
func (s *StockService) Latest(ctx context.Context, id string) (row map[string]any, err error) {
	ctx, done := s.startQuery(ctx, "latest", attribute.String("code", id))
	defer func() { done(&err) }()

	t, err := s.store.load(ctx, id)
	if err != nil {
		logQueryError(ctx, s.logger, "latest", id, err)
		return nil, err
	}

	latest, err := table.LatestRow(t, ColumnDate)
	if err != nil {
		logQueryError(ctx, s.logger, "latest", id, err)
		return nil, err
	}
	return sanitize.Sanitize(map[string]any(latest)).(map[string]any), nil
}

// Stats summarises the most recent days rows of id. Average and latest
// price come from Close, the extremes from High and Low.
func (s *StockService) Stats(ctx context.Context, id string, days int) (stats *StockStats, err error) {
	ctx, done := s.startQuery(ctx, "stats",
		attribute.String("code", id), attribute.Int("days", days))
	defer func() { done(&err) }()

	t, err := s.store.load(ctx, id)
	if err != nil {
		logQueryError(ctx, s.logger, "stats", id, err)
		return nil, err
	}

	window, err := latestByDate(t, days)
	if err != nil {
		logQueryError(ctx, s.logger, "stats", id, err)
		return nil, err
	}
	stats, err = windowStats(id, window)
	if err != nil {
		logQueryError(ctx, s.logger, "stats", id, err)
		return nil, err
	}
	return stats, nil
}

// windowStats computes StockStats over a window already sorted by date
// descending.
func windowStats(id string, window *table.Table) (*StockStats, error) {
	closes, err := table.Aggregate(window, ColumnClose)
	if err != nil {
		return nil, err
	}
	highs, err := table.Aggregate(window, ColumnHigh)
	if err != nil {
		return nil, err
	}
	lows, err := table.Aggregate(window, ColumnLow)
	if err != nil {
		return nil, err
	}

	stats := &StockStats{
		Code:        id,
		DaysCount:   window.Len(),
		LatestPrice: finite(closes.Latest),
		AvgPrice:    finite(closes.Mean),
		MaxPrice:    finite(highs.Max),
		MinPrice:    finite(lows.Min),
	}
	if window.Len() > 0 {
		date, err := latestDate(window.Row(0))
		if err != nil {
			return nil, err
		}
		stats.LatestDate = date
	}
	return stats, nil
}

// finite drops NaN and infinite values.
func finite(f *float64) *float64 {
	if v, ok := sanitize.Float(f).(float64); ok {
		return &v
	}
	return nil
}
