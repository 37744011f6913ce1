package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"twstock/internal/config"
	"twstock/internal/sanitize"
	"twstock/internal/table"
)

// DailyService answers queries over daily market snapshots.
type DailyService struct {
	store  store
	logger *slog.Logger
	options
}

// NewDailyService creates a daily service reading from paths.DailyDir.
func NewDailyService(loader TableLoader, paths *config.Paths, logger *slog.Logger, opts ...Option) *DailyService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("DailyService initialized",
		slog.String("daily_dir", paths.DailyDir))

	return &DailyService{
		store:   store{loader: loader, dir: paths.DailyDir},
		logger:  logger.With(slog.String("component", "daily_service")),
		options: newOptions(opts),
	}
}

// Snapshot returns every row of the snapshot for date in file order.
func (s *DailyService) Snapshot(ctx context.Context, date string) (rows []map[string]any, err error) {
	ctx, done := s.startQuery(ctx, "snapshot", attribute.String("date", date))
	defer func() { done(&err) }()

	t, err := s.store.load(ctx, date)
	if err != nil {
		logQueryError(ctx, s.logger, "snapshot", date, err)
		return nil, err
	}
	return sanitize.Records(t.Records()), nil
}

// Gainers returns the limit rows of date with the largest ChangePercent.
func (s *DailyService) Gainers(ctx context.Context, date string, limit int) ([]map[string]any, error) {
	return s.rank(ctx, "gainers", date, limit, true)
}

// Losers returns the limit rows of date with the smallest ChangePercent.
func (s *DailyService) Losers(ctx context.Context, date string, limit int) ([]map[string]any, error) {
	return s.rank(ctx, "losers", date, limit, false)
}

func (s *DailyService) rank(ctx context.Context, operation, date string, limit int, descending bool) (rows []map[string]any, err error) {
	ctx, done := s.startQuery(ctx, operation,
		attribute.String("date", date), attribute.Int("limit", limit))
	defer func() { done(&err) }()

	t, err := s.store.load(ctx, date)
	if err != nil {
		logQueryError(ctx, s.logger, operation, date, err)
		return nil, err
	}

	// Checked before sorting so a snapshot without the column is a caller
	// error rather than a sort failure.
	if !t.HasColumn(ColumnChangePercent) {
		err = table.MissingColumnError(ColumnChangePercent)
		logQueryError(ctx, s.logger, operation, date, err)
		return nil, err
	}

	sorted, err := table.SortByColumn(t, ColumnChangePercent, descending)
	if err != nil {
		logQueryError(ctx, s.logger, operation, date, err)
		return nil, err
	}
	return sanitize.Records(table.Head(sorted, limit).Records()), nil
}
