package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"twstock/internal/config"
	"twstock/internal/infrastructure"
	"twstock/internal/sanitize"
	"twstock/internal/table"
)

// CompareEntry is one instrument in a comparison.
type CompareEntry struct {
	Code        string   `json:"code"`
	LatestPrice *float64 `json:"latest_price"`
	AvgPrice    *float64 `json:"avg_price"`
	MaxPrice    *float64 `json:"max_price"`
	MinPrice    *float64 `json:"min_price"`
	DaysCount   int      `json:"days_count"`
}

// CompareResult is the response of Compare. Dropped lists the identifiers
// that failed to load or aggregate.
type CompareResult struct {
	Days    int            `json:"days"`
	Stocks  []CompareEntry `json:"stocks"`
	Dropped []string       `json:"-"`
}

// SummaryEntry is one instrument in a summary.
type SummaryEntry struct {
	Code         string   `json:"code"`
	LatestDate   *string  `json:"latest_date"`
	LatestPrice  *float64 `json:"latest_price"`
	TotalRecords int      `json:"total_records"`
}

// SummaryResult is the response of Summary.
type SummaryResult struct {
	TotalStocks int            `json:"total_stocks"`
	Stocks      []SummaryEntry `json:"stocks"`
	Dropped     []string       `json:"-"`
}

// AnalysisService answers range queries and multi-instrument batches.
type AnalysisService struct {
	store  store
	logger *slog.Logger
	options
}

// NewAnalysisService creates an analysis service reading from paths.StockDir.
func NewAnalysisService(loader TableLoader, paths *config.Paths, logger *slog.Logger, opts ...Option) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}

	o := newOptions(opts)
	logger.Info("AnalysisService initialized",
		slog.String("stock_dir", paths.StockDir),
		slog.Int("batch_concurrency", o.concurrency))

	return &AnalysisService{
		store:   store{loader: loader, dir: paths.StockDir},
		logger:  logger.With(slog.String("component", "analysis_service")),
		options: o,
	}
}

// Range returns the rows of id dated between start and end inclusive, most
// recent first.
func (s *AnalysisService) Range(ctx context.Context, id string, start, end int64) (rows []map[string]any, err error) {
	ctx, done := s.startQuery(ctx, "range",
		attribute.String("code", id),
		attribute.Int64("start", start),
		attribute.Int64("end", end))
	defer func() { done(&err) }()

	t, err := s.store.load(ctx, id)
	if err != nil {
		logQueryError(ctx, s.logger, "range", id, err)
		return nil, err
	}

	filtered, err := table.FilterDateRange(t, ColumnDate, start, end)
	if err != nil {
		logQueryError(ctx, s.logger, "range", id, err)
		return nil, err
	}
	sorted, err := table.SortByColumn(filtered, ColumnDate, true)
	if err != nil {
		return nil, err
	}
	return sanitize.Records(sorted.Records()), nil
}

// Compare computes window statistics over the last days rows of every id.
// Identifiers that fail are logged, counted and left out; identifiers with
// an empty window are left out silently.
func (s *AnalysisService) Compare(ctx context.Context, ids []string, days int) (res *CompareResult, err error) {
	ctx, done := s.startQuery(ctx, "compare",
		attribute.Int("ids", len(ids)), attribute.Int("days", days))
	defer func() { done(&err) }()

	results := collect(ctx, ids, s.concurrency, func(ctx context.Context, id string) (CompareEntry, error) {
		t, err := s.store.load(ctx, id)
		if err != nil {
			return CompareEntry{}, err
		}
		window, err := latestByDate(t, days)
		if err != nil {
			return CompareEntry{}, err
		}
		if window.Len() == 0 {
			return CompareEntry{}, errSkipped
		}
		stats, err := windowStats(id, window)
		if err != nil {
			return CompareEntry{}, err
		}
		return CompareEntry{
			Code:        id,
			LatestPrice: stats.LatestPrice,
			AvgPrice:    stats.AvgPrice,
			MaxPrice:    stats.MaxPrice,
			MinPrice:    stats.MinPrice,
			DaysCount:   stats.DaysCount,
		}, nil
	})

	return &CompareResult{
		Days:    days,
		Stocks:  successes(results),
		Dropped: reportDropped(ctx, s.logger, s.metrics, "compare", results),
	}, nil
}

// Summary reports the most recent row and the row count of every id.
// Failures are handled as in Compare.
func (s *AnalysisService) Summary(ctx context.Context, ids []string) (res *SummaryResult, err error) {
	ctx, done := s.startQuery(ctx, "summary", attribute.Int("ids", len(ids)))
	defer func() { done(&err) }()

	results := collect(ctx, ids, s.concurrency, func(ctx context.Context, id string) (SummaryEntry, error) {
		t, err := s.store.load(ctx, id)
		if err != nil {
			return SummaryEntry{}, err
		}
		if t.Len() == 0 {
			return SummaryEntry{}, errSkipped
		}
		latest, err := table.LatestRow(t, ColumnDate)
		if err != nil {
			return SummaryEntry{}, err
		}
		date, err := latestDate(latest)
		if err != nil {
			return SummaryEntry{}, err
		}
		entry := SummaryEntry{
			Code:         id,
			LatestDate:   date,
			TotalRecords: t.Len(),
		}
		price, ok, err := latest.Float(ColumnClose)
		if err != nil {
			return SummaryEntry{}, err
		}
		if ok {
			entry.LatestPrice = finite(&price)
		}
		return entry, nil
	})

	stocks := successes(results)
	return &SummaryResult{
		TotalStocks: len(stocks),
		Stocks:      stocks,
		Dropped:     reportDropped(ctx, s.logger, s.metrics, "summary", results),
	}, nil
}

// reportDropped logs and counts every failed item and returns their ids.
// Skipped items are logged at debug level only.
func reportDropped[T any](ctx context.Context, logger *slog.Logger, metrics *infrastructure.QueryMetrics, operation string, results []ItemResult[T]) []string {
	var dropped []string
	for _, r := range results {
		switch {
		case r.OK():
		case r.Skipped():
			logger.DebugContext(ctx, "batch item skipped",
				slog.String("operation", operation),
				slog.String("code", r.ID))
		default:
			dropped = append(dropped, r.ID)
			logger.WarnContext(ctx, "batch item dropped",
				slog.String("operation", operation),
				slog.String("code", r.ID),
				infrastructure.KindAttr(r.Err),
				infrastructure.ErrorAttr(r.Err))
			metrics.RecordDropped(ctx, operation, r.Err)
		}
	}
	return dropped
}
