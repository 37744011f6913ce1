package http

import (
	"context"

	"twstock/internal/files"
	"twstock/internal/services"
)

// StockQuerier answers per-instrument history queries.
type StockQuerier interface {
	History(ctx context.Context, id string, limit int) ([]map[string]any, error)
	Latest(ctx context.Context, id string) (map[string]any, error)
	Stats(ctx context.Context, id string, days int) (*services.StockStats, error)
}

// AnalysisQuerier answers date range and multi-instrument queries.
type AnalysisQuerier interface {
	Range(ctx context.Context, id string, start, end int64) ([]map[string]any, error)
	Compare(ctx context.Context, ids []string, days int) (*services.CompareResult, error)
	Summary(ctx context.Context, ids []string) (*services.SummaryResult, error)
}

// DailyQuerier answers market snapshot queries.
type DailyQuerier interface {
	Snapshot(ctx context.Context, date string) ([]map[string]any, error)
	Gainers(ctx context.Context, date string, limit int) ([]map[string]any, error)
	Losers(ctx context.Context, date string, limit int) ([]map[string]any, error)
}

// CatalogLister lists the available table files.
type CatalogLister interface {
	Stocks(ctx context.Context) (*services.CatalogListing, error)
	Dates(ctx context.Context) (*services.CatalogListing, error)
	Latest(ctx context.Context) (files.FileInfo, bool, error)
}
