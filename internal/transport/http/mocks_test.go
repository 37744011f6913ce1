package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"

	"twstock/internal/config"
	apierrors "twstock/internal/errors"
	"twstock/internal/files"
	"twstock/internal/middleware"
	"twstock/internal/services"
	"twstock/internal/shared/testutil"
)

type MockStockQuerier struct{ mock.Mock }

func (m *MockStockQuerier) History(ctx context.Context, id string, limit int) ([]map[string]any, error) {
	args := m.Called(ctx, id, limit)
	rows, _ := args.Get(0).([]map[string]any)
	return rows, args.Error(1)
}

func (m *MockStockQuerier) Latest(ctx context.Context, id string) (map[string]any, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(map[string]any)
	return row, args.Error(1)
}

func (m *MockStockQuerier) Stats(ctx context.Context, id string, days int) (*services.StockStats, error) {
	args := m.Called(ctx, id, days)
	stats, _ := args.Get(0).(*services.StockStats)
	return stats, args.Error(1)
}

type MockAnalysisQuerier struct{ mock.Mock }

func (m *MockAnalysisQuerier) Range(ctx context.Context, id string, start, end int64) ([]map[string]any, error) {
	args := m.Called(ctx, id, start, end)
	rows, _ := args.Get(0).([]map[string]any)
	return rows, args.Error(1)
}

func (m *MockAnalysisQuerier) Compare(ctx context.Context, ids []string, days int) (*services.CompareResult, error) {
	args := m.Called(ctx, ids, days)
	res, _ := args.Get(0).(*services.CompareResult)
	return res, args.Error(1)
}

func (m *MockAnalysisQuerier) Summary(ctx context.Context, ids []string) (*services.SummaryResult, error) {
	args := m.Called(ctx, ids)
	res, _ := args.Get(0).(*services.SummaryResult)
	return res, args.Error(1)
}

type MockDailyQuerier struct{ mock.Mock }

func (m *MockDailyQuerier) Snapshot(ctx context.Context, date string) ([]map[string]any, error) {
	args := m.Called(ctx, date)
	rows, _ := args.Get(0).([]map[string]any)
	return rows, args.Error(1)
}

func (m *MockDailyQuerier) Gainers(ctx context.Context, date string, limit int) ([]map[string]any, error) {
	args := m.Called(ctx, date, limit)
	rows, _ := args.Get(0).([]map[string]any)
	return rows, args.Error(1)
}

func (m *MockDailyQuerier) Losers(ctx context.Context, date string, limit int) ([]map[string]any, error) {
	args := m.Called(ctx, date, limit)
	rows, _ := args.Get(0).([]map[string]any)
	return rows, args.Error(1)
}

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) Stocks(ctx context.Context) (*services.CatalogListing, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).(*services.CatalogListing)
	return l, args.Error(1)
}

func (m *MockCatalog) Dates(ctx context.Context) (*services.CatalogListing, error) {
	args := m.Called(ctx)
	l, _ := args.Get(0).(*services.CatalogListing)
	return l, args.Error(1)
}

func (m *MockCatalog) Latest(ctx context.Context) (files.FileInfo, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(files.FileInfo), args.Bool(1), args.Error(2)
}

// testQueryConfig returns the configured query defaults.
func testQueryConfig() config.QueryConfig {
	var q config.QueryConfig
	q.SetDefaults()
	return q
}

type handlerDeps struct {
	logger  *slog.Logger
	errors  *apierrors.ErrorHandler
	decoder Decoder
	logs    *testutil.BufferedSlogHandler
}

func newHandlerDeps(t *testing.T) handlerDeps {
	logger, logs := testutil.NewTestLogger(t)
	return handlerDeps{
		logger:  logger,
		errors:  apierrors.NewErrorHandler(logger, false),
		decoder: middleware.NewParamValidator(logger),
		logs:    logs,
	}
}

func serve(t *testing.T, routes chi.Router, mount, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Mount(mount, routes)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}
