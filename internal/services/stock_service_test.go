package services

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"twstock/internal/table"
)

func newStockService(t *testing.T) (*StockService, string) {
	t.Helper()
	paths := testPaths(t)
	loader := table.NewLoader(discardLogger())
	return NewStockService(loader, paths, discardLogger()), paths.StockDir
}

func TestStockService_History(t *testing.T) {
	svc, dir := newStockService(t)
	writeHistory(t, dir, "AAA", 10)
	ctx := context.Background()

	t.Run("most recent first", func(t *testing.T) {
		rows, err := svc.History(ctx, "AAA", 5)
		require.NoError(t, err)
		require.Len(t, rows, 5)

		want := []int64{20240110, 20240109, 20240108, 20240107, 20240106}
		for i, row := range rows {
			assert.Equal(t, want[i], row["Date"])
		}
		assert.Equal(t, int64(110), rows[0]["Close"])
	})

	t.Run("limit above length returns everything", func(t *testing.T) {
		rows, err := svc.History(ctx, "AAA", 100)
		require.NoError(t, err)
		assert.Len(t, rows, 10)
	})

	t.Run("zero limit", func(t *testing.T) {
		rows, err := svc.History(ctx, "AAA", 0)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.History(ctx, "ZZZ", 5)
		assert.ErrorIs(t, err, table.ErrNotFound)
	})

	t.Run("traversal is not found", func(t *testing.T) {
		_, err := svc.History(ctx, "../daily/x", 5)
		assert.ErrorIs(t, err, table.ErrNotFound)
	})

	t.Run("missing Date column", func(t *testing.T) {
		writeTable(t, dir, "NODATE", "Close", "1", "2")
		_, err := svc.History(ctx, "NODATE", 5)
		assert.ErrorIs(t, err, table.ErrMissingColumn)
	})
}

func TestStockService_HistoryIsJSONSafe(t *testing.T) {
	svc, dir := newStockService(t)
	writeTable(t, dir, "NAN",
		"Date,Close,High,Low",
		"20240101,NaN,1,1",
		"20240102,inf,2,2",
	)

	rows, err := svc.History(context.Background(), "NAN", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0]["Close"])
	assert.Nil(t, rows[1]["Close"])

	_, err = json.Marshal(rows)
	assert.NoError(t, err)
}

func TestStockService_Latest(t *testing.T) {
	svc, dir := newStockService(t)
	writeHistory(t, dir, "AAA", 3)
	writeTable(t, dir, "EMPTY", "Date,Close,High,Low")
	ctx := context.Background()

	row, err := svc.Latest(ctx, "AAA")
	require.NoError(t, err)
	assert.Equal(t, int64(20240103), row["Date"])
	assert.Equal(t, int64(103), row["Close"])

	_, err = svc.Latest(ctx, "EMPTY")
	assert.ErrorIs(t, err, table.ErrEmptyTable)

	_, err = svc.Latest(ctx, "ZZZ")
	assert.ErrorIs(t, err, table.ErrNotFound)
}

func TestStockService_NonASCIIID(t *testing.T) {
	svc, dir := newStockService(t)
	writeHistory(t, dir, "台積電", 2)
	ctx := context.Background()

	row, err := svc.Latest(ctx, "台積電")
	require.NoError(t, err)
	assert.Equal(t, int64(20240102), row["Date"])

	_, err = svc.Latest(ctx, "../台積電")
	assert.ErrorIs(t, err, table.ErrNotFound)
}

func TestStockService_Stats(t *testing.T) {
	svc, dir := newStockService(t)
	ctx := context.Background()

	t.Run("aggregates the window", func(t *testing.T) {
		writeTable(t, dir, "AGG",
			"Date,Close,High,Low",
			"20240101,10.0,12,9",
			"20240102,20.0,20.0,18",
			"20240103,5.0,6,5.0",
		)

		stats, err := svc.Stats(ctx, "AGG", 20)
		require.NoError(t, err)

		assert.Equal(t, "AGG", stats.Code)
		assert.Equal(t, 3, stats.DaysCount)
		require.NotNil(t, stats.LatestPrice)
		assert.Equal(t, 5.0, *stats.LatestPrice)
		require.NotNil(t, stats.AvgPrice)
		assert.InDelta(t, 11.6666, *stats.AvgPrice, 1e-3)
		require.NotNil(t, stats.MaxPrice)
		assert.Equal(t, 20.0, *stats.MaxPrice)
		require.NotNil(t, stats.MinPrice)
		assert.Equal(t, 5.0, *stats.MinPrice)
		require.NotNil(t, stats.LatestDate)
		assert.Equal(t, "20240103", *stats.LatestDate)
	})

	t.Run("window smaller than history", func(t *testing.T) {
		writeHistory(t, dir, "AAA", 10)

		stats, err := svc.Stats(ctx, "AAA", 3)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.DaysCount)
		assert.Equal(t, 110.0, *stats.LatestPrice)
		assert.Equal(t, 109.0, *stats.AvgPrice)
		assert.Equal(t, 111.0, *stats.MaxPrice)
		assert.Equal(t, 107.0, *stats.MinPrice)
	})

	t.Run("empty window is null", func(t *testing.T) {
		writeTable(t, dir, "EMPTY", "Date,Close,High,Low")

		stats, err := svc.Stats(ctx, "EMPTY", 20)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.DaysCount)
		assert.Nil(t, stats.LatestPrice)
		assert.Nil(t, stats.AvgPrice)
		assert.Nil(t, stats.MaxPrice)
		assert.Nil(t, stats.MinPrice)
		assert.Nil(t, stats.LatestDate)

		data, err := json.Marshal(stats)
		require.NoError(t, err)
		assert.JSONEq(t, `{"code":"EMPTY","days_count":0,"latest_price":null,"avg_price":null,
			"max_price":null,"min_price":null,"latest_date":null}`, string(data))
	})

	t.Run("missing High column", func(t *testing.T) {
		writeTable(t, dir, "NOHIGH", "Date,Close,Low", "20240101,1,1")
		_, err := svc.Stats(ctx, "NOHIGH", 20)
		assert.ErrorIs(t, err, table.ErrMissingColumn)
	})
}

func TestStockService_LoaderErrorsPropagate(t *testing.T) {
	paths := testPaths(t)
	loader := new(MockTableLoader)
	loader.On("Load", mock.Anything, paths.StockFile("BAD")).
		Return(nil, table.ParseError("BAD.csv", assert.AnError))

	svc := NewStockService(loader, paths, discardLogger())

	_, err := svc.Latest(context.Background(), "BAD")
	assert.ErrorIs(t, err, table.ErrParseFailure)
	assert.ErrorIs(t, err, assert.AnError)
	loader.AssertExpectations(t)
}

func TestFinite(t *testing.T) {
	nan, inf, one := math.NaN(), math.Inf(-1), 1.0
	assert.Nil(t, finite(nil))
	assert.Nil(t, finite(&nan))
	assert.Nil(t, finite(&inf))
	assert.Equal(t, 1.0, *finite(&one))
}
