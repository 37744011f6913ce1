package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"twstock/internal/files"
	"twstock/internal/services"
	"twstock/internal/table"
)

func newDailyHandler(t *testing.T) (*DailyHandler, *MockDailyQuerier, *MockCatalog) {
	deps := newHandlerDeps(t)
	svc := new(MockDailyQuerier)
	catalog := new(MockCatalog)
	return NewDailyHandler(svc, catalog, deps.decoder, testQueryConfig(), deps.logger, deps.errors), svc, catalog
}

func TestDailyHandler_Snapshot(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		h, svc, _ := newDailyHandler(t)
		svc.On("Snapshot", mock.Anything, "20240102").Return([]map[string]any{{"Code": int64(2330)}}, nil)

		w := serve(t, h.Routes(), "/daily", "/daily/20240102")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"Code":2330}]`, w.Body.String())
	})

	t.Run("unknown date", func(t *testing.T) {
		h, svc, _ := newDailyHandler(t)
		svc.On("Snapshot", mock.Anything, "20240101").Return(nil, table.NotFoundError("20240101.csv", nil))

		w := serve(t, h.Routes(), "/daily", "/daily/20240101")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "找不到日期: 20240101")
	})
}

func TestDailyHandler_Rankings(t *testing.T) {
	rows := []map[string]any{{"Code": int64(2454), "ChangePercent": 3.4}}

	t.Run("gainers default limit", func(t *testing.T) {
		h, svc, _ := newDailyHandler(t)
		svc.On("Gainers", mock.Anything, "20240102", 10).Return(rows, nil)

		w := serve(t, h.Routes(), "/daily", "/daily/20240102/gainers")

		require.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("losers explicit limit", func(t *testing.T) {
		h, svc, _ := newDailyHandler(t)
		svc.On("Losers", mock.Anything, "20240102", 3).Return(rows, nil)

		w := serve(t, h.Routes(), "/daily", "/daily/20240102/losers?limit=3")

		require.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing ChangePercent", func(t *testing.T) {
		h, svc, _ := newDailyHandler(t)
		svc.On("Gainers", mock.Anything, "20240102", 10).Return(nil, table.MissingColumnError("ChangePercent"))

		w := serve(t, h.Routes(), "/daily", "/daily/20240102/gainers")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "資料中缺少 ChangePercent 欄位")
	})
}

func TestDailyHandler_Latest(t *testing.T) {
	t.Run("serves newest snapshot", func(t *testing.T) {
		h, svc, catalog := newDailyHandler(t)
		catalog.On("Latest", mock.Anything).Return(files.FileInfo{ID: "20240103", ModTime: time.Now()}, true, nil)
		svc.On("Snapshot", mock.Anything, "20240103").Return([]map[string]any{{"Code": int64(2330)}}, nil)

		w := serve(t, h.Routes(), "/daily", "/daily/latest")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"date":"20240103","data":[{"Code":2330}]}`, w.Body.String())
	})

	t.Run("no snapshots", func(t *testing.T) {
		h, svc, catalog := newDailyHandler(t)
		catalog.On("Latest", mock.Anything).Return(files.FileInfo{}, false, nil)

		w := serve(t, h.Routes(), "/daily", "/daily/latest")

		assert.Equal(t, http.StatusNotFound, w.Code)
		svc.AssertNotCalled(t, "Snapshot", mock.Anything, mock.Anything)
	})
}

func TestDailyHandler_List(t *testing.T) {
	h, _, catalog := newDailyHandler(t)
	catalog.On("Dates", mock.Anything).Return(&services.CatalogListing{Total: 1, Items: []string{"20240102"}}, nil)

	w := serve(t, h.Routes(), "/daily", "/daily")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":1,"items":["20240102"]}`, w.Body.String())
}
