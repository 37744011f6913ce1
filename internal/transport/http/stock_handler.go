package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"twstock/internal/config"
	apierrors "twstock/internal/errors"
)

// StockHandler serves per-instrument history queries.
type StockHandler struct {
	service      StockQuerier
	catalog      CatalogLister
	decoder      Decoder
	query        config.QueryConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewStockHandler creates a new stock handler
func NewStockHandler(service StockQuerier, catalog CatalogLister, decoder Decoder, query config.QueryConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *StockHandler {
	return &StockHandler{
		service:      service,
		catalog:      catalog,
		decoder:      decoder,
		query:        query,
		logger:       logger.With(slog.String("component", "stock_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the stock routes, mounted at /stock.
func (h *StockHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.List)
	r.Route("/{code}", func(r chi.Router) {
		r.Get("/", h.History)
		r.Get("/latest", h.Latest)
		r.Get("/stats", h.Stats)
	})
	return r
}

// List handles GET /stock
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	listing, err := h.catalog.Stocks(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, listing)
}

// History handles GET /stock/{code}?limit=
func (h *StockHandler) History(w http.ResponseWriter, r *http.Request) {
	p := HistoryParams{Limit: h.query.DefaultLimit}
	if err := h.decode(r, &p); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := checkMax("limit", p.Limit, h.query.MaxLimit); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.History(r.Context(), p.Code, p.Limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.WithResource(resourceStock, p.Code, err))
		return
	}
	render.JSON(w, r, rows)
}

// Latest handles GET /stock/{code}/latest
func (h *StockHandler) Latest(w http.ResponseWriter, r *http.Request) {
	var p CodeParams
	if err := h.decode(r, &p); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	row, err := h.service.Latest(r.Context(), p.Code)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.WithResource(resourceStock, p.Code, err))
		return
	}
	render.JSON(w, r, row)
}

// Stats handles GET /stock/{code}/stats?days=
func (h *StockHandler) Stats(w http.ResponseWriter, r *http.Request) {
	p := StatsParams{Days: h.query.DefaultStatsDays}
	if err := h.decode(r, &p); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := checkMax("days", p.Days, h.query.MaxLimit); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	stats, err := h.service.Stats(r.Context(), p.Code, p.Days)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.WithResource(resourceStock, p.Code, err))
		return
	}
	render.JSON(w, r, stats)
}

func (h *StockHandler) decode(r *http.Request, dst any) error {
	h.logger.DebugContext(r.Context(), "stock query",
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	return h.decoder.Decode(r, dst)
}
