package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"twstock/internal/config"
	apierrors "twstock/internal/errors"
	"twstock/internal/table"
)

// DailyHandler serves market snapshot queries.
type DailyHandler struct {
	service      DailyQuerier
	catalog      CatalogLister
	decoder      Decoder
	query        config.QueryConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDailyHandler creates a new daily handler
func NewDailyHandler(service DailyQuerier, catalog CatalogLister, decoder Decoder, query config.QueryConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DailyHandler {
	return &DailyHandler{
		service:      service,
		catalog:      catalog,
		decoder:      decoder,
		query:        query,
		logger:       logger.With(slog.String("component", "daily_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the daily routes, mounted at /daily.
func (h *DailyHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.List)
	r.Get("/latest", h.Latest)
	r.Route("/{date}", func(r chi.Router) {
		r.Get("/", h.Snapshot)
		r.Get("/gainers", h.Gainers)
		r.Get("/losers", h.Losers)
	})
	return r
}

// List handles GET /daily
func (h *DailyHandler) List(w http.ResponseWriter, r *http.Request) {
	listing, err := h.catalog.Dates(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, listing)
}

// Latest handles GET /daily/latest, the most recently written snapshot.
func (h *DailyHandler) Latest(w http.ResponseWriter, r *http.Request) {
	latest, ok, err := h.catalog.Latest(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.WithResource(resourceDate, "latest", table.NotFoundError("latest", nil)))
		return
	}

	h.logger.DebugContext(r.Context(), "serving latest snapshot",
		slog.String("date", latest.ID),
		slog.Time("modified", latest.ModTime))

	rows, err := h.service.Snapshot(r.Context(), latest.ID)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.WithResource(resourceDate, latest.ID, err))
		return
	}
	render.JSON(w, r, map[string]any{
		"date": latest.ID,
		"data": rows,
	})
}

// Snapshot handles GET /daily/{date}
func (h *DailyHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	var p DateParams
	if err := h.decoder.Decode(r, &p); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.Snapshot(r.Context(), p.Date)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.WithResource(resourceDate, p.Date, err))
		return
	}
	render.JSON(w, r, rows)
}

// Gainers handles GET /daily/{date}/gainers?limit=
func (h *DailyHandler) Gainers(w http.ResponseWriter, r *http.Request) {
	h.rank(w, r, h.service.Gainers)
}

// Losers handles GET /daily/{date}/losers?limit=
func (h *DailyHandler) Losers(w http.ResponseWriter, r *http.Request) {
	h.rank(w, r, h.service.Losers)
}

func (h *DailyHandler) rank(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, int) ([]map[string]any, error)) {
	p := RankParams{Limit: h.query.DefaultRankLimit}
	if err := h.decoder.Decode(r, &p); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := checkMax("limit", p.Limit, h.query.MaxLimit); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := fn(r.Context(), p.Date, p.Limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.WithResource(resourceDate, p.Date, err))
		return
	}
	render.JSON(w, r, rows)
}
