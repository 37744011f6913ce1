package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"twstock/internal/config"
	apierrors "twstock/internal/errors"
	"twstock/internal/services"
)

// AnalysisHandler serves range, compare and summary queries.
type AnalysisHandler struct {
	service      AnalysisQuerier
	decoder      Decoder
	query        config.QueryConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service AnalysisQuerier, decoder Decoder, query config.QueryConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalysisHandler {
	return &AnalysisHandler{
		service:      service,
		decoder:      decoder,
		query:        query,
		logger:       logger.With(slog.String("component", "analysis_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analysis routes, mounted at /analysis.
func (h *AnalysisHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/range", h.Range)
	r.Get("/compare", h.Compare)
	r.Get("/summary", h.Summary)
	return r
}

// Range handles GET /analysis/range?code=&start=&end=
func (h *AnalysisHandler) Range(w http.ResponseWriter, r *http.Request) {
	var p RangeParams
	if err := h.decoder.Decode(r, &p); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	// Both were validated as date keys.
	start, _ := services.ParseDateKey(p.Start)
	end, _ := services.ParseDateKey(p.End)

	rows, err := h.service.Range(r.Context(), p.Code, start, end)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.WithResource(resourceStock, p.Code, err))
		return
	}
	render.JSON(w, r, rows)
}

// Compare handles GET /analysis/compare?codes=&days=
func (h *AnalysisHandler) Compare(w http.ResponseWriter, r *http.Request) {
	p := CompareParams{Days: h.query.DefaultStatsDays}
	if err := h.decoder.Decode(r, &p); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := checkMax("days", p.Days, h.query.MaxLimit); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	ids, err := services.ParseIDs(p.Codes, h.query.MaxBatchIDs)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Compare(r.Context(), ids, p.Days)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.logDropped(r, "compare", len(ids), res.Dropped)
	render.JSON(w, r, res)
}

// Summary handles GET /analysis/summary?codes=
func (h *AnalysisHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var p SummaryParams
	if err := h.decoder.Decode(r, &p); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	ids, err := services.ParseIDs(p.Codes, h.query.MaxBatchIDs)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	res, err := h.service.Summary(r.Context(), ids)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.logDropped(r, "summary", len(ids), res.Dropped)
	render.JSON(w, r, res)
}

// logDropped records a partial batch once per request; the per-item
// reasons are logged by the service.
func (h *AnalysisHandler) logDropped(r *http.Request, operation string, requested int, dropped []string) {
	if len(dropped) == 0 {
		return
	}
	h.logger.InfoContext(r.Context(), "partial batch result",
		slog.String("operation", operation),
		slog.Int("requested", requested),
		slog.Any("dropped", dropped),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}
