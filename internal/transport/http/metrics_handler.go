package http

import (
	"net/http"

	apierrors "twstock/internal/errors"
)

// MetricsHandler exposes the Prometheus scrape endpoint.
type MetricsHandler struct {
	prometheus http.Handler
}

// NewMetricsHandler wraps the exporter handler. A nil handler means the
// Prometheus exporter is disabled.
func NewMetricsHandler(prometheus http.Handler) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		apierrors.ProblemFromStatus(http.StatusNotFound, "metrics export is disabled", "").Write(w)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}
