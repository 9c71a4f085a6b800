package handler

import (
	"fmt"
	"net/http"

	"github.com/meetlog/meetlog/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "meetlog_interactions_recorded_total %d\n", snap.InteractionsRecorded)
	writeMetric(w, "meetlog_extractions_failed_total %d\n", snap.ExtractionsFailed)
	writeMetric(w, "meetlog_extraction_duration_seconds_count %d\n", snap.ExtractionDurationCount)
	writeMetric(w, "meetlog_extraction_duration_seconds_sum %.6f\n", float64(snap.ExtractionDurationTotalNs)/1e9)

	writeMetric(w, "meetlog_users_upserted_total{outcome=\"created\"} %d\n", snap.UsersCreated)
	writeMetric(w, "meetlog_users_upserted_total{outcome=\"updated\"} %d\n", snap.UsersUpdated)
	writeMetric(w, "meetlog_users_upserted_total{outcome=\"unchanged\"} %d\n", snap.UsersUnchanged)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
