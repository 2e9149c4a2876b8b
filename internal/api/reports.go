package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/maerty1/asterisk-stats-sub000/internal/models"
	"github.com/maerty1/asterisk-stats-sub000/internal/report"
	"github.com/maerty1/asterisk-stats-sub000/internal/workers"
)

// ReportHandler exposes the reconstruction/correlation engine to the
// dashboard: per-queue stats, missed calls with callback status and the
// cross-queue ranking.
type ReportHandler struct {
	service   *report.Service
	directory *workers.QueueDirectory
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *report.Service, directory *workers.QueueDirectory) *ReportHandler {
	return &ReportHandler{
		service:   service,
		directory: directory,
	}
}

// Queues handles GET /api/v1/queues
func (h *ReportHandler) Queues(w http.ResponseWriter, r *http.Request) {
	queues, err := h.directory.Queues(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "Failed to list queues", err)
		return
	}
	respondJSON(w, http.StatusOK, queues)
}

// QueueStats handles GET /api/v1/queues/{queue}/stats
func (h *ReportHandler) QueueStats(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scopeFromRequest(w, r)
	if !ok {
		return
	}

	stats, err := h.service.QueueReport(r.Context(), scope)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, report.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		respondError(w, status, "Failed to build queue report", err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// MissedCalls handles GET /api/v1/queues/{queue}/missed
func (h *ReportHandler) MissedCalls(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scopeFromRequest(w, r)
	if !ok {
		return
	}

	missed, err := h.service.MissedCalls(r.Context(), scope)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, report.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		respondError(w, status, "Failed to list missed calls", err)
		return
	}

	respondJSON(w, http.StatusOK, missed)
}

// Ranking handles GET /api/v1/ranking
func (h *ReportHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	from, to, err := timeRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid time range", err)
		return
	}
	key := report.SortKey(r.URL.Query().Get("sort"))
	department := r.URL.Query().Get("department")

	queues, err := h.directory.Queues(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "Failed to list queues", err)
		return
	}

	names := make([]string, 0, len(queues))
	for _, q := range queues {
		names = append(names, q.Name)
	}

	rankings, err := h.service.RankQueues(r.Context(), names, from, to, key, department)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, report.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		respondError(w, status, "Failed to rank queues", err)
		return
	}

	respondJSON(w, http.StatusOK, rankings)
}

func (h *ReportHandler) scopeFromRequest(w http.ResponseWriter, r *http.Request) (models.ReportScope, bool) {
	queue := mux.Vars(r)["queue"]
	if queue == "" {
		respondError(w, http.StatusBadRequest, "Queue name is required", nil)
		return models.ReportScope{}, false
	}

	direction := models.DirectionQueue
	if d := r.URL.Query().Get("direction"); d != "" {
		switch models.Direction(d) {
		case models.DirectionQueue, models.DirectionInbound, models.DirectionOutbound, models.DirectionOutboundQueue:
			direction = models.Direction(d)
		default:
			respondError(w, http.StatusBadRequest, "Unknown direction", nil)
			return models.ReportScope{}, false
		}
	}

	from, to, err := timeRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid time range", err)
		return models.ReportScope{}, false
	}
	return models.ReportScope{
		QueueName: queue,
		Direction: direction,
		From:      from,
		To:        to,
	}, true
}
