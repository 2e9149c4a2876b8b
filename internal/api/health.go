package api

import (
	"net/http"
	"time"

	"github.com/maerty1/asterisk-stats-sub000/internal/database"
	"github.com/maerty1/asterisk-stats-sub000/internal/models"
	"github.com/maerty1/asterisk-stats-sub000/internal/workers"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db        *database.DB
	directory *workers.QueueDirectory
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.DB, directory *workers.QueueDirectory, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		directory: directory,
		version:   version,
	}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	response := &models.HealthResponse{
		Status:    "ok",
		Service:   "queue-stats",
		Version:   h.version,
		Timestamp: time.Now(),
		Database:  "ok",
		Cache:     "ok",
	}

	if err := h.db.Health(ctx); err != nil {
		response.Status = "degraded"
		response.Database = "error: " + err.Error()
	}

	statusCode := http.StatusOK
	if response.Status != "ok" {
		statusCode = http.StatusServiceUnavailable
	}

	respondJSON(w, statusCode, response)
}

// Stats handles GET /health/stats
func (h *HealthHandler) Stats(w http.ResponseWriter, r *http.Request) {
	dbStats := h.db.Stats()
	cacheStats := h.directory.Stats()

	stats := map[string]interface{}{
		"database": map[string]interface{}{
			"max_open_connections": dbStats.MaxOpenConnections,
			"open_connections":     dbStats.OpenConnections,
			"in_use":               dbStats.InUse,
			"idle":                 dbStats.Idle,
			"wait_count":           dbStats.WaitCount,
			"wait_duration":        dbStats.WaitDuration.String(),
		},
		"cache": cacheStats,
	}

	respondJSON(w, http.StatusOK, stats)
}
