package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maerty1/asterisk-stats-sub000/internal/models"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logrus.WithError(err).Error("failed to encode JSON response")
		}
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	entry := logrus.WithField("status", statusCode)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn(message)

	response := &models.APIResponse{
		Success: false,
		Message: message,
		Error: &models.APIError{
			Code:    fmt.Sprintf("E%d", statusCode),
			Message: message,
		},
	}

	if err != nil {
		response.Error.Details = map[string]string{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, response)
}

// timeRange reads start_date/end_date query parameters, defaulting to
// the last 24 hours. Unparseable values and an inverted range are
// rejected rather than silently replaced by the default.
func timeRange(r *http.Request) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.Add(-24 * time.Hour)

	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q: %w", s, err)
		}
		from = t
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q: %w", s, err)
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date %s is after end_date %s",
			from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return from, to, nil
}
