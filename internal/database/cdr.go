package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/maerty1/asterisk-stats-sub000/internal/models"
)

// CDRRecords retrieves flat call-detail rows for a direction and time
// range. The direction maps to a context filter; for queue scopes the
// dialed number is additionally pinned to the queue so the fallback
// strategy sees roughly the same population as the queue log.
func (db *DB) CDRRecords(ctx context.Context, direction models.Direction, queue string, from, to time.Time) ([]models.CDRRow, error) {
	conditions := []string{"calldate >= $1", "calldate <= $2"}
	args := []interface{}{from, to}
	argPos := 3

	switch direction {
	case models.DirectionInbound:
		conditions = append(conditions, "dcontext NOT IN ('from-internal', 'internal', 'outbound')")
	case models.DirectionOutbound, models.DirectionOutboundQueue:
		conditions = append(conditions, "dcontext IN ('from-internal', 'outbound')")
	}

	if queue != "" {
		conditions = append(conditions, fmt.Sprintf("dst = $%d", argPos))
		args = append(args, queue)
		argPos++
	}

	query := fmt.Sprintf(`
		SELECT uniqueid, calldate, src, dst, dcontext, duration, billsec, disposition, recordingfile
		FROM cdr
		WHERE %s
		ORDER BY calldate
	`, strings.Join(conditions, " AND "))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cdr records: %w", err)
	}
	defer rows.Close()

	var records []models.CDRRow
	for rows.Next() {
		var row models.CDRRow
		var recording sql.NullString
		if err := rows.Scan(
			&row.UniqueID, &row.CallDate, &row.Src, &row.Dst, &row.DContext,
			&row.Duration, &row.BillSec, &row.Disposition, &recording,
		); err != nil {
			return nil, fmt.Errorf("scan cdr record: %w", err)
		}
		if recording.Valid && recording.String != "" {
			row.RecordingFile = &recording.String
		}
		records = append(records, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return records, nil
}
