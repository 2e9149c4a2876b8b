package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maerty1/asterisk-stats-sub000/internal/models"
	"github.com/maerty1/asterisk-stats-sub000/internal/report"
)

// QueueEvents retrieves raw queue_log rows for one queue and time range,
// ordered chronologically. Recording references come from the CDR row
// sharing the call id, when one exists.
func (db *DB) QueueEvents(ctx context.Context, queue string, from, to time.Time) ([]models.QueueLogRow, error) {
	query := `
		SELECT
			q.time, q.callid, q.queuename, q.agent, q.event,
			q.data1, q.data2, q.data3, q.data4, q.data5,
			c.recordingfile
		FROM queue_log q
		LEFT JOIN cdr c ON c.uniqueid = q.callid
		WHERE q.queuename = $1
		  AND q.time >= $2
		  AND q.time <= $3
		ORDER BY q.time, q.callid
	`

	rows, err := db.QueryContext(ctx, query, queue, from, to)
	if err != nil {
		return nil, fmt.Errorf("query queue events: %w", err)
	}
	defer rows.Close()

	var events []models.QueueLogRow
	for rows.Next() {
		var row models.QueueLogRow
		var recording sql.NullString
		if err := rows.Scan(
			&row.Time, &row.CallID, &row.QueueName, &row.Agent, &row.Event,
			&row.Data1, &row.Data2, &row.Data3, &row.Data4, &row.Data5,
			&recording,
		); err != nil {
			return nil, fmt.Errorf("scan queue event: %w", err)
		}
		if recording.Valid && recording.String != "" {
			row.RecordingRef = &recording.String
		}
		events = append(events, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return events, nil
}

// SameQueueCandidates returns answered calls in the given queue whose
// queue-entry time falls into any of the search windows. One query
// covers the whole cohort: the windows become a disjunctive condition,
// with a trailing-digits LIKE pre-filter on the entry subscriber. The
// authoritative suffix match happens in the correlator.
func (db *DB) SameQueueCandidates(ctx context.Context, queue string, windows []models.CallbackWindow) ([]models.CallbackCandidate, error) {
	if len(windows) == 0 {
		return nil, nil
	}

	args := []interface{}{queue}
	disjunction, args, _ := windowConditions("e.time", "e.data2", windows, args, 2)

	query := fmt.Sprintf(`
		SELECT e.callid, e.data2, e.time, c.data2, e.queuename, r.recordingfile
		FROM queue_log e
		JOIN queue_log c
		  ON c.callid = e.callid
		 AND c.event IN ('COMPLETECALLER', 'COMPLETEAGENT')
		LEFT JOIN cdr r ON r.uniqueid = e.callid
		WHERE e.event = 'ENTERQUEUE'
		  AND e.queuename = $1
		  AND (%s)
		ORDER BY e.time
	`, disjunction)

	return db.scanCandidates(ctx, query, args, false)
}

// InboundCandidates returns globally answered inbound calls within any
// of the windows. Internal and outbound contexts are excluded: only a
// customer dialing in counts as the caller coming back.
func (db *DB) InboundCandidates(ctx context.Context, windows []models.CallbackWindow) ([]models.CallbackCandidate, error) {
	if len(windows) == 0 {
		return nil, nil
	}

	var args []interface{}
	disjunction, args, _ := windowConditions("calldate", "src", windows, args, 1)

	query := fmt.Sprintf(`
		SELECT uniqueid, src, calldate, billsec, dcontext, recordingfile
		FROM cdr
		WHERE disposition = 'ANSWERED'
		  AND dcontext NOT IN ('from-internal', 'internal', 'outbound')
		  AND (%s)
		ORDER BY calldate
	`, disjunction)

	return db.scanCandidates(ctx, query, args, true)
}

// OutboundCandidates returns globally answered outbound calls within any
// of the windows, matched against the dialed number.
func (db *DB) OutboundCandidates(ctx context.Context, windows []models.CallbackWindow) ([]models.CallbackCandidate, error) {
	if len(windows) == 0 {
		return nil, nil
	}

	var args []interface{}
	disjunction, args, _ := windowConditions("calldate", "dst", windows, args, 1)

	query := fmt.Sprintf(`
		SELECT uniqueid, dst, calldate, billsec, dcontext, recordingfile
		FROM cdr
		WHERE disposition = 'ANSWERED'
		  AND dcontext IN ('from-internal', 'outbound')
		  AND (%s)
		ORDER BY calldate
	`, disjunction)

	return db.scanCandidates(ctx, query, args, true)
}

// windowConditions builds the disjunctive WHERE fragment covering every
// search window: (time range AND number pre-filter) OR (...). This keeps
// the correlator at a constant number of queries per cohort regardless
// of how many missed calls it carries.
func windowConditions(timeCol, numberCol string, windows []models.CallbackWindow, args []interface{}, argPos int) (string, []interface{}, int) {
	conditions := make([]string, 0, len(windows))
	for _, w := range windows {
		cond := fmt.Sprintf("(%s >= $%d AND %s <= $%d", timeCol, argPos, timeCol, argPos+1)
		args = append(args, w.From, w.To)
		argPos += 2

		if suffix := report.LastDigits(w.Number, 9); suffix != "" {
			cond += fmt.Sprintf(" AND %s LIKE $%d", numberCol, argPos)
			args = append(args, "%"+suffix)
			argPos++
		}
		cond += ")"
		conditions = append(conditions, cond)
	}
	return strings.Join(conditions, " OR "), args, argPos
}

// scanCandidates runs a candidate query and normalizes the rows. When
// talkIsInt is false the talk-seconds column is a queue_log data field
// stored as text and parsed leniently; unparseable values become zero
// talk time and are filtered out by the correlator's minimum.
func (db *DB) scanCandidates(ctx context.Context, query string, args []interface{}, talkIsInt bool) ([]models.CallbackCandidate, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query callback candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.CallbackCandidate
	for rows.Next() {
		var cand models.CallbackCandidate
		var recording sql.NullString

		if talkIsInt {
			if err := rows.Scan(&cand.CallID, &cand.Number, &cand.Time, &cand.TalkSeconds, &cand.QueueName, &recording); err != nil {
				return nil, fmt.Errorf("scan callback candidate: %w", err)
			}
		} else {
			var talk string
			if err := rows.Scan(&cand.CallID, &cand.Number, &cand.Time, &talk, &cand.QueueName, &recording); err != nil {
				return nil, fmt.Errorf("scan callback candidate: %w", err)
			}
			if n, err := strconv.Atoi(strings.TrimSpace(talk)); err == nil && n >= 0 {
				cand.TalkSeconds = n
			}
		}

		if recording.Valid && recording.String != "" {
			cand.RecordingRef = &recording.String
		}
		candidates = append(candidates, cand)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return candidates, nil
}
