package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maerty1/asterisk-stats-sub000/internal/models"
)

// FromQueueLog folds raw queue_log rows into one Call per callid.
// Rows are expected in chronological order; within a call the outcome
// defaults to abandoned until a terminal event overrides it. Event codes
// the fold does not interpret stay on the call's timeline untouched.
func FromQueueLog(rows []models.QueueLogRow) []*models.Call {
	byID := make(map[string]*models.Call)
	var order []string

	for _, row := range rows {
		if row.CallID == "" {
			continue
		}

		call, ok := byID[row.CallID]
		if !ok {
			call = &models.Call{
				CallID:    row.CallID,
				Direction: models.DirectionQueue,
				QueueName: row.QueueName,
				StartTime: row.Time,
				Outcome:   models.OutcomeAbandoned,
			}
			byID[row.CallID] = call
			order = append(order, row.CallID)
		}

		call.Events = append(call.Events, row)

		switch row.Event {
		case models.EventEnterQueue:
			call.SubscriberNumber = row.Data2
			call.StartTime = row.Time
			if row.QueueName != "" {
				call.QueueName = row.QueueName
			}

		case models.EventConnect:
			t := row.Time
			call.ConnectTime = &t
			if call.Agent == "" || call.Agent == "NONE" {
				call.Agent = row.Agent
			}
			if wait, ok := parseSeconds(row.Data1); ok {
				call.WaitSeconds = &wait
			}

		case models.EventCompleteCaller, models.EventCompleteAgent:
			t := row.Time
			call.EndTime = &t
			call.Outcome = models.OutcomeAnswered
			call.TerminalEvent = row.Event
			if dur, ok := parseSeconds(row.Data2); ok {
				call.DurationSeconds = &dur
			}
			if row.RecordingRef != nil {
				call.RecordingRef = row.RecordingRef
			}

		case models.EventAbandon:
			t := row.Time
			call.EndTime = &t
			call.Outcome = models.OutcomeAbandoned
			call.TerminalEvent = row.Event
			if wait, ok := parseSeconds(row.Data3); ok {
				call.WaitSeconds = &wait
			}
		}
	}

	calls := make([]*models.Call, 0, len(order))
	for _, id := range order {
		calls = append(calls, byID[id])
	}
	return calls
}

// FromCDR maps flat call-detail records to Calls. There is no event
// timeline for these sources: a single disposition code decides the
// outcome and the direction is asserted by the caller, not inferred.
func FromCDR(rows []models.CDRRow, direction models.Direction) []*models.Call {
	calls := make([]*models.Call, 0, len(rows))

	for _, row := range rows {
		subscriber := row.Src
		if direction == models.DirectionOutbound || direction == models.DirectionOutboundQueue {
			subscriber = row.Dst
		}

		dur := row.BillSec
		end := row.CallDate.Add(time.Duration(row.Duration) * time.Second)

		call := &models.Call{
			CallID:           row.UniqueID,
			Direction:        direction,
			SubscriberNumber: subscriber,
			StartTime:        row.CallDate,
			EndTime:          &end,
			DurationSeconds:  &dur,
			Outcome:          OutcomeFromDisposition(row.Disposition),
			RecordingRef:     row.RecordingFile,
		}
		calls = append(calls, call)
	}
	return calls
}

// OutcomeFromDisposition normalizes a CDR disposition code.
func OutcomeFromDisposition(disposition string) models.Outcome {
	switch strings.ToUpper(strings.TrimSpace(disposition)) {
	case "ANSWERED":
		return models.OutcomeAnswered
	case "NO ANSWER":
		return models.OutcomeNoAnswer
	case "BUSY":
		return models.OutcomeBusy
	case "FAILED":
		return models.OutcomeFailed
	default:
		return models.OutcomeUnknown
	}
}

// SortByStart orders calls chronologically in place. Downstream folds do
// not depend on order, but deterministic output makes reports stable.
func SortByStart(calls []*models.Call) {
	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].StartTime.Before(calls[j].StartTime)
	})
}

func parseSeconds(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
