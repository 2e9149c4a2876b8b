package report

import "github.com/maerty1/asterisk-stats-sub000/internal/models"

// shortCallSeconds is the talk-time threshold below which a nominally
// answered queue or inbound call still counts as missed. Connects this
// short are hangups before a real conversation started.
const shortCallSeconds = 5

// IsMissed reports whether a call was not successfully handled. The rule
// is direction-specific and the asymmetries are intentional: outbound
// dial attempts have no short-call threshold, while queue SLA treats a
// too-short connect as a miss.
func IsMissed(c *models.Call) bool {
	switch c.Direction {
	case models.DirectionQueue:
		return queueMissed(c)
	case models.DirectionInbound:
		return inboundMissed(c)
	case models.DirectionOutbound, models.DirectionOutboundQueue:
		return outboundMissed(c)
	default:
		return false
	}
}

func queueMissed(c *models.Call) bool {
	if c.Outcome == models.OutcomeAbandoned {
		return true
	}
	if c.DurationSeconds != nil && *c.DurationSeconds <= shortCallSeconds {
		return true
	}
	// Ended without ever connecting and without a completion event:
	// the caller never reached an agent. Flat CDR rows carry no
	// connect time or terminal event, so an answered outcome is
	// trusted there.
	if c.Outcome != models.OutcomeAnswered && c.ConnectTime == nil && c.EndTime != nil && !completedEvent(c.TerminalEvent) {
		return true
	}
	return false
}

func inboundMissed(c *models.Call) bool {
	// Rows that came through a queue carry the queue event code; the
	// completion events are the only successful terminals there.
	if c.TerminalEvent != "" {
		if !completedEvent(c.TerminalEvent) {
			return true
		}
		return c.DurationSeconds != nil && *c.DurationSeconds <= shortCallSeconds
	}

	// Plain CDR row.
	switch c.Outcome {
	case models.OutcomeNoAnswer, models.OutcomeBusy, models.OutcomeFailed:
		return true
	}
	return c.DurationSeconds != nil && *c.DurationSeconds <= shortCallSeconds
}

func outboundMissed(c *models.Call) bool {
	switch c.Outcome {
	case models.OutcomeNoAnswer, models.OutcomeBusy, models.OutcomeFailed:
		return true
	}
	return false
}

func completedEvent(event string) bool {
	return event == models.EventCompleteCaller || event == models.EventCompleteAgent
}
