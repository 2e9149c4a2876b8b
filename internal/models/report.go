package models

import "time"

// HourSlot is one bucket of the 24-slot hourly distribution.
type HourSlot struct {
	Total     int `json:"total"`
	Answered  int `json:"answered"`
	Abandoned int `json:"abandoned"`
	Unhandled int `json:"unhandled"`
}

// QueueStats is the aggregate over one classified call set.
type QueueStats struct {
	QueueName   string    `json:"queue_name,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Direction   Direction `json:"direction"`

	TotalCalls      int `json:"total_calls"`
	AnsweredCalls   int `json:"answered_calls"`
	AbandonedCalls  int `json:"abandoned_calls"`
	SLACount        int `json:"sla_count"`
	ClientCallbacks int `json:"client_callbacks"`
	AgentCallbacks  int `json:"agent_callbacks"`
	Unhandled       int `json:"unhandled"`

	AnswerRate  int     `json:"answer_rate"`
	SLARate     int     `json:"sla_rate"`
	AbandonRate float64 `json:"abandon_rate"`

	AvgWaitSeconds         int `json:"avg_wait_seconds"`
	AvgWaitSecondsAnswered int `json:"avg_wait_seconds_answered"` // ASA
	AvgDurationSeconds     int `json:"avg_duration_seconds"`
	AvgQueueSeconds        int `json:"avg_queue_seconds"`

	Hourly        [24]HourSlot `json:"hourly"`
	PeakHour      int          `json:"peak_hour"`
	PeakHourCount int          `json:"peak_hour_count"`
}

// QueueRanking is QueueStats plus a composite score and a 1-based rank.
type QueueRanking struct {
	*QueueStats
	CompositeScore float64 `json:"composite_score"`
	Rank           int     `json:"rank"`
}

// ReportScope bounds one engine invocation: which queue (empty for the
// flat CDR directions) and which time range.
type ReportScope struct {
	QueueName string    `json:"queue_name,omitempty"`
	Direction Direction `json:"direction"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
}

// QueueInfo is one entry of the available-queue list.
type QueueInfo struct {
	Name        string `json:"name" db:"name"`
	DisplayName string `json:"display_name" db:"display_name"`
}

// MissedCallReport is what the missed-call endpoint returns for one call.
type MissedCallReport struct {
	Call     *Call          `json:"call"`
	Callback *CallbackMatch `json:"callback,omitempty"`
}
