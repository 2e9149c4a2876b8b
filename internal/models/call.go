package models

import "time"

// Direction identifies which call-log source a call came from and which
// classification rules apply to it.
type Direction string

const (
	DirectionQueue         Direction = "queue"
	DirectionInbound       Direction = "inbound"
	DirectionOutbound      Direction = "outbound"
	DirectionOutboundQueue Direction = "outbound_queue"
)

// Outcome is the normalized terminal result of a call.
type Outcome string

const (
	OutcomeAnswered  Outcome = "answered"
	OutcomeAbandoned Outcome = "abandoned"
	OutcomeNoAnswer  Outcome = "no_answer"
	OutcomeBusy      Outcome = "busy"
	OutcomeFailed    Outcome = "failed"
	OutcomeUnknown   Outcome = "unknown"
)

// CallbackStatus records what happened to a missed call afterwards.
// It is assigned only to calls classified as missed; the values are
// consumed verbatim by dashboard collaborators.
type CallbackStatus string

const (
	CallbackUnset     CallbackStatus = ""
	CallbackByCaller  CallbackStatus = "callerCalledBack"
	CallbackByAgent   CallbackStatus = "weCalledBack"
	CallbackUnhandled CallbackStatus = "unhandled"
)

// Queue log event codes the reconstructor interprets.
const (
	EventEnterQueue     = "ENTERQUEUE"
	EventConnect        = "CONNECT"
	EventCompleteCaller = "COMPLETECALLER"
	EventCompleteAgent  = "COMPLETEAGENT"
	EventAbandon        = "ABANDON"
)

// Call is one conversation attempt reconstructed from the call store.
type Call struct {
	CallID           string         `json:"call_id"`
	Direction        Direction      `json:"direction"`
	QueueName        string         `json:"queue_name,omitempty"`
	SubscriberNumber string         `json:"subscriber_number"`
	Agent            string         `json:"agent,omitempty"`
	StartTime        time.Time      `json:"start_time"`
	ConnectTime      *time.Time     `json:"connect_time,omitempty"`
	EndTime          *time.Time     `json:"end_time,omitempty"`
	DurationSeconds  *int           `json:"duration_seconds,omitempty"`
	WaitSeconds      *int           `json:"wait_seconds,omitempty"`
	Outcome          Outcome        `json:"outcome"`
	TerminalEvent    string         `json:"terminal_event,omitempty"`
	RecordingRef     *string        `json:"recording_ref,omitempty"`
	CallbackStatus   CallbackStatus `json:"callback_status,omitempty"`

	// Events keeps the raw timeline, including codes the reconstructor
	// does not interpret.
	Events []QueueLogRow `json:"-"`
}

// MatchType identifies which search tier produced a callback match.
type MatchType string

const (
	MatchSameQueue      MatchType = "same-queue"
	MatchGlobalInbound  MatchType = "global-inbound"
	MatchGlobalOutbound MatchType = "global-outbound"
)

// CallbackMatch links a missed call to the later call that reached the
// same subscriber.
type CallbackMatch struct {
	SourceCallID string    `json:"source_call_id"`
	MatchCallID  string    `json:"match_call_id"`
	MatchType    MatchType `json:"match_type"`
	MatchTime    time.Time `json:"match_time"`
	RecordingRef *string   `json:"recording_ref,omitempty"`
}

// QueueLogRow is one raw row of the queue event log.
type QueueLogRow struct {
	Time         time.Time `json:"time" db:"time"`
	CallID       string    `json:"callid" db:"callid"`
	QueueName    string    `json:"queuename" db:"queuename"`
	Agent        string    `json:"agent" db:"agent"`
	Event        string    `json:"event" db:"event"`
	Data1        string    `json:"data1" db:"data1"`
	Data2        string    `json:"data2" db:"data2"`
	Data3        string    `json:"data3" db:"data3"`
	Data4        string    `json:"data4" db:"data4"`
	Data5        string    `json:"data5" db:"data5"`
	RecordingRef *string   `json:"recording_ref,omitempty" db:"recording_ref"`
}

// CDRRow is one row of the flat call-detail-record table. Inbound and
// outbound calls have no per-event log, just this terminal record.
type CDRRow struct {
	UniqueID      string    `json:"uniqueid" db:"uniqueid"`
	CallDate      time.Time `json:"calldate" db:"calldate"`
	Src           string    `json:"src" db:"src"`
	Dst           string    `json:"dst" db:"dst"`
	DContext      string    `json:"dcontext" db:"dcontext"`
	Duration      int       `json:"duration" db:"duration"`
	BillSec       int       `json:"billsec" db:"billsec"`
	Disposition   string    `json:"disposition" db:"disposition"`
	RecordingFile *string   `json:"recordingfile,omitempty" db:"recordingfile"`
}

// CallbackWindow is the forward-looking search interval for one missed
// call, carried into the batched candidate queries.
type CallbackWindow struct {
	Number string
	From   time.Time
	To     time.Time
}

// CallbackCandidate is an answered call returned by one of the batched
// candidate queries, resolved against the windows in memory.
type CallbackCandidate struct {
	CallID       string
	Number       string
	Time         time.Time
	TalkSeconds  int
	QueueName    string
	RecordingRef *string
}
