package report_test

import (
	"testing"
	"time"

	"github.com/maerty1/asterisk-stats-sub000/internal/models"
	"github.com/maerty1/asterisk-stats-sub000/internal/report"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func qrow(at time.Time, callID, queue, agent, event string, data ...string) models.QueueLogRow {
	row := models.QueueLogRow{
		Time:      at,
		CallID:    callID,
		QueueName: queue,
		Agent:     agent,
		Event:     event,
	}
	fields := []*string{&row.Data1, &row.Data2, &row.Data3, &row.Data4, &row.Data5}
	for i, d := range data {
		if i >= len(fields) {
			break
		}
		*fields[i] = d
	}
	return row
}

func TestFromQueueLogAnsweredCall(t *testing.T) {
	rows := []models.QueueLogRow{
		qrow(base, "c1", "1001", "NONE", "ENTERQUEUE", "", "+79123456789"),
		qrow(base.Add(15*time.Second), "c1", "1001", "agent/101", "CONNECT", "15"),
		qrow(base.Add(55*time.Second), "c1", "1001", "agent/101", "COMPLETEAGENT", "15", "40"),
	}

	calls := report.FromQueueLog(rows)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}

	c := calls[0]
	if c.SubscriberNumber != "+79123456789" {
		t.Errorf("subscriber = %q, want +79123456789", c.SubscriberNumber)
	}
	if !c.StartTime.Equal(base) {
		t.Errorf("start time = %v, want %v", c.StartTime, base)
	}
	if c.ConnectTime == nil || !c.ConnectTime.Equal(base.Add(15*time.Second)) {
		t.Errorf("connect time = %v, want %v", c.ConnectTime, base.Add(15*time.Second))
	}
	if c.WaitSeconds == nil || *c.WaitSeconds != 15 {
		t.Errorf("wait = %v, want 15", c.WaitSeconds)
	}
	if c.DurationSeconds == nil || *c.DurationSeconds != 40 {
		t.Errorf("duration = %v, want 40", c.DurationSeconds)
	}
	if c.Outcome != models.OutcomeAnswered {
		t.Errorf("outcome = %q, want answered", c.Outcome)
	}
	if c.TerminalEvent != "COMPLETEAGENT" {
		t.Errorf("terminal event = %q, want COMPLETEAGENT", c.TerminalEvent)
	}
	if c.Agent != "agent/101" {
		t.Errorf("agent = %q, want agent/101", c.Agent)
	}
}

func TestFromQueueLogAbandonedCall(t *testing.T) {
	rows := []models.QueueLogRow{
		qrow(base, "c2", "1001", "NONE", "ENTERQUEUE", "", "84951112233"),
		qrow(base.Add(12*time.Second), "c2", "1001", "NONE", "ABANDON", "2", "1", "12"),
	}

	calls := report.FromQueueLog(rows)
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}

	c := calls[0]
	if c.Outcome != models.OutcomeAbandoned {
		t.Errorf("outcome = %q, want abandoned", c.Outcome)
	}
	if c.WaitSeconds == nil || *c.WaitSeconds != 12 {
		t.Errorf("wait = %v, want 12", c.WaitSeconds)
	}
	if c.EndTime == nil || !c.EndTime.Equal(base.Add(12*time.Second)) {
		t.Errorf("end time = %v, want %v", c.EndTime, base.Add(12*time.Second))
	}
	if c.ConnectTime != nil {
		t.Errorf("connect time = %v, want nil", c.ConnectTime)
	}
}

func TestFromQueueLogDefaultsToAbandoned(t *testing.T) {
	rows := []models.QueueLogRow{
		qrow(base, "c3", "1001", "NONE", "ENTERQUEUE", "", "84951112233"),
	}

	calls := report.FromQueueLog(rows)
	if calls[0].Outcome != models.OutcomeAbandoned {
		t.Errorf("outcome = %q, want abandoned before any terminal event", calls[0].Outcome)
	}
}

func TestFromQueueLogKeepsUnknownEvents(t *testing.T) {
	rows := []models.QueueLogRow{
		qrow(base, "c4", "1001", "NONE", "ENTERQUEUE", "", "84951112233"),
		qrow(base.Add(5*time.Second), "c4", "1001", "agent/102", "RINGNOANSWER", "5000"),
		qrow(base.Add(20*time.Second), "c4", "1001", "agent/103", "CONNECT", "20"),
		qrow(base.Add(80*time.Second), "c4", "1001", "agent/103", "COMPLETECALLER", "20", "60"),
	}

	calls := report.FromQueueLog(rows)
	c := calls[0]

	if len(c.Events) != 4 {
		t.Errorf("timeline length = %d, want 4 (unknown events retained)", len(c.Events))
	}
	if c.Outcome != models.OutcomeAnswered {
		t.Errorf("outcome = %q, unknown event must not alter it", c.Outcome)
	}
}

func TestFromQueueLogGroupsInterleavedCalls(t *testing.T) {
	rows := []models.QueueLogRow{
		qrow(base, "a", "1001", "NONE", "ENTERQUEUE", "", "111"),
		qrow(base.Add(1*time.Second), "b", "1001", "NONE", "ENTERQUEUE", "", "222"),
		qrow(base.Add(10*time.Second), "b", "1001", "NONE", "ABANDON", "1", "1", "9"),
		qrow(base.Add(12*time.Second), "a", "1001", "agent/101", "CONNECT", "12"),
		qrow(base.Add(60*time.Second), "a", "1001", "agent/101", "COMPLETEAGENT", "12", "48"),
	}

	calls := report.FromQueueLog(rows)
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].CallID != "a" || calls[1].CallID != "b" {
		t.Errorf("order = %s, %s; want first-seen order a, b", calls[0].CallID, calls[1].CallID)
	}
	if calls[0].Outcome != models.OutcomeAnswered || calls[1].Outcome != models.OutcomeAbandoned {
		t.Errorf("outcomes = %q, %q", calls[0].Outcome, calls[1].Outcome)
	}
}

func TestFromCDRDispositionMapping(t *testing.T) {
	cases := []struct {
		disposition string
		want        models.Outcome
	}{
		{"ANSWERED", models.OutcomeAnswered},
		{"NO ANSWER", models.OutcomeNoAnswer},
		{"BUSY", models.OutcomeBusy},
		{"FAILED", models.OutcomeFailed},
		{"CONGESTION", models.OutcomeUnknown},
		{"", models.OutcomeUnknown},
	}

	for _, tc := range cases {
		rows := []models.CDRRow{{
			UniqueID:    "u1",
			CallDate:    base,
			Src:         "84951112233",
			Dst:         "101",
			Duration:    30,
			BillSec:     25,
			Disposition: tc.disposition,
		}}
		calls := report.FromCDR(rows, models.DirectionInbound)
		if calls[0].Outcome != tc.want {
			t.Errorf("disposition %q: outcome = %q, want %q", tc.disposition, calls[0].Outcome, tc.want)
		}
	}
}

func TestFromCDRSubscriberFollowsDirection(t *testing.T) {
	rows := []models.CDRRow{{
		UniqueID:    "u2",
		CallDate:    base,
		Src:         "101",
		Dst:         "84951112233",
		Duration:    20,
		BillSec:     18,
		Disposition: "ANSWERED",
	}}

	out := report.FromCDR(rows, models.DirectionOutbound)
	if out[0].SubscriberNumber != "84951112233" {
		t.Errorf("outbound subscriber = %q, want the dialed number", out[0].SubscriberNumber)
	}
	if out[0].Direction != models.DirectionOutbound {
		t.Errorf("direction = %q, want asserted outbound", out[0].Direction)
	}

	in := report.FromCDR(rows, models.DirectionInbound)
	if in[0].SubscriberNumber != "101" {
		t.Errorf("inbound subscriber = %q, want the source number", in[0].SubscriberNumber)
	}
}
