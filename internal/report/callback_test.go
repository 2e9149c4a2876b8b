package report_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/maerty1/asterisk-stats-sub000/internal/models"
	"github.com/maerty1/asterisk-stats-sub000/internal/report"
)

// fakeSource implements report.CandidateSource from fixed slices.
type fakeSource struct {
	sameQueue []models.CallbackCandidate
	inbound   []models.CallbackCandidate
	outbound  []models.CallbackCandidate

	sameQueueErr error
	inboundErr   error
	outboundErr  error

	sameQueueCalls int
	inboundCalls   int
	outboundCalls  int
}

func (f *fakeSource) SameQueueCandidates(_ context.Context, _ string, _ []models.CallbackWindow) ([]models.CallbackCandidate, error) {
	f.sameQueueCalls++
	return f.sameQueue, f.sameQueueErr
}

func (f *fakeSource) InboundCandidates(_ context.Context, _ []models.CallbackWindow) ([]models.CallbackCandidate, error) {
	f.inboundCalls++
	return f.inbound, f.inboundErr
}

func (f *fakeSource) OutboundCandidates(_ context.Context, _ []models.CallbackWindow) ([]models.CallbackCandidate, error) {
	f.outboundCalls++
	return f.outbound, f.outboundErr
}

func missedCall(id, number string, start time.Time) *models.Call {
	return &models.Call{
		CallID:           id,
		Direction:        models.DirectionQueue,
		QueueName:        "1001",
		SubscriberNumber: number,
		StartTime:        start,
		Outcome:          models.OutcomeAbandoned,
	}
}

func candidate(id, number string, at time.Time, talk int) models.CallbackCandidate {
	return models.CallbackCandidate{
		CallID:      id,
		Number:      number,
		Time:        at,
		TalkSeconds: talk,
		QueueName:   "1001",
	}
}

func queueScope() models.ReportScope {
	return models.ReportScope{
		QueueName: "1001",
		Direction: models.DirectionQueue,
		From:      base,
		To:        base.Add(8 * time.Hour),
	}
}

func assertStatus(t *testing.T, c *models.Call, want models.CallbackStatus) {
	t.Helper()
	if c.CallbackStatus != want {
		t.Errorf("call %s: callback status = %q, want %q", c.CallID, c.CallbackStatus, want)
	}
}

func TestCorrelateSameQueueReentry(t *testing.T) {
	src := &fakeSource{
		sameQueue: []models.CallbackCandidate{
			candidate("m1", "84951112233", base.Add(90*time.Minute), 20),
		},
	}
	calls := []*models.Call{missedCall("c1", "84951112233", base)}

	matches := report.NewCorrelator(src, nil).Correlate(context.Background(), calls, queueScope())

	assertStatus(t, calls[0], models.CallbackByCaller)
	m := matches["c1"]
	if m == nil {
		t.Fatal("expected a match for c1")
	}
	if m.MatchCallID != "m1" || m.MatchType != models.MatchSameQueue {
		t.Errorf("match = %+v, want m1 via same-queue", m)
	}
	if src.inboundCalls != 0 || src.outboundCalls != 0 {
		t.Error("tier 1 success must short-circuit the global tiers")
	}
}

func TestCorrelatePicksEarliestCandidate(t *testing.T) {
	src := &fakeSource{
		sameQueue: []models.CallbackCandidate{
			candidate("late", "84951112233", base.Add(100*time.Minute), 30),
			candidate("early", "84951112233", base.Add(40*time.Minute), 30),
		},
	}
	calls := []*models.Call{missedCall("c1", "84951112233", base)}

	matches := report.NewCorrelator(src, nil).Correlate(context.Background(), calls, queueScope())

	if m := matches["c1"]; m == nil || m.MatchCallID != "early" {
		t.Fatalf("match = %+v, want the chronologically earliest candidate", m)
	}
}

func TestCorrelateCandidateClaimedOnce(t *testing.T) {
	src := &fakeSource{
		sameQueue: []models.CallbackCandidate{
			candidate("m1", "84951112233", base.Add(30*time.Minute), 20),
		},
	}
	calls := []*models.Call{
		missedCall("c1", "84951112233", base),
		missedCall("c2", "84951112233", base.Add(5*time.Minute)),
	}

	matches := report.NewCorrelator(src, nil).Correlate(context.Background(), calls, queueScope())

	if m := matches["c1"]; m == nil || m.MatchCallID != "m1" {
		t.Fatalf("c1 match = %+v, want m1", m)
	}
	if matches["c2"] != nil {
		t.Errorf("c2 match = %+v, want nil: the candidate is already claimed", matches["c2"])
	}
	assertStatus(t, calls[1], models.CallbackUnhandled)
}

func TestCorrelateOverlappingWindowsResolveIndependently(t *testing.T) {
	src := &fakeSource{
		sameQueue: []models.CallbackCandidate{
			candidate("m1", "84951112233", base.Add(30*time.Minute), 20),
			candidate("m2", "84951112233", base.Add(45*time.Minute), 20),
		},
	}
	calls := []*models.Call{
		missedCall("c1", "84951112233", base),
		missedCall("c2", "84951112233", base.Add(5*time.Minute)),
	}

	matches := report.NewCorrelator(src, nil).Correlate(context.Background(), calls, queueScope())

	if m := matches["c1"]; m == nil || m.MatchCallID != "m1" {
		t.Fatalf("c1 match = %+v, want m1", m)
	}
	if m := matches["c2"]; m == nil || m.MatchCallID != "m2" {
		t.Fatalf("c2 match = %+v, want m2", m)
	}
}

func TestCorrelateInboundPreferredOverOutbound(t *testing.T) {
	src := &fakeSource{
		inbound: []models.CallbackCandidate{
			candidate("in1", "84951112233", base.Add(60*time.Minute), 20),
		},
		outbound: []models.CallbackCandidate{
			// Earlier than the inbound match, but customer-initiated
			// contact still wins.
			candidate("out1", "84951112233", base.Add(20*time.Minute), 20),
		},
	}
	calls := []*models.Call{missedCall("c1", "84951112233", base)}

	matches := report.NewCorrelator(src, nil).Correlate(context.Background(), calls, queueScope())

	m := matches["c1"]
	if m == nil || m.MatchType != models.MatchGlobalInbound {
		t.Fatalf("match = %+v, want global-inbound", m)
	}
	assertStatus(t, calls[0], models.CallbackByCaller)
}

func TestCorrelateOutboundOnly(t *testing.T) {
	src := &fakeSource{
		outbound: []models.CallbackCandidate{
			candidate("out1", "84951112233", base.Add(25*time.Minute), 15),
		},
	}
	calls := []*models.Call{missedCall("c1", "84951112233", base)}

	matches := report.NewCorrelator(src, nil).Correlate(context.Background(), calls, queueScope())

	m := matches["c1"]
	if m == nil || m.MatchType != models.MatchGlobalOutbound {
		t.Fatalf("match = %+v, want global-outbound", m)
	}
	assertStatus(t, calls[0], models.CallbackByAgent)
}

func TestCorrelateRejectsShortTalkAndOutOfWindow(t *testing.T) {
	src := &fakeSource{
		sameQueue: []models.CallbackCandidate{
			candidate("short", "84951112233", base.Add(10*time.Minute), 4),
			candidate("late", "84951112233", base.Add(3*time.Hour), 30),
			candidate("before", "84951112233", base.Add(-10*time.Minute), 30),
		},
	}
	calls := []*models.Call{missedCall("c1", "84951112233", base)}

	matches := report.NewCorrelator(src, nil).Correlate(context.Background(), calls, queueScope())

	if matches["c1"] != nil {
		t.Errorf("match = %+v, want nil", matches["c1"])
	}
	assertStatus(t, calls[0], models.CallbackUnhandled)
}

func TestCorrelateExcludesSourceCall(t *testing.T) {
	src := &fakeSource{
		sameQueue: []models.CallbackCandidate{
			candidate("c1", "84951112233", base.Add(10*time.Minute), 30),
		},
	}
	calls := []*models.Call{missedCall("c1", "84951112233", base)}

	matches := report.NewCorrelator(src, nil).Correlate(context.Background(), calls, queueScope())

	if matches["c1"] != nil {
		t.Error("a call must not match itself")
	}
}

func TestCorrelateSkipsCallsWithoutIdentity(t *testing.T) {
	src := &fakeSource{}
	calls := []*models.Call{
		missedCall("c1", "", base),
		{CallID: "c2", Direction: models.DirectionQueue, SubscriberNumber: "84951112233", Outcome: models.OutcomeAbandoned},
	}

	matches := report.NewCorrelator(src, nil).Correlate(context.Background(), calls, queueScope())

	assertStatus(t, calls[0], models.CallbackUnhandled)
	assertStatus(t, calls[1], models.CallbackUnhandled)
	if len(matches) != 2 || matches["c1"] != nil || matches["c2"] != nil {
		t.Errorf("matches = %v, want two nil entries", matches)
	}
	if src.sameQueueCalls != 0 {
		t.Error("no searchable call, no query")
	}
}

func TestCorrelateAnsweredCallsUntouched(t *testing.T) {
	src := &fakeSource{}
	answered := &models.Call{
		CallID:           "a1",
		Direction:        models.DirectionQueue,
		SubscriberNumber: "84951112233",
		StartTime:        base,
		ConnectTime:      timePtr(base.Add(5 * time.Second)),
		Outcome:          models.OutcomeAnswered,
		TerminalEvent:    models.EventCompleteAgent,
		DurationSeconds:  intPtr(60),
	}

	matches := report.NewCorrelator(src, nil).Correlate(context.Background(), []*models.Call{answered}, queueScope())

	assertStatus(t, answered, models.CallbackUnset)
	if _, ok := matches["a1"]; ok {
		t.Error("answered calls must not appear in the callback map")
	}
}

func TestCorrelateTierOneFailureDegradesCohort(t *testing.T) {
	src := &fakeSource{
		sameQueueErr: errors.New("connection reset"),
		inbound: []models.CallbackCandidate{
			candidate("in1", "84951112233", base.Add(30*time.Minute), 20),
		},
	}
	calls := []*models.Call{missedCall("c1", "84951112233", base)}

	matches := report.NewCorrelator(src, nil).Correlate(context.Background(), calls, queueScope())

	assertStatus(t, calls[0], models.CallbackUnhandled)
	if matches["c1"] != nil {
		t.Error("a failed batch must resolve to unhandled, not half-resolved")
	}
}

func TestCorrelateGlobalTierFailureKeepsTierOneMatches(t *testing.T) {
	src := &fakeSource{
		sameQueue: []models.CallbackCandidate{
			candidate("m1", "84951112233", base.Add(30*time.Minute), 20),
		},
		inboundErr: errors.New("timeout"),
	}
	calls := []*models.Call{
		missedCall("c1", "84951112233", base),
		missedCall("c2", "84959998877", base),
	}

	matches := report.NewCorrelator(src, nil).Correlate(context.Background(), calls, queueScope())

	assertStatus(t, calls[0], models.CallbackByCaller)
	assertStatus(t, calls[1], models.CallbackUnhandled)
	if matches["c1"] == nil || matches["c2"] != nil {
		t.Errorf("matches = %v", matches)
	}
}

func TestCorrelateIsIdempotent(t *testing.T) {
	newInputs := func() ([]*models.Call, *fakeSource) {
		src := &fakeSource{
			sameQueue: []models.CallbackCandidate{
				candidate("m1", "84951112233", base.Add(30*time.Minute), 20),
			},
			inbound: []models.CallbackCandidate{
				candidate("in1", "84959998877", base.Add(40*time.Minute), 20),
			},
			outbound: []models.CallbackCandidate{
				candidate("out1", "84957776655", base.Add(50*time.Minute), 20),
			},
		}
		calls := []*models.Call{
			missedCall("c1", "84951112233", base),
			missedCall("c2", "84959998877", base),
			missedCall("c3", "84957776655", base),
		}
		return calls, src
	}

	callsA, srcA := newInputs()
	first := report.NewCorrelator(srcA, nil).Correlate(context.Background(), callsA, queueScope())

	callsB, srcB := newInputs()
	second := report.NewCorrelator(srcB, nil).Correlate(context.Background(), callsB, queueScope())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("correlation not deterministic:\nfirst:  %v\nsecond: %v", first, second)
	}
}

func TestCorrelateSuffixMatchAcrossFormats(t *testing.T) {
	src := &fakeSource{
		sameQueue: []models.CallbackCandidate{
			candidate("m1", "8912345678", base.Add(30*time.Minute), 20),
		},
	}
	calls := []*models.Call{missedCall("c1", "+7912345678", base)}

	matches := report.NewCorrelator(src, nil).Correlate(context.Background(), calls, queueScope())

	if matches["c1"] == nil {
		t.Fatal("prefix variance must still match on the digit suffix")
	}
}
