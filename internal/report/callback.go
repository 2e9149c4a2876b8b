package report

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maerty1/asterisk-stats-sub000/internal/models"
)

const (
	// DefaultCallbackWindow is how far forward a reciprocal contact is
	// searched for after a missed call's start time.
	DefaultCallbackWindow = 2 * time.Hour

	// minCallbackTalkSeconds excludes immediate hangups from counting as
	// a successful callback.
	minCallbackTalkSeconds = 5
)

// CandidateSource is the only store capability the correlator needs.
// Each method issues ONE batched query covering every window in the
// cohort; per-call resolution happens in memory.
type CandidateSource interface {
	// SameQueueCandidates returns answered calls in the given queue whose
	// entry time falls into any of the windows.
	SameQueueCandidates(ctx context.Context, queue string, windows []models.CallbackWindow) ([]models.CallbackCandidate, error)
	// InboundCandidates returns globally answered inbound calls within
	// any of the windows, excluding internal and outbound contexts.
	InboundCandidates(ctx context.Context, windows []models.CallbackWindow) ([]models.CallbackCandidate, error)
	// OutboundCandidates returns globally answered outbound calls within
	// any of the windows, matched against the dialed number.
	OutboundCandidates(ctx context.Context, windows []models.CallbackWindow) ([]models.CallbackCandidate, error)
}

// Correlator resolves whether missed calls were followed up: did the
// caller come back, did we call them back, or did nothing happen.
type Correlator struct {
	src     CandidateSource
	window  time.Duration
	minTalk int
	log     *logrus.Entry
}

// NewCorrelator creates a Correlator over the given candidate source.
func NewCorrelator(src CandidateSource, log *logrus.Entry) *Correlator {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Correlator{
		src:     src,
		window:  DefaultCallbackWindow,
		minTalk: minCallbackTalkSeconds,
		log:     log.WithField("component", "correlator"),
	}
}

// WithWindow overrides the search window. Zero keeps the default.
func (c *Correlator) WithWindow(w time.Duration) *Correlator {
	if w > 0 {
		c.window = w
	}
	return c
}

// missedRef pins a missed call to its position in the original call set.
// All de-duplication is keyed by this index, never by matched-call
// identity, so overlapping windows still resolve independently.
type missedRef struct {
	index int
	call  *models.Call
}

// Correlate assigns a callback status to every missed call in the set
// and returns the retained match (or nil) keyed by call id. Search tiers
// run in priority order: same-queue re-entry, then global inbound and
// global outbound. A store failure degrades the affected calls to
// unhandled; it is never surfaced to the caller.
func (c *Correlator) Correlate(ctx context.Context, calls []*models.Call, scope models.ReportScope) map[string]*models.CallbackMatch {
	out := make(map[string]*models.CallbackMatch)

	var arena []missedRef
	for i, call := range calls {
		if !IsMissed(call) {
			continue
		}
		// Missed either way, but without an identity or a start time
		// there is nothing to search for.
		if call.SubscriberNumber == "" || call.StartTime.IsZero() {
			call.CallbackStatus = models.CallbackUnhandled
			out[call.CallID] = nil
			continue
		}
		call.CallbackStatus = models.CallbackUnhandled
		out[call.CallID] = nil
		arena = append(arena, missedRef{index: i, call: call})
	}

	if len(arena) == 0 {
		return out
	}

	result := make(map[int]*models.CallbackMatch, len(arena))
	claimed := make(map[string]bool)

	// Tier 1: re-entry into the same queue.
	if scope.QueueName != "" {
		cands, err := c.src.SameQueueCandidates(ctx, scope.QueueName, c.windows(arena))
		if err != nil {
			c.log.WithError(err).Warn("same-queue candidate query failed, cohort degrades to unhandled")
			return out
		}
		c.resolve(arena, result, claimed, cands, models.MatchSameQueue)
	}

	remaining := unresolved(arena, result)
	if len(remaining) > 0 {
		// Tiers 2 and 3 are independent lookups; run them concurrently
		// and merge with inbound taking priority.
		var (
			wg       sync.WaitGroup
			inCands  []models.CallbackCandidate
			outCands []models.CallbackCandidate
			inErr    error
			outErr   error
		)
		windows := c.windows(remaining)

		wg.Add(2)
		go func() {
			defer wg.Done()
			inCands, inErr = c.src.InboundCandidates(ctx, windows)
		}()
		go func() {
			defer wg.Done()
			outCands, outErr = c.src.OutboundCandidates(ctx, windows)
		}()
		wg.Wait()

		if inErr != nil || outErr != nil {
			if inErr != nil {
				c.log.WithError(inErr).Warn("inbound candidate query failed, remaining calls degrade to unhandled")
			}
			if outErr != nil {
				c.log.WithError(outErr).Warn("outbound candidate query failed, remaining calls degrade to unhandled")
			}
		} else {
			c.resolve(remaining, result, claimed, inCands, models.MatchGlobalInbound)
			c.resolve(unresolved(remaining, result), result, claimed, outCands, models.MatchGlobalOutbound)
		}
	}

	for _, ref := range arena {
		match, ok := result[ref.index]
		if !ok {
			continue
		}
		switch match.MatchType {
		case models.MatchGlobalOutbound:
			ref.call.CallbackStatus = models.CallbackByAgent
		default:
			ref.call.CallbackStatus = models.CallbackByCaller
		}
		out[ref.call.CallID] = match
	}

	return out
}

// resolve walks source calls by ascending index and assigns each the
// earliest qualifying candidate not already claimed by another call.
func (c *Correlator) resolve(arena []missedRef, result map[int]*models.CallbackMatch, claimed map[string]bool, cands []models.CallbackCandidate, matchType models.MatchType) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Time.Before(cands[j].Time)
	})

	for _, ref := range arena {
		if _, done := result[ref.index]; done {
			continue
		}
		for i := range cands {
			cand := &cands[i]
			if claimed[cand.CallID] || cand.CallID == ref.call.CallID {
				continue
			}
			if cand.TalkSeconds < c.minTalk {
				continue
			}
			if cand.Time.Before(ref.call.StartTime) || cand.Time.After(ref.call.StartTime.Add(c.window)) {
				continue
			}
			if !NumbersMatch(cand.Number, ref.call.SubscriberNumber) {
				continue
			}
			claimed[cand.CallID] = true
			result[ref.index] = &models.CallbackMatch{
				SourceCallID: ref.call.CallID,
				MatchCallID:  cand.CallID,
				MatchType:    matchType,
				MatchTime:    cand.Time,
				RecordingRef: cand.RecordingRef,
			}
			break
		}
	}
}

func (c *Correlator) windows(arena []missedRef) []models.CallbackWindow {
	windows := make([]models.CallbackWindow, 0, len(arena))
	for _, ref := range arena {
		windows = append(windows, models.CallbackWindow{
			Number: ref.call.SubscriberNumber,
			From:   ref.call.StartTime,
			To:     ref.call.StartTime.Add(c.window),
		})
	}
	return windows
}

func unresolved(arena []missedRef, result map[int]*models.CallbackMatch) []missedRef {
	var rest []missedRef
	for _, ref := range arena {
		if _, done := result[ref.index]; !done {
			rest = append(rest, ref)
		}
	}
	return rest
}
