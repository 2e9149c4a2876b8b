package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maerty1/asterisk-stats-sub000/internal/models"
)

// ErrStoreUnavailable wraps an unrecoverable call-store failure. The
// engine returns either a complete, consistent result or this error,
// never a partial aggregate.
var ErrStoreUnavailable = errors.New("call store unavailable")

// QueueNameResolver maps a queue's technical name to its display name.
// Implementations may serve stale values; resolution failures fall back
// to the technical name.
type QueueNameResolver interface {
	DisplayName(ctx context.Context, queue string) string
}

// Service wires the engine stages together: strategy-driven fetch, then
// reconstruction, correlation and aggregation.
type Service struct {
	strategies []Strategy
	correlator *Correlator
	names      QueueNameResolver
	log        *logrus.Entry
}

// NewService creates a report service. names may be nil, in which case
// display names equal technical names.
func NewService(strategies []Strategy, correlator *Correlator, names QueueNameResolver, log *logrus.Entry) *Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		strategies: strategies,
		correlator: correlator,
		names:      names,
		log:        log.WithField("component", "report"),
	}
}

// FetchCalls tries each configured strategy in order and returns the
// first successful call set.
func (s *Service) FetchCalls(ctx context.Context, scope models.ReportScope) ([]*models.Call, error) {
	if len(s.strategies) == 0 {
		return nil, fmt.Errorf("%w: no fetch strategy configured", ErrStoreUnavailable)
	}

	var lastErr error
	for _, st := range s.strategies {
		calls, err := st.FetchCalls(ctx, scope)
		if err != nil {
			s.log.WithError(err).WithField("strategy", st.Name()).Debug("fetch strategy failed, trying next")
			lastErr = err
			continue
		}
		return calls, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, lastErr)
}

// QueueReport produces the full aggregate for one scope: fetch,
// correlate missed calls, aggregate.
func (s *Service) QueueReport(ctx context.Context, scope models.ReportScope) (*models.QueueStats, error) {
	calls, err := s.FetchCalls(ctx, scope)
	if err != nil {
		return nil, err
	}

	s.correlator.Correlate(ctx, calls, scope)

	stats := Aggregate(calls, scope.Direction)
	stats.QueueName = scope.QueueName
	stats.DisplayName = s.displayName(ctx, scope.QueueName)
	return stats, nil
}

// MissedCalls returns every missed call in the scope together with its
// retained callback match, ordered chronologically.
func (s *Service) MissedCalls(ctx context.Context, scope models.ReportScope) ([]models.MissedCallReport, error) {
	calls, err := s.FetchCalls(ctx, scope)
	if err != nil {
		return nil, err
	}

	matches := s.correlator.Correlate(ctx, calls, scope)
	SortByStart(calls)

	reports := make([]models.MissedCallReport, 0)
	for _, c := range calls {
		if !IsMissed(c) {
			continue
		}
		reports = append(reports, models.MissedCallReport{
			Call:     c,
			Callback: matches[c.CallID],
		})
	}
	return reports, nil
}

// RankQueues computes stats for every queue concurrently and ranks them.
// Queues are independent cohorts, so the fan-out is safe; any single
// unrecoverable fetch error fails the whole ranking rather than
// returning a partial ordering.
func (s *Service) RankQueues(ctx context.Context, queues []string, from, to time.Time, key SortKey, department string) ([]*models.QueueRanking, error) {
	statsByQueue := make(map[string]*models.QueueStats, len(queues))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, queue := range queues {
		wg.Add(1)
		go func(queue string) {
			defer wg.Done()

			stats, err := s.QueueReport(ctx, models.ReportScope{
				QueueName: queue,
				Direction: models.DirectionQueue,
				From:      from,
				To:        to,
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			statsByQueue[queue] = stats
		}(queue)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return RankQueues(statsByQueue, key, department), nil
}

func (s *Service) displayName(ctx context.Context, queue string) string {
	if queue == "" {
		return ""
	}
	if s.names == nil {
		return queue
	}
	if name := s.names.DisplayName(ctx, queue); name != "" {
		return name
	}
	return queue
}
