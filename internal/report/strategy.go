package report

import (
	"context"
	"fmt"
	"time"

	"github.com/maerty1/asterisk-stats-sub000/internal/models"
)

// EventSource is the store capability the fetch strategies need.
type EventSource interface {
	// QueueEvents returns queue_log rows for one queue and time range,
	// ordered chronologically.
	QueueEvents(ctx context.Context, queue string, from, to time.Time) ([]models.QueueLogRow, error)
	// CDRRecords returns flat call-detail rows for a direction and range.
	CDRRecords(ctx context.Context, direction models.Direction, queue string, from, to time.Time) ([]models.CDRRow, error)
}

// Strategy is one way of obtaining the call set for a scope. Candidate
// strategies are chosen once at startup and tried in order per request;
// the first that succeeds wins.
type Strategy interface {
	Name() string
	FetchCalls(ctx context.Context, scope models.ReportScope) ([]*models.Call, error)
}

// QueueLogStrategy reconstructs calls from the per-event queue log. It
// only serves the queue directions; the flat CDR directions have no
// event log to reconstruct from.
type QueueLogStrategy struct {
	src EventSource
}

// NewQueueLogStrategy creates the queue_log-backed strategy.
func NewQueueLogStrategy(src EventSource) *QueueLogStrategy {
	return &QueueLogStrategy{src: src}
}

func (s *QueueLogStrategy) Name() string { return "queue_log" }

func (s *QueueLogStrategy) FetchCalls(ctx context.Context, scope models.ReportScope) ([]*models.Call, error) {
	if scope.Direction != models.DirectionQueue && scope.Direction != models.DirectionOutboundQueue {
		return nil, fmt.Errorf("queue_log strategy does not serve direction %q", scope.Direction)
	}

	rows, err := s.src.QueueEvents(ctx, scope.QueueName, scope.From, scope.To)
	if err != nil {
		return nil, fmt.Errorf("fetch queue events: %w", err)
	}

	calls := FromQueueLog(rows)
	for _, c := range calls {
		c.Direction = scope.Direction
	}
	return calls, nil
}

// CDRStrategy builds calls from the flat CDR table. Primary source for
// the inbound and outbound directions, fallback for queue reports when
// the queue log is unavailable.
type CDRStrategy struct {
	src EventSource
}

// NewCDRStrategy creates the cdr-backed strategy.
func NewCDRStrategy(src EventSource) *CDRStrategy {
	return &CDRStrategy{src: src}
}

func (s *CDRStrategy) Name() string { return "cdr" }

func (s *CDRStrategy) FetchCalls(ctx context.Context, scope models.ReportScope) ([]*models.Call, error) {
	rows, err := s.src.CDRRecords(ctx, scope.Direction, scope.QueueName, scope.From, scope.To)
	if err != nil {
		return nil, fmt.Errorf("fetch cdr records: %w", err)
	}

	calls := FromCDR(rows, scope.Direction)
	for _, c := range calls {
		if c.QueueName == "" {
			c.QueueName = scope.QueueName
		}
	}
	return calls, nil
}

// BuildStrategies resolves the configured strategy names into an ordered
// chain. Unknown names are rejected at startup, not at request time.
func BuildStrategies(src EventSource, names []string) ([]Strategy, error) {
	if len(names) == 0 {
		names = []string{"queue_log", "cdr"}
	}

	chain := make([]Strategy, 0, len(names))
	for _, name := range names {
		switch name {
		case "queue_log":
			chain = append(chain, NewQueueLogStrategy(src))
		case "cdr":
			chain = append(chain, NewCDRStrategy(src))
		default:
			return nil, fmt.Errorf("unknown fetch strategy %q", name)
		}
	}
	return chain, nil
}
