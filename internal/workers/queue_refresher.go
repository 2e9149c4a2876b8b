package workers

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/maerty1/asterisk-stats-sub000/internal/cache"
	"github.com/maerty1/asterisk-stats-sub000/internal/database"
	"github.com/maerty1/asterisk-stats-sub000/internal/models"
)

// QueueSource is the store capability the directory needs.
type QueueSource interface {
	AvailableQueues(ctx context.Context) ([]database.QueueNameRow, error)
	QueueDisplayName(ctx context.Context, queue string) (string, error)
}

// QueueDirectoryConfig holds configuration for the queue directory.
type QueueDirectoryConfig struct {
	TTL             time.Duration // How long cached entries stay fresh
	RefreshInterval time.Duration // How often the background refresh runs
}

// QueueDirectory caches the available-queue list and the queue
// display-name map. Reads tolerate staleness; the background worker
// refreshes best-effort and failures are logged, not raised.
type QueueDirectory struct {
	src             QueueSource
	list            *cache.Cache[string, []models.QueueInfo]
	names           *cache.Cache[string, string]
	refreshInterval time.Duration
	done            chan struct{}
	log             *logrus.Entry

	mu      sync.Mutex
	running bool
}

// listKey is the single key of the available-queue list cache.
const listKey = "all"

// NewQueueDirectory creates a queue directory over the given source.
func NewQueueDirectory(src QueueSource, cfg *QueueDirectoryConfig, log *logrus.Entry) *QueueDirectory {
	if cfg.TTL == 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = time.Minute
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "queue-directory")

	d := &QueueDirectory{
		src:             src,
		refreshInterval: cfg.RefreshInterval,
		done:            make(chan struct{}),
		log:             log,
	}

	d.list = cache.New[string, []models.QueueInfo](cfg.TTL, func(ctx context.Context, _ string) ([]models.QueueInfo, error) {
		return d.loadQueues(ctx)
	}, log)

	d.names = cache.New[string, string](cfg.TTL, func(ctx context.Context, queue string) (string, error) {
		return src.QueueDisplayName(ctx, queue)
	}, log)

	return d
}

// Queues returns the available-queue list, possibly stale.
func (d *QueueDirectory) Queues(ctx context.Context) ([]models.QueueInfo, error) {
	return d.list.Get(ctx, listKey)
}

// DisplayName resolves a queue's display name, falling back to the
// technical name on any lookup failure. Implements the report service's
// resolver boundary.
func (d *QueueDirectory) DisplayName(ctx context.Context, queue string) string {
	name, err := d.names.Get(ctx, queue)
	if err != nil || name == "" {
		return queue
	}
	return name
}

// Stats returns the cache statistics of both caches combined.
func (d *QueueDirectory) Stats() cache.Stats {
	listStats := d.list.Stats()
	nameStats := d.names.Stats()

	total := listStats.Hits + nameStats.Hits + listStats.Misses + nameStats.Misses
	stats := cache.Stats{
		Hits:   listStats.Hits + nameStats.Hits,
		Misses: listStats.Misses + nameStats.Misses,
		Size:   listStats.Size + nameStats.Size,
	}
	if total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total) * 100
	}
	return stats
}

// Start begins the background refresh worker
func (d *QueueDirectory) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.log.WithField("interval", d.refreshInterval).Info("starting queue directory refresh")

	ticker := time.NewTicker(d.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info("queue directory shutting down")
			close(d.done)
			return

		case <-ticker.C:
			d.refreshList(ctx)
		}
	}
}

// Stop blocks until the refresh worker has exited. A no-op when the
// worker was never started.
func (d *QueueDirectory) Stop() {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	if !running {
		return
	}
	<-d.done
}

// refreshList reloads the queue list, retrying transient store errors
// with exponential backoff. The final failure is logged and the stale
// list stays in place.
func (d *QueueDirectory) refreshList(ctx context.Context) {
	op := func() error {
		queues, err := d.loadQueues(ctx)
		if err != nil {
			return err
		}
		d.list.Set(listKey, queues)
		for _, q := range queues {
			d.names.Set(q.Name, q.DisplayName)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		d.log.WithError(err).Warn("queue list refresh failed, keeping stale list")
	}
}

func (d *QueueDirectory) loadQueues(ctx context.Context) ([]models.QueueInfo, error) {
	rows, err := d.src.AvailableQueues(ctx)
	if err != nil {
		return nil, err
	}

	queues := make([]models.QueueInfo, 0, len(rows))
	for _, row := range rows {
		queues = append(queues, models.QueueInfo{
			Name:        row.Name,
			DisplayName: row.DisplayName,
		})
	}
	return queues, nil
}
