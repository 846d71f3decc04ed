package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"sold2move/internal/metrics"
)

// StaleReporter periodically counts successful cache entries older than maxAge.
// It only reports; cached rows are never deleted.
type StaleReporter struct {
	source   metrics.StatsSource
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
	publish  func(int64)
	log      *logrus.Entry
}

// NewStaleReporter creates a new stale entry reporter.
func NewStaleReporter(source metrics.StatsSource, interval, maxAge time.Duration) *StaleReporter {
	return &StaleReporter{
		source:   source,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
		publish:  metrics.SetStaleEntries,
		log:      logrus.WithField("component", "stale_reporter"),
	}
}

// Start begins the background reporting loop. It returns when ctx is cancelled.
func (r *StaleReporter) Start(ctx context.Context) {
	r.log.WithFields(logrus.Fields{
		"interval": r.interval,
		"max_age":  r.maxAge,
	}).Info("Stale entry reporter started")

	// Run immediately on start
	r.report(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Stale entry reporter stopped")
			return
		case <-ticker.C:
			r.report(ctx)
		}
	}
}

// report publishes the current stale count. Failures are logged and retried on the next tick.
func (r *StaleReporter) report(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	stats, err := r.source.LookupStats(ctx, r.now().Add(-r.maxAge))
	if err != nil {
		if ctx.Err() == nil {
			r.log.WithError(err).Warn("Failed to count stale cache entries")
		}
		return
	}

	r.publish(stats.Stale)
	entry := r.log.WithFields(logrus.Fields{
		"total":     stats.Total,
		"succeeded": stats.Succeeded,
		"failed":    stats.Failed,
		"stale":     stats.Stale,
	})
	if stats.Stale > 0 {
		entry.Info("Cache holds stale homeowner lookups")
	} else {
		entry.Debug("No stale homeowner lookups")
	}
}
