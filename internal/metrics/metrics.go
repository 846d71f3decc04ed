package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"sold2move/internal/models"
)

var (
	lookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sold2move_lookups_total",
		Help: "Homeowner lookups by outcome",
	}, []string{"outcome"})

	providerDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sold2move_provider_request_duration_seconds",
		Help:    "Skip trace provider request latency by HTTP status",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	persistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sold2move_cache_persist_failures_total",
		Help: "Cache reads and writes that failed and were skipped",
	})

	staleEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sold2move_cache_stale_entries",
		Help: "Successful cache entries older than the configured staleness window",
	})

	cacheEntriesDesc = prometheus.NewDesc(
		"sold2move_cache_entries",
		"Cached lookups by state",
		[]string{"state"},
		nil,
	)
)

// StatsSource reports cache table statistics.
type StatsSource interface {
	LookupStats(ctx context.Context, staleBefore time.Time) (*models.LookupStats, error)
}

// CacheCollector is a custom Prometheus collector that reads cache row counts
// from the store on each scrape.
type CacheCollector struct {
	source StatsSource
}

// Describe sends the metric descriptor to the channel.
func (c *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- cacheEntriesDesc
}

// Collect queries the store and emits row counts as gauges.
func (c *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := c.source.LookupStats(ctx, time.Time{})
	if err != nil {
		logrus.WithField("component", "metrics").WithError(err).Error("Failed to collect cache metrics")
		return
	}
	ch <- prometheus.MustNewConstMetric(cacheEntriesDesc, prometheus.GaugeValue, float64(stats.Succeeded), "succeeded")
	ch <- prometheus.MustNewConstMetric(cacheEntriesDesc, prometheus.GaugeValue, float64(stats.Failed), "failed")
}

var registerOnce sync.Once

// Init registers all collectors with the default registry.
// Must be called once at startup; later calls are no-ops.
func Init(source StatsSource) {
	registerOnce.Do(func() {
		prometheus.MustRegister(lookupsTotal, providerDuration, persistFailures, staleEntries)
		if source != nil {
			prometheus.MustRegister(&CacheCollector{source: source})
		}
	})
}

// RecordLookup counts a lookup outcome.
func RecordLookup(outcome string) {
	lookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveProviderRequest records the latency of one provider call.
func ObserveProviderRequest(status string, d time.Duration) {
	providerDuration.WithLabelValues(status).Observe(d.Seconds())
}

// RecordPersistFailure counts a swallowed cache failure.
func RecordPersistFailure() {
	persistFailures.Inc()
}

// SetStaleEntries publishes the latest stale entry count.
func SetStaleEntries(n int64) {
	staleEntries.Set(float64(n))
}
