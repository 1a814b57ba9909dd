// Package metrics instruments the correction run: propagation and row-loop
// durations, row counts, and an optional push of the run's metrics to a
// Prometheus Pushgateway (batch jobs have no scrape endpoint to hold open).
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	rowsCorrected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "leovision_rows_corrected_total",
		Help: "Visibility rows phase-corrected this run.",
	})

	rangeCacheSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "leovision_range_cache_build_seconds",
		Help:    "Wall time building the per-antenna range cache.",
		Buckets: prometheus.DefBuckets,
	})

	rowLoopSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "leovision_row_loop_seconds",
		Help:    "Wall time of the row correction loop.",
		Buckets: prometheus.DefBuckets,
	})

	datasetRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "leovision_dataset_rows",
		Help: "Rows in the visibility table being processed.",
	})
)

func init() {
	prometheus.MustRegister(rowsCorrected)
	prometheus.MustRegister(rangeCacheSeconds)
	prometheus.MustRegister(rowLoopSeconds)
	prometheus.MustRegister(datasetRows)
}

// SetDatasetRows records the size of the loaded table.
func SetDatasetRows(n int) {
	datasetRows.Set(float64(n))
}

// AddRowsCorrected counts corrected rows.
func AddRowsCorrected(n int) {
	rowsCorrected.Add(float64(n))
}

// ObserveRangeCacheBuild records the range cache build duration.
func ObserveRangeCacheBuild(d time.Duration) {
	rangeCacheSeconds.Observe(d.Seconds())
}

// ObserveRowLoop records the row loop duration.
func ObserveRowLoop(d time.Duration) {
	rowLoopSeconds.Observe(d.Seconds())
}

// Push sends the default registry's metrics to a Pushgateway under the
// "leovision" job.
func Push(gatewayURL string) error {
	if err := push.New(gatewayURL, "leovision").Gatherer(prometheus.DefaultGatherer).Push(); err != nil {
		return fmt.Errorf("metrics: pushing to %s: %w", gatewayURL, err)
	}
	return nil
}
