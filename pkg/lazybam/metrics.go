package lazybam

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BatchStats describes one NextBatch call.
type BatchStats struct {
	Records      int           // Records returned
	Dropped      int           // Records read then discarded after an I/O error
	ReadDuration time.Duration // Time spent holding the source lock
	EOF          bool          // The source reported end of stream
	Err          error         // Read error that caused the batch to be dropped
}

// Observer receives BatchStats after every NextBatch call. It runs on the
// caller's goroutine after the source lock has been released.
type Observer func(BatchStats)

// Metrics holds Prometheus metrics for readers.
type Metrics struct {
	Batches          prometheus.Counter
	Records          prometheus.Counter
	DroppedBatches   prometheus.Counter
	BatchReadSeconds prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	batches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lazybam_batches_total",
		Help: "Total non-empty batches returned",
	})

	records := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lazybam_records_total",
		Help: "Total records returned",
	})

	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lazybam_dropped_batches_total",
		Help: "Total batches discarded because of a read error",
	})

	readSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lazybam_batch_read_seconds",
		Help:    "Time spent reading one batch from the source",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	reg.MustRegister(batches, records, dropped, readSeconds)

	return &Metrics{
		Batches:          batches,
		Records:          records,
		DroppedBatches:   dropped,
		BatchReadSeconds: readSeconds,
	}
}

// Observe records s. It has the Observer signature.
func (m *Metrics) Observe(s BatchStats) {
	m.BatchReadSeconds.Observe(s.ReadDuration.Seconds())
	if s.Records > 0 {
		m.Batches.Inc()
		m.Records.Add(float64(s.Records))
	}
	if s.Err != nil {
		m.DroppedBatches.Inc()
	}
}
