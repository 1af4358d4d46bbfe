package portalauth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected or failed logins.
	MetricLoginFailure
	// MetricRegisterSuccess counts successful registrations.
	MetricRegisterSuccess
	// MetricRegisterFailure counts rejected or failed registrations.
	MetricRegisterFailure
	// MetricLogout counts logouts, including logouts forced by refresh failure.
	MetricLogout
	// MetricRefreshSuccess counts successful token refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts failed token refreshes.
	MetricRefreshFailure
	// MetricRefreshDeduped counts refresh attempts collapsed into an in-flight refresh.
	MetricRefreshDeduped
	// MetricAuthedCallRetry counts requests replayed after a refresh.
	MetricAuthedCallRetry
	// MetricSessionRestored counts startups that restored a persisted session.
	MetricSessionRestored
	// MetricSessionRestoreEmpty counts startups with no persisted session.
	MetricSessionRestoreEmpty
	// MetricSessionRestoreCorrupt counts startups that found a corrupt persisted session.
	MetricSessionRestoreCorrupt
	// MetricEmailVerificationSuccess counts redeemed verification tokens.
	MetricEmailVerificationSuccess
	// MetricEmailVerificationFailure counts rejected verification tokens.
	MetricEmailVerificationFailure
	// MetricPasswordResetRequested counts forgot-password requests.
	MetricPasswordResetRequested
	// MetricPasswordResetConfirmed counts redeemed reset tokens.
	MetricPasswordResetConfirmed
	// MetricPasswordResetFailure counts rejected reset or forgot-password requests.
	MetricPasswordResetFailure
	// MetricProfileUpdateSuccess counts successful profile updates.
	MetricProfileUpdateSuccess
	// MetricProfileUpdateFailure counts failed profile updates.
	MetricProfileUpdateFailure
	// MetricAuthedCallLatency is the histogram of CallAuthenticated durations.
	MetricAuthedCallLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds atomic counters and an optional latency histogram for the
// authenticated-call path. All operations are allocation-free and safe for
// concurrent use; when disabled they are no-ops.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram is being recorded.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample. Only [MetricAuthedCallLatency] carries
// a histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricAuthedCallLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of the counter for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histograms.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAuthedCallLatency].buckets[i])
		}
		s.Histograms[MetricAuthedCallLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
