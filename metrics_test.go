package portalauth

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)

	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)

	if got := m.Value(MetricLoginSuccess); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricRefreshSuccess)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricRefreshSuccess); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		2 * time.Millisecond,
		8 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
		90 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		900 * time.Millisecond,
	}
	for _, d := range observations {
		m.Observe(MetricAuthedCallLatency, d)
	}

	buckets := m.Snapshot().Histograms[MetricAuthedCallLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(buckets))
	}
	for i, got := range buckets {
		if got != 1 {
			t.Fatalf("bucket %d: expected 1, got %d", i, got)
		}
	}
}

func TestMetricsObserveWithoutHistogramsIsNoOp(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Observe(MetricAuthedCallLatency, 10*time.Millisecond)

	if buckets := m.Snapshot().Histograms[MetricAuthedCallLatency]; buckets != nil {
		t.Fatalf("expected no histogram, got %v", buckets)
	}
}

func TestMetricsSnapshotIsDeepCopy(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricLogout)

	snap := m.Snapshot()
	snap.Counters[MetricLogout] = 99

	if got := m.Value(MetricLogout); got != 1 {
		t.Fatalf("snapshot mutation reached the counters: %d", got)
	}
}

func TestBucketIndexBoundaries(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{5 * time.Millisecond, 0},
		{6 * time.Millisecond, 1},
		{10 * time.Millisecond, 1},
		{25 * time.Millisecond, 2},
		{50 * time.Millisecond, 3},
		{100 * time.Millisecond, 4},
		{250 * time.Millisecond, 5},
		{500 * time.Millisecond, 6},
		{501 * time.Millisecond, 7},
		{5 * time.Second, 7},
	}

	for _, tc := range cases {
		if got := bucketIndex(tc.d); got != tc.want {
			t.Fatalf("bucketIndex(%v) = %d, want %d", tc.d, got, tc.want)
		}
	}
}
