package authcore

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/holasoymalva/authcore/identity"
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

func TestMetricsNilReceiverSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricVerifyLatency, time.Millisecond)

	if m.Enabled() || m.LatencyEnabled() {
		t.Fatal("nil metrics must report disabled")
	}
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatal("nil metrics snapshot must be empty")
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
				m.Inc(MetricTokenVerified)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricTokenVerified); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}

	for _, d := range observations {
		m.Observe(MetricVerifyLatency, d)
	}

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricVerifyLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}

	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
}

func TestMetricsObserveIgnoresCounterIDs(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	m.Observe(MetricLoginSuccess, time.Millisecond)
	m.Observe(MetricVerifyLatency, time.Millisecond)

	snap := m.Snapshot()
	var total uint64
	for _, n := range snap.Histograms[MetricVerifyLatency] {
		total += n
	}
	if total != 1 {
		t.Fatalf("expected exactly one observation, got %d", total)
	}
}

func TestMetricsLatencyDisabledNoHistogram(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Observe(MetricVerifyLatency, time.Millisecond)

	snap := m.Snapshot()
	if _, ok := snap.Histograms[MetricVerifyLatency]; ok {
		t.Fatal("expected no histogram when latency collection is disabled")
	}
}

func TestMetricsSnapshotConsistency(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginFailure)
	m.Inc(MetricLoginFailure)
	m.Observe(MetricVerifyLatency, 2*time.Millisecond)

	snap := m.Snapshot()

	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Fatalf("expected MetricLoginSuccess=1 got %d", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLoginFailure] != 2 {
		t.Fatalf("expected MetricLoginFailure=2 got %d", snap.Counters[MetricLoginFailure])
	}
	if len(snap.Histograms[MetricVerifyLatency]) != 8 {
		t.Fatalf("expected histogram length 8")
	}
	if snap.Histograms[MetricVerifyLatency][0] != 1 {
		t.Fatalf("expected first histogram bucket=1 got %d", snap.Histograms[MetricVerifyLatency][0])
	}
}

type countingIdentityStore struct {
	inner *identity.MemoryStore
	calls atomic.Int64
}

func (s *countingIdentityStore) GetByEmail(ctx context.Context, email string) (identity.Identity, error) {
	s.calls.Add(1)
	return s.inner.GetByEmail(ctx, email)
}

func (s *countingIdentityStore) GetByExternalID(ctx context.Context, provider, externalID string) (identity.Identity, error) {
	s.calls.Add(1)
	return s.inner.GetByExternalID(ctx, provider, externalID)
}

func (s *countingIdentityStore) GetByID(ctx context.Context, id string) (identity.Identity, error) {
	s.calls.Add(1)
	return s.inner.GetByID(ctx, id)
}

func (s *countingIdentityStore) Create(ctx context.Context, id identity.Identity) (identity.Identity, error) {
	s.calls.Add(1)
	return s.inner.Create(ctx, id)
}

func TestVerifyTokenAvoidsStoreCalls(t *testing.T) {
	counting := &countingIdentityStore{inner: identity.NewMemoryStore()}
	engine, _, done := buildTestEngine(t, testConfig(), func(b *Builder) {
		b.WithIdentityStore(counting)
	})
	defer done()

	seedLocalIdentity(t, counting, "alice@example.com", "correct horse battery", "viewer")

	result, err := engine.Login(context.Background(), "local", Credential{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	counting.calls.Store(0)
	for i := 0; i < 50; i++ {
		if _, err := engine.VerifyToken(result.Token); err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if err := engine.CheckPermission("viewer", "docs.read"); err != nil {
			t.Fatalf("check failed: %v", err)
		}
	}

	if calls := counting.calls.Load(); calls != 0 {
		t.Fatalf("verify path touched the identity store %d times, want 0", calls)
	}
}
