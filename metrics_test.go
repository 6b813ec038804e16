package authcore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vitalit-os/authcore/rbac"
)

func TestMetricsIncAndValue(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginFailure)

	if got := m.Value(MetricLoginSuccess); got != 2 {
		t.Errorf("login success = %d, want 2", got)
	}
	if got := m.Value(MetricLoginFailure); got != 1 {
		t.Errorf("login failure = %d, want 1", got)
	}
	if got := m.Value(MetricLogout); got != 0 {
		t.Errorf("untouched counter = %d, want 0", got)
	}

	// Out-of-range IDs are ignored, not a panic.
	m.Inc(MetricID(9999))
}

func TestMetricsDisabled(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricLoginSuccess)
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Errorf("disabled store counted: %d", got)
	}

	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Errorf("disabled snapshot not empty: %+v", snap)
	}

	var nilMetrics *Metrics
	nilMetrics.Inc(MetricLoginSuccess)
	nilMetrics.Observe(MetricAuthenticateLatency, time.Millisecond)
	if nilMetrics.Value(MetricLoginSuccess) != 0 {
		t.Error("nil metrics returned nonzero value")
	}
}

func TestMetricsLatencyHistogram(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	m.Observe(MetricAuthenticateLatency, 2*time.Millisecond)   // bucket 0
	m.Observe(MetricAuthenticateLatency, 40*time.Millisecond)  // bucket 3
	m.Observe(MetricAuthenticateLatency, 40*time.Millisecond)  // bucket 3
	m.Observe(MetricAuthenticateLatency, 900*time.Millisecond) // bucket 7

	// Only the latency histogram accepts observations.
	m.Observe(MetricLoginSuccess, time.Millisecond)

	snap := m.Snapshot()
	buckets, ok := snap.Histograms[MetricAuthenticateLatency]
	if !ok {
		t.Fatal("latency histogram missing from snapshot")
	}
	want := []uint64{1, 0, 0, 2, 0, 0, 0, 1}
	for i := range want {
		if buckets[i] != want[i] {
			t.Errorf("bucket %d = %d, want %d", i, buckets[i], want[i])
		}
	}
	if _, ok := snap.Histograms[MetricLoginSuccess]; ok {
		t.Error("non-latency histogram appeared in snapshot")
	}
}

func TestMetricsLatencyDisabledByDefault(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Observe(MetricAuthenticateLatency, time.Millisecond)
	if len(m.Snapshot().Histograms) != 0 {
		t.Error("latency recorded without EnableLatencyHistograms")
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
		{time.Hour, 7},
	}
	for _, tc := range cases {
		if got := bucketIndex(tc.d); got != tc.want {
			t.Errorf("bucketIndex(%v) = %d, want %d", tc.d, got, tc.want)
		}
	}
}

func TestEngineCountsLoginOutcomes(t *testing.T) {
	f := newEngineFixture(t, nil, nil)
	f.addUser("acct-1", "alice", "correct-horse", rbac.RoleDoctor)
	ctx := context.Background()

	if _, err := f.engine.Login(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := f.engine.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("failed login: %v", err)
	}

	snap := f.engine.MetricsSnapshot()
	if snap.Counters[MetricLoginSuccess] != 1 {
		t.Errorf("login success = %d, want 1", snap.Counters[MetricLoginSuccess])
	}
	if snap.Counters[MetricLoginFailure] != 1 {
		t.Errorf("login failure = %d, want 1", snap.Counters[MetricLoginFailure])
	}
	if snap.Counters[MetricSessionCreated] != 1 {
		t.Errorf("session created = %d, want 1", snap.Counters[MetricSessionCreated])
	}
}

func TestEngineCountsAuthorizeDenied(t *testing.T) {
	f := newEngineFixture(t, nil, nil)

	nurse := Principal{AccountID: "acct-1", Role: rbac.RoleNurse}
	_ = f.engine.Authorize(context.Background(), nurse, "admin.only")

	if got := f.engine.MetricsSnapshot().Counters[MetricAuthorizeDenied]; got != 1 {
		t.Errorf("authorize denied = %d, want 1", got)
	}
}
