package breaker

import (
	"testing"
	"time"
)

func TestOpensAfterThreshold(t *testing.T) {
	b := New(WithFailureThreshold(3))

	b.ReportFailure("primary_fear_greed_index")
	b.ReportFailure("primary_fear_greed_index")
	if !b.IsAvailable("primary_fear_greed_index") {
		t.Fatalf("circuit opened before threshold")
	}
	b.ReportFailure("primary_fear_greed_index")
	if b.IsAvailable("primary_fear_greed_index") {
		t.Fatalf("expected circuit open after 3 failures")
	}
	if got := b.CurrentState("primary_fear_greed_index"); got != StateOpen {
		t.Fatalf("unexpected state %s", got)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	b := New(WithFailureThreshold(1))
	b.ReportFailure("primary_fear_greed_index")
	if !b.IsAvailable("primary_hash_rate") {
		t.Fatalf("unrelated key affected")
	}
}

func TestHalfOpenSingleProbe(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	b := New(WithFailureThreshold(1), WithRecoveryTimeout(time.Minute), WithClock(clock))

	b.ReportFailure("primary_mvrv_ratio")
	if b.IsAvailable("primary_mvrv_ratio") {
		t.Fatalf("expected open")
	}

	now = now.Add(61 * time.Second)
	if !b.IsAvailable("primary_mvrv_ratio") {
		t.Fatalf("expected half-open probe admitted")
	}
	if got := b.CurrentState("primary_mvrv_ratio"); got != StateHalfOpen {
		t.Fatalf("unexpected state %s", got)
	}
	if b.IsAvailable("primary_mvrv_ratio") {
		t.Fatalf("second probe admitted while half-open")
	}
}

func TestSuccessResets(t *testing.T) {
	b := New(WithFailureThreshold(2))
	b.ReportFailure("k")
	b.ReportFailure("k")
	b.ReportSuccess("k")
	if !b.IsAvailable("k") {
		t.Fatalf("expected closed after success")
	}
	// Counter reset: one more failure must not open it again.
	b.ReportFailure("k")
	if !b.IsAvailable("k") {
		t.Fatalf("failure count was not reset")
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := New(WithFailureThreshold(1), WithRecoveryTimeout(time.Minute), WithClock(func() time.Time { return now }))

	b.ReportFailure("k")
	now = now.Add(2 * time.Minute)
	if !b.IsAvailable("k") {
		t.Fatalf("expected probe")
	}
	b.ReportFailure("k")
	if got := b.CurrentState("k"); got != StateOpen {
		t.Fatalf("expected reopen, got %s", got)
	}
	if b.IsAvailable("k") {
		t.Fatalf("expected open after failed probe")
	}
}

func TestLostProbeAdmitsAnother(t *testing.T) {
	now := time.Now()
	b := New(WithFailureThreshold(1), WithRecoveryTimeout(time.Minute), WithClock(func() time.Time { return now }))

	b.ReportFailure("k")
	now = now.Add(2 * time.Minute)
	if !b.IsAvailable("k") {
		t.Fatalf("expected probe admitted")
	}
	if b.IsAvailable("k") {
		t.Fatalf("second probe admitted while first is in flight")
	}

	// The probe never reports back. After another recovery window the key
	// must not stay unavailable forever.
	now = now.Add(61 * time.Second)
	if !b.IsAvailable("k") {
		t.Fatalf("expected replacement probe after the first was lost")
	}
	if b.IsAvailable("k") {
		t.Fatalf("replacement probe did not re-arm the single-probe gate")
	}

	b.ReportSuccess("k")
	if got := b.CurrentState("k"); got != StateClosed {
		t.Fatalf("expected closed after successful probe, got %s", got)
	}
}
