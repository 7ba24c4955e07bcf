package resilience

import (
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute, HalfOpenMaxReq: 1})

	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker must allow: %v", err)
	}
	b.RecordFailure()
	b.RecordFailure()

	if err := b.Allow(); err == nil {
		t.Fatal("expected open breaker to reject")
	}
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("unexpected state: %s", got)
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: 10 * time.Millisecond, HalfOpenMaxReq: 1})
	base := time.Now()
	b.now = func() time.Time { return base }

	b.RecordFailure()
	if err := b.Allow(); err == nil {
		t.Fatal("expected rejection while open")
	}

	base = base.Add(20 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to be allowed: %v", err)
	}
	b.RecordSuccess()

	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", got)
	}
}

func TestSingleFlightShares(t *testing.T) {
	var g SingleFlight[int]
	calls := 0

	first, shared, err := g.Do("k", func() (int, error) {
		calls++
		return 42, nil
	})
	if err != nil || shared || first != 42 {
		t.Fatalf("unexpected first call: val=%d shared=%v err=%v", first, shared, err)
	}
	if calls != 1 {
		t.Fatalf("unexpected call count: %d", calls)
	}
}
