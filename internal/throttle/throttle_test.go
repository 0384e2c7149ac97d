package throttle

import (
	"context"
	"testing"
	"time"
)

func TestAllow_EnforcesBurst(t *testing.T) {
	limiter := New(10, 10)

	for i := 0; i < 10; i++ {
		if !limiter.Allow() {
			t.Fatalf("operation %d should be allowed within burst", i)
		}
	}

	if limiter.Allow() {
		t.Fatal("operation should be limited once the burst is exhausted")
	}

	// 10 ops/s replenishes one token every 100ms.
	time.Sleep(110 * time.Millisecond)

	if !limiter.Allow() {
		t.Fatal("operation should be allowed after replenishment")
	}
}

func TestWait_BlocksForToken(t *testing.T) {
	limiter := New(10, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first wait should succeed immediately: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("second wait should succeed after blocking: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed < 50*time.Millisecond || elapsed > 200*time.Millisecond {
		t.Fatalf("wait time %v outside expected range 50ms-200ms", elapsed)
	}
}

func TestWait_RespectsContext(t *testing.T) {
	limiter := New(1, 1)

	if !limiter.Allow() {
		t.Fatal("first operation should be allowed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err == nil {
		t.Fatal("Wait should fail once the context deadline passes")
	}
}

func TestZeroRate_Unlimited(t *testing.T) {
	limiter := New(0, 0)

	for i := 0; i < 1000; i++ {
		if !limiter.Allow() {
			t.Fatalf("unlimited limiter rejected operation %d", i)
		}
	}
}

func TestZeroBurst_DefaultsToRate(t *testing.T) {
	limiter := New(5, 0)

	allowed := 0
	for i := 0; i < 10; i++ {
		if limiter.Allow() {
			allowed++
		}
	}

	if allowed != 5 {
		t.Fatalf("expected burst to default to the rate (5), got %d allowed", allowed)
	}
}
