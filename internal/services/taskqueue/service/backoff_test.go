package service

import (
	"testing"
	"time"
)

func TestBackoff_WithinJitterBounds(t *testing.T) {
	base := 30 * time.Second
	cap := 15 * time.Minute
	for retries := 1; retries <= 8; retries++ {
		d := backoff(retries, base, cap)
		if d < 0 {
			t.Fatalf("retries=%d: backoff went negative: %v", retries, d)
		}
		maxAllowed := time.Duration(float64(cap) * 1.2)
		if d > maxAllowed {
			t.Fatalf("retries=%d: backoff %v exceeds jittered cap %v", retries, d, maxAllowed)
		}
	}
}

func TestBackoff_GrowsThenCaps(t *testing.T) {
	base := 30 * time.Second
	cap := 15 * time.Minute
	first := backoff(1, base, cap)
	if first > time.Duration(float64(base)*1.2) {
		t.Fatalf("first retry backoff %v should be near base %v", first, base)
	}
	// By the time 2^(n-1) exceeds cap, every further call clamps to ~cap.
	late := backoff(10, base, cap)
	if late > time.Duration(float64(cap)*1.2) {
		t.Fatalf("late retry backoff %v should be clamped near cap %v", late, cap)
	}
}

func TestBackoff_ZeroRetriesTreatedAsOne(t *testing.T) {
	base := 30 * time.Second
	cap := 15 * time.Minute
	d := backoff(0, base, cap)
	if d <= 0 {
		t.Fatalf("backoff(0, ...) should behave like retries=1, got %v", d)
	}
}
