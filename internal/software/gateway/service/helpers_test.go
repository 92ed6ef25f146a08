package service

import (
	"testing"
	"time"
)

func TestFallbackExpiryOnlyFillsZeroTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 30 * time.Second

	if got := fallbackExpiry(time.Time{}, ttl, now); !got.Equal(now.Add(ttl)) {
		t.Fatalf("zero expiry: got %v, want %v", got, now.Add(ttl))
	}

	set := now.Add(12 * time.Second)
	if got := fallbackExpiry(set, ttl, now); !got.Equal(set) {
		t.Fatalf("set expiry must pass through untouched, got %v", got)
	}
}

func TestThrottleLocationEnforcesInterval(t *testing.T) {
	svc := &Service{locationInterval: 3 * time.Second}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if svc.throttleLocation("driver-1", base) {
		t.Fatal("first frame must pass")
	}
	if !svc.throttleLocation("driver-1", base.Add(time.Second)) {
		t.Fatal("frame inside the interval must be dropped")
	}
	if svc.throttleLocation("driver-1", base.Add(3*time.Second)) {
		t.Fatal("frame at the interval boundary must pass")
	}

	// a dropped frame must not advance the mark
	if !svc.throttleLocation("driver-1", base.Add(4*time.Second)) {
		t.Fatal("mark advanced by a dropped frame")
	}

	// drivers are throttled independently
	if svc.throttleLocation("driver-2", base.Add(time.Second)) {
		t.Fatal("throttle leaked across drivers")
	}
}
