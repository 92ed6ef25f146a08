package offer

import (
	"testing"
	"time"
)

func TestNewRequiresIDAndExpiry(t *testing.T) {
	if _, err := New("  ", time.Now()); err != ErrBookingIDRequired {
		t.Fatalf("expected ErrBookingIDRequired, got %v", err)
	}
	if _, err := New("b-1", time.Time{}); err != ErrExpiryRequired {
		t.Fatalf("expected ErrExpiryRequired, got %v", err)
	}
}

func TestRemainingSecondsIsPureFunctionOfExpiry(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o, err := New("b-1", base.Add(30*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// recomputed per tick, not decremented: any instant gives the same answer
	cases := []struct {
		at   time.Time
		want int
	}{
		{base, 30},
		{base.Add(6 * time.Second), 24},
		{base.Add(29*time.Second + 500*time.Millisecond), 0},
		{base.Add(30 * time.Second), 0},
		{base.Add(5 * time.Minute), 0},
	}
	for _, tc := range cases {
		if got := o.RemainingSeconds(tc.at); got != tc.want {
			t.Fatalf("at %v: remaining = %d, want %d", tc.at, got, tc.want)
		}
	}
}

func TestExpiredNeverNegative(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o, _ := New("b-1", base.Add(5*time.Second))

	if o.Expired(base) {
		t.Fatal("offer should be live at creation")
	}
	if !o.Expired(base.Add(5 * time.Second)) {
		t.Fatal("offer should expire exactly at the deadline")
	}
	if got := o.RemainingSeconds(base.Add(time.Hour)); got != 0 {
		t.Fatalf("remaining seconds went negative: %d", got)
	}
}
