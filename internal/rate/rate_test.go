package rate

import (
	"math"
	"testing"
	"time"
)

func TestBusy(t *testing.T) {
	var b Busy
	if got := b.Observe(100, 1000); got != 0 {
		t.Fatalf("baseline = %v, want 0", got)
	}
	if got := b.Observe(150, 1100); got != 50 {
		t.Errorf("second = %v, want 50", got)
	}
	// Non-advancing total must not divide by zero.
	if got := b.Observe(150, 1100); got != 0 {
		t.Errorf("flat = %v, want 0", got)
	}
	// Busy going backwards clamps at 0.
	if got := b.Observe(100, 1200); got != 0 {
		t.Errorf("backwards = %v, want 0", got)
	}
	if got := b.Observe(400, 1300); got != 100 {
		t.Errorf("saturated = %v, want 100", got)
	}
}

func TestWall(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	var w Wall
	if got := w.Observe(10, start); got != 0 {
		t.Fatalf("baseline = %v, want 0", got)
	}
	if got := w.Observe(11, start.Add(2*time.Second)); got != 50 {
		t.Errorf("half a core = %v, want 50", got)
	}
	if got := w.Observe(15, start.Add(4*time.Second)); got != 200 {
		t.Errorf("two cores = %v, want 200", got)
	}
	if got := w.Observe(1, start.Add(6*time.Second)); got != 0 {
		t.Errorf("reused pid = %v, want 0", got)
	}
}

func TestCounter(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	tests := []struct {
		name   string
		v      uint64
		at     time.Duration
		want   float64
		wantOK bool
	}{
		{"baseline", 1000, 0, 0, false},
		{"steady", 3000, 2 * time.Second, 1000, true},
		{"no elapsed time", 4000, 2 * time.Second, 0, false},
		{"counter reset", 10, 3 * time.Second, 0, true},
		{"after reset", 510, 4 * time.Second, 500, true},
	}

	var c Counter
	for _, tt := range tests {
		got, ok := c.Observe(tt.v, start.Add(tt.at))
		if ok != tt.wantOK || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: Observe = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}
