package utils

import (
	"testing"
	"time"
)

func TestExponentialBackoffGrowth(t *testing.T) {
	eb := NewExponentialBackoff(100*time.Millisecond, 10*time.Second, 2.0, false)

	if got := eb.NextDelay(0); got != 100*time.Millisecond {
		t.Fatalf("attempt 0: expected 100ms, got %v", got)
	}
	if got := eb.NextDelay(1); got != 200*time.Millisecond {
		t.Fatalf("attempt 1: expected 200ms, got %v", got)
	}
	if got := eb.NextDelay(3); got != 800*time.Millisecond {
		t.Fatalf("attempt 3: expected 800ms, got %v", got)
	}
}

func TestExponentialBackoffCapped(t *testing.T) {
	eb := NewExponentialBackoff(100*time.Millisecond, time.Second, 2.0, false)
	if got := eb.NextDelay(20); got != time.Second {
		t.Fatalf("expected cap at 1s, got %v", got)
	}
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	eb := NewExponentialBackoff(100*time.Millisecond, 10*time.Second, 2.0, true)
	for i := 0; i < 100; i++ {
		d := eb.NextDelay(2)
		if d < 200*time.Millisecond || d > 600*time.Millisecond {
			t.Fatalf("jittered delay %v outside [200ms, 600ms]", d)
		}
	}
}

func TestExponentialBackoffDefaultMultiplier(t *testing.T) {
	eb := NewExponentialBackoff(100*time.Millisecond, 10*time.Second, 0, false)
	if eb.Multiplier != 2.0 {
		t.Fatalf("expected default multiplier 2.0, got %f", eb.Multiplier)
	}
}
