package feed

import (
	"testing"
	"time"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := DefaultRetryPolicy()
	want := []time.Duration{
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}
	for i, w := range want {
		if got := p.Delay(i + 1); got != w {
			t.Errorf("Delay(%d) = %v, want %v", i+1, got, w)
		}
	}
	if got := p.Delay(0); got != 500*time.Millisecond {
		t.Errorf("attempt < 1 is treated as the first, got %v", got)
	}
}

func TestRetryPolicy_Exhausted(t *testing.T) {
	if DefaultRetryPolicy().Exhausted(1000) {
		t.Error("zero MaxAttempts retries forever")
	}
	p := RetryPolicy{MaxAttempts: 3}
	if p.Exhausted(3) || !p.Exhausted(4) {
		t.Error("expected exhaustion after the third attempt")
	}
}

func TestRetryPolicy_WithDefaults(t *testing.T) {
	got := RetryPolicy{MaxAttempts: 4}.withDefaults()
	want := DefaultRetryPolicy()
	want.MaxAttempts = 4
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	custom := RetryPolicy{BaseDelay: time.Second, Multiplier: 3, MaxDelay: time.Minute}
	if got := custom.withDefaults(); got != custom {
		t.Errorf("set fields must be kept, got %+v", got)
	}
}
