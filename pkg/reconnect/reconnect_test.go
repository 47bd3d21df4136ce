package reconnect

import (
	"testing"
	"time"
)

func TestBackoffDoublesUpToCap(t *testing.T) {
	b := New(Policy{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		MaxAttempts:  -1,
	})

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for i, w := range want {
		d, ok := b.Next()
		if !ok {
			t.Fatalf("attempt %d: unexpected exhaustion", i)
		}
		if d != w {
			t.Fatalf("attempt %d: want %v, got %v", i, w, d)
		}
		if b.State() != StateConnecting {
			t.Fatalf("attempt %d: state %q", i, b.State())
		}
	}
}

func TestBackoffExhaustsAfterMaxAttempts(t *testing.T) {
	b := New(Policy{MaxAttempts: 3})

	for i := 0; i < 3; i++ {
		if _, ok := b.Next(); !ok {
			t.Fatalf("attempt %d should be allowed", i)
		}
		b.Disconnected()
	}

	if _, ok := b.Next(); ok {
		t.Fatal("attempts past the limit must be refused")
	}
	if b.State() != StateError {
		t.Fatalf("expected error state, got %q", b.State())
	}

	// из error выходим только через Reset
	b.Disconnected()
	if b.State() != StateError {
		t.Fatal("error state must be sticky")
	}
	b.Reset()
	if b.State() != StateDisconnected || b.Attempt() != 0 {
		t.Fatalf("reset failed: %q attempt=%d", b.State(), b.Attempt())
	}
}

func TestConnectedResetsAttempts(t *testing.T) {
	b := New(Policy{InitialDelay: 100 * time.Millisecond, MaxAttempts: 5})

	_, _ = b.Next()
	_, _ = b.Next()
	b.Connected()

	if b.State() != StateConnected || b.Attempt() != 0 {
		t.Fatalf("connect must reset counter: %q attempt=%d", b.State(), b.Attempt())
	}

	// после успешного подключения экспонента начинается заново
	b.Disconnected()
	d, ok := b.Next()
	if !ok || d != 100*time.Millisecond {
		t.Fatalf("expected fresh initial delay, got %v ok=%v", d, ok)
	}
}

func TestDefaults(t *testing.T) {
	b := New(Policy{})

	d, ok := b.Next()
	if !ok || d != 500*time.Millisecond {
		t.Fatalf("default initial delay: %v ok=%v", d, ok)
	}
}
