package ratelimit

import (
	"net/http"
	"testing"
	"time"
)

func TestCheckConsumesWindow(t *testing.T) {
	l := NewLimiter()
	p := Policy{Window: time.Minute, MaxRequests: 5}

	prev := p.MaxRequests
	for i := 0; i < 5; i++ {
		r := l.Check("u1:notes", p)
		if !r.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if r.Remaining >= prev {
			t.Fatalf("remaining %d should decrease below %d", r.Remaining, prev)
		}
		prev = r.Remaining
	}
	if prev != 0 {
		t.Errorf("remaining after last allowed request = %d, want 0", prev)
	}

	r := l.Check("u1:notes", p)
	if r.Allowed {
		t.Error("6th request should be denied")
	}
	if r.Remaining != 0 {
		t.Errorf("denied remaining = %d, want 0", r.Remaining)
	}
}

func TestDeniedKeepsResetTime(t *testing.T) {
	l := NewLimiter()
	p := Policy{Window: time.Minute, MaxRequests: 1}

	first := l.Check("k", p)
	denied := l.Check("k", p)
	if denied.Allowed {
		t.Fatal("second request should be denied")
	}
	if !denied.Reset.Equal(first.Reset) {
		t.Errorf("denied reset %v should match window reset %v", denied.Reset, first.Reset)
	}
}

func TestWindowReset(t *testing.T) {
	l := NewLimiter()
	now := time.Now()
	l.now = func() time.Time { return now }
	p := Policy{Window: time.Minute, MaxRequests: 3}

	for i := 0; i < 3; i++ {
		l.Check("k", p)
	}
	if r := l.Check("k", p); r.Allowed {
		t.Fatal("should be denied within window")
	}

	// Advance past the window: counter resets and the request is allowed.
	now = now.Add(time.Minute + time.Second)
	r := l.Check("k", p)
	if !r.Allowed {
		t.Fatal("should be allowed after window expires")
	}
	if r.Remaining != p.MaxRequests-1 {
		t.Errorf("remaining = %d, want %d", r.Remaining, p.MaxRequests-1)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := NewLimiter()
	p := Policy{Window: time.Minute, MaxRequests: 1}

	l.Check("u1:notes", p)
	if r := l.Check("u1:notes", p); r.Allowed {
		t.Error("u1 should be exhausted")
	}
	if r := l.Check("u2:notes", p); !r.Allowed {
		t.Error("u2 should have its own quota")
	}
	if r := l.Check("u1:transcribe", p); !r.Allowed {
		t.Error("a different endpoint class should have its own quota")
	}
}

func TestSweep(t *testing.T) {
	l := NewLimiter()
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Check("expired", Policy{Window: time.Second, MaxRequests: 5})
	l.Check("active", Policy{Window: time.Hour, MaxRequests: 5})

	now = now.Add(2 * time.Second)
	if removed := l.Sweep(); removed != 1 {
		t.Errorf("sweep removed %d entries, want 1", removed)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries["expired"]; ok {
		t.Error("expired entry should have been swept")
	}
	if _, ok := l.entries["active"]; !ok {
		t.Error("active entry should remain")
	}
}

func TestKey(t *testing.T) {
	if got := Key("user-7", "transcription"); got != "user-7:transcription" {
		t.Errorf("Key = %q", got)
	}
}

func TestSetHeaders(t *testing.T) {
	h := http.Header{}
	reset := time.Unix(1700000000, 500)
	SetHeaders(h, Policy{Window: time.Minute, MaxRequests: 30}, Result{Allowed: true, Remaining: 12, Reset: reset})

	if got := h.Get("X-RateLimit-Limit"); got != "30" {
		t.Errorf("limit header = %q", got)
	}
	if got := h.Get("X-RateLimit-Remaining"); got != "12" {
		t.Errorf("remaining header = %q", got)
	}
	// Sub-second reset times round up.
	if got := h.Get("X-RateLimit-Reset"); got != "1700000001" {
		t.Errorf("reset header = %q", got)
	}
}
