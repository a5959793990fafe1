package ratelimit

import "testing"

func TestAllowWithinLimit(t *testing.T) {
	l := New(5)
	for i := 0; i < 5; i++ {
		if !l.allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.allow("1.2.3.4") {
		t.Error("request over the limit should be rejected")
	}
}

func TestAllowPerClient(t *testing.T) {
	l := New(1)
	if !l.allow("1.1.1.1") {
		t.Fatal("first client's first request should be allowed")
	}
	if !l.allow("2.2.2.2") {
		t.Error("second client should have its own bucket")
	}
	if l.allow("1.1.1.1") {
		t.Error("first client should be exhausted")
	}
}
