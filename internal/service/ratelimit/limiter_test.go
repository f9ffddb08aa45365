package ratelimit

import "testing"

func TestBurstThenDeny(t *testing.T) {
	l := New(0.001, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("u1") {
			t.Fatalf("request %d within burst must pass", i+1)
		}
	}
	if l.Allow("u1") {
		t.Fatalf("request beyond burst must be denied")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(0.001, 1)

	if !l.AllowUser(1) {
		t.Fatalf("first user must pass")
	}
	if l.AllowUser(1) {
		t.Fatalf("first user must be exhausted")
	}
	if !l.AllowUser(2) {
		t.Fatalf("second user has an independent bucket")
	}
	if l.Size() != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", l.Size())
	}
}
