package cancel

import "testing"

func TestStopTripsIssuedToken(t *testing.T) {
	r := New()
	tok := r.Issue("agent-1")
	if tok.Tripped() {
		t.Fatal("freshly issued token should not be tripped")
	}
	if !r.Stop("agent-1") {
		t.Fatal("expected Stop to find a busy token")
	}
	if !tok.Tripped() {
		t.Fatal("expected token to be tripped after Stop")
	}
}

func TestStopOnUnknownAgentReturnsFalse(t *testing.T) {
	r := New()
	if r.Stop("nobody") {
		t.Fatal("expected Stop on unknown agent to report false")
	}
}

func TestIssueReplacesPriorToken(t *testing.T) {
	r := New()
	first := r.Issue("agent-1")
	second := r.Issue("agent-1")
	r.Stop("agent-1")
	if first.Tripped() {
		t.Fatal("stale prior token should not be affected")
	}
	if !second.Tripped() {
		t.Fatal("current token should be tripped")
	}
}

func TestClearMakesStopANoOp(t *testing.T) {
	r := New()
	r.Issue("agent-1")
	r.Clear("agent-1")
	if r.Stop("agent-1") {
		t.Fatal("expected Stop after Clear to report false")
	}
}
