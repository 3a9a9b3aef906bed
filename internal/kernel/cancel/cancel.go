// Package cancel implements per-agent cancellation tokens. A token is
// tripped once, best-effort, and observed by the Conversation Engine at
// suspension points (stream chunk receipt, tool dispatch, delegation
// await) rather than forcibly interrupting in-flight work.
package cancel

import (
	"sync"
	"sync/atomic"
)

// Token is issued once per busy agent turn. Trip is idempotent; Tripped
// is safe to call from any goroutine.
type Token struct {
	tripped atomic.Bool
}

// Trip marks the token cancelled. Calling it more than once is a no-op.
func (t *Token) Trip() {
	t.tripped.Store(true)
}

// Tripped reports whether Trip has been called.
func (t *Token) Tripped() bool {
	return t.tripped.Load()
}

// Registry holds at most one live Token per agent id: issuing a new
// token for an id that already has one replaces it, so a stale token
// from a prior turn can never be mistaken for the current one.
type Registry struct {
	mu     sync.Mutex
	tokens map[string]*Token
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{tokens: map[string]*Token{}}
}

// Issue creates and registers a fresh Token for agentID, replacing any
// existing one. Call this when an agent turn begins.
func (r *Registry) Issue(agentID string) *Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	tok := &Token{}
	r.tokens[agentID] = tok
	return tok
}

// Clear removes agentID's token once its turn has ended, so Stop after
// completion is a harmless no-op rather than affecting a future turn.
func (r *Registry) Clear(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, agentID)
}

// Stop trips agentID's current token, if one is registered, and reports
// whether a busy turn was actually found to cancel.
func (r *Registry) Stop(agentID string) bool {
	r.mu.Lock()
	tok, ok := r.tokens[agentID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	tok.Trip()
	return true
}
