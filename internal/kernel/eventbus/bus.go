// Package eventbus implements the kernel's process-wide publish-only event
// surface. Publishing is non-blocking for producers; delivery is
// best-effort, unordered across kinds but ordered per kind per
// subscriber.
package eventbus

import (
	"context"
	"sync/atomic"
	"time"
)

// Kind is an event kind tag, matching the table.
type Kind string

const (
	KindAgentCreated   Kind = "agent:created"
	KindAgentUpdated   Kind = "agent:updated"
	KindAgentDeleted   Kind = "agent:deleted"
	KindAgentStatus    Kind = "agent:status"
	KindAgentThinking  Kind = "agent:thinking"
	KindStreamStart    Kind = "agent:stream:start"
	KindStreamChunk    Kind = "agent:stream:chunk"
	KindStreamEnd      Kind = "agent:stream:end"
	KindStreamError    Kind = "agent:stream:error"
	KindToolStart      Kind = "agent:tool:start"
	KindToolResult     Kind = "agent:tool:result"
	KindToolError      Kind = "agent:tool:error"
	KindDelegation     Kind = "agent:delegation"
	KindErrorReport    Kind = "agent:error:report"
	KindStopped        Kind = "agent:stopped"
	KindHandoff        Kind = "agent:handoff"
)

// Event is a published state-change notification with a JSON-shaped
// payload (events carry a kind tag and a JSON-shaped payload).
type Event struct {
	Kind      Kind
	Payload   any
	Timestamp time.Time
}

// Sink receives events. Implementations must be non-blocking (or bound
// their own blocking) and safe for concurrent use.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// Bus is a multi-producer/multi-subscriber event bus. Publish never blocks
// the caller beyond dispatching to each subscribed Sink's own Emit, which
// by contract must itself be non-blocking.
type Bus struct {
	sinks atomic.Value // []Sink
}

// New creates an empty Bus.
func New() *Bus {
	b := &Bus{}
	b.sinks.Store([]Sink{})
	return b
}

// Subscribe registers a sink. Safe to call concurrently with Publish.
func (b *Bus) Subscribe(s Sink) {
	old := b.sinks.Load().([]Sink)
	next := make([]Sink, len(old)+1)
	copy(next, old)
	next[len(old)] = s
	b.sinks.Store(next)
}

// Publish fans an event out to every subscribed sink. This
// is best-effort and ordered per-kind-per-subscriber: since each sink's
// Emit is invoked synchronously here in subscription order, and Publish
// itself is always called by the single engine goroutine that produced
// the event for a given agent/kind, per-kind ordering per subscriber
// follows from the caller's own ordering discipline.
func (b *Bus) Publish(ctx context.Context, kind Kind, payload any) {
	e := Event{Kind: kind, Payload: payload, Timestamp: time.Now()}
	for _, s := range b.sinks.Load().([]Sink) {
		s.Emit(ctx, e)
	}
}
