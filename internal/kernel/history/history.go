// Package history implements the per-agent conversation history and
// metrics recorder: append-only history with truncate/clear, and
// fire-and-forget counter updates, both routed through the Agent
// Registry's runtime-mutation path.
package history

import (
	"context"
	"time"

	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

// agentMutator is the subset of registry.Registry the recorder needs.
// Accepting an interface rather than the concrete type keeps this
// package free of a dependency cycle with registry.
type agentMutator interface {
	UpdateRuntime(id string, mutate func(a *model.Agent)) (model.Agent, error)
	Raw(id string) (model.Agent, error)
}

// Recorder appends HistoryEntry records and updates Metrics for agents
// held by the given registry.
type Recorder struct {
	agents agentMutator
}

// New builds a Recorder over agents.
func New(agents agentMutator) *Recorder {
	return &Recorder{agents: agents}
}

// Append adds entry to agentID's history. History append is ordered per
// agent by virtue of the registry's own lock serialising UpdateRuntime
// calls. This does not touch TotalMessages: a turn may
// append many entries (tool-result and delegation-result continuations
// each add one), and that counter tracks completed turns, not entries.
// Use CompleteTurn for that.
func (r *Recorder) Append(_ context.Context, agentID string, entry model.HistoryEntry) (model.Agent, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return r.agents.UpdateRuntime(agentID, func(a *model.Agent) {
		a.History = append(a.History, entry)
		a.Metrics.LastActive = entry.Timestamp
	})
}

// CompleteTurn increments TotalMessages by exactly one. Callers invoke
// this once per successfully completed outermost turn, never for a
// recursive tool-result or delegation-result continuation of the same
// turn.
func (r *Recorder) CompleteTurn(agentID string) {
	_, _ = r.agents.UpdateRuntime(agentID, func(a *model.Agent) {
		a.Metrics.TotalMessages++
	})
}

// Last returns up to n of agentID's most recent history entries, for
// prompt composition. Returns nil if the agent is unknown.
func (r *Recorder) Last(agentID string, n int) []model.HistoryEntry {
	a, err := r.agents.Raw(agentID)
	if err != nil {
		return nil
	}
	if len(a.History) <= n {
		return a.History
	}
	return a.History[len(a.History)-n:]
}

// TruncateHistory drops every entry with index > afterIndex: the
// "restart from here" primitive exposed to callers. A negative
// afterIndex clears the history entirely.
func (r *Recorder) TruncateHistory(agentID string, afterIndex int) (model.Agent, error) {
	return r.agents.UpdateRuntime(agentID, func(a *model.Agent) {
		if afterIndex < 0 {
			a.History = nil
			return
		}
		if afterIndex+1 < len(a.History) {
			a.History = a.History[:afterIndex+1]
		}
	})
}

// ClearHistory empties agentID's history. Idempotent.
func (r *Recorder) ClearHistory(agentID string) (model.Agent, error) {
	return r.agents.UpdateRuntime(agentID, func(a *model.Agent) {
		a.History = nil
	})
}

// RecordTokens adds input/output token counts to agentID's metrics,
// fire-and-forget: it returns nothing and an unknown agent is ignored.
// The engine calls it inline when a stream's Done chunk arrives.
func (r *Recorder) RecordTokens(agentID string, input, output int) {
	_, _ = r.agents.UpdateRuntime(agentID, func(a *model.Agent) {
		a.Metrics.TotalInputTok += input
		a.Metrics.TotalOutputTok += output
	})
}

// RecordError increments agentID's error counter.
func (r *Recorder) RecordError(agentID string) {
	_, _ = r.agents.UpdateRuntime(agentID, func(a *model.Agent) {
		a.Metrics.ErrorCount++
	})
}
