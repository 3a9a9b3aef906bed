package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/agentmesh/swarmkernel/internal/kernel/eventbus"
	"github.com/agentmesh/swarmkernel/internal/kernel/kerrors"
	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

// BroadcastResult is one agent's outcome from a Broadcast call.
type BroadcastResult struct {
	AgentID   string
	AgentName string
	Response  string
	Err       error
}

// Broadcast sends message to every agent in the swarm concurrently,
// bypassing the per-agent task queue since each agent's own turn is
// already serialized against itself by Run/runEntry.
func (e *Engine) Broadcast(ctx context.Context, message string) []BroadcastResult {
	agents := e.registry.List()
	results := make([]BroadcastResult, len(agents))

	var wg sync.WaitGroup
	for i, a := range agents {
		wg.Add(1)
		go func(i int, a model.Sanitised) {
			defer wg.Done()
			resp, err := e.Run(ctx, a.ID, message, nil)
			results[i] = BroadcastResult{AgentID: a.ID, AgentName: a.Name, Response: resp, Err: err}
		}(i, a)
	}
	wg.Wait()
	return results
}

// Handoff builds a context message from source's recent history and
// starts a fresh turn on targetName, as if the user had addressed the
// target directly.
func (e *Engine) Handoff(ctx context.Context, sourceID, targetName, note string, onChunk Subscriber) (string, error) {
	source, err := e.registry.Raw(sourceID)
	if err != nil {
		return "", err
	}
	target, ok := e.registry.ByName(targetName, sourceID)
	if !ok {
		return "", kerrors.ErrAgentNotFound
	}

	recent := e.history.Last(sourceID, 10)
	var transcript strings.Builder
	for _, h := range recent {
		transcript.WriteString(fmt.Sprintf("%s: %s\n", h.Role, h.Content))
	}

	message := fmt.Sprintf("[HANDOFF from %s]: %s\n\n--- Recent conversation ---\n%s", source.Name, note, transcript.String())

	e.bus.Publish(ctx, eventbus.KindHandoff, map[string]any{
		"source": sourceID,
		"target": target.ID,
	})

	return e.Run(ctx, target.ID, message, onChunk)
}

// ExecuteTodo sends agentID's todoID checklist text through Run as a user
// message, marking it complete once the turn succeeds.
func (e *Engine) ExecuteTodo(ctx context.Context, agentID, todoID string, onChunk Subscriber) (string, error) {
	agent, err := e.registry.Raw(agentID)
	if err != nil {
		return "", err
	}
	var text string
	found := false
	for _, t := range agent.Todos {
		if t.ID == todoID {
			text = t.Text
			found = true
			break
		}
	}
	if !found {
		return "", kerrors.ErrTodoNotFound
	}

	resp, err := e.Run(ctx, agentID, text, onChunk)
	if err != nil {
		return resp, err
	}
	e.registry.CompleteTodo(ctx, agentID, todoID)
	return resp, nil
}

// TodoRunResult is one todo's outcome from ExecuteAllTodos.
type TodoRunResult struct {
	TodoID   string
	Response string
	Err      error
}

// ExecuteAllTodos runs every pending (not-done) todo on agentID in order,
// sequentially, tolerating individual failures so one bad todo does not
// block the rest.
func (e *Engine) ExecuteAllTodos(ctx context.Context, agentID string) []TodoRunResult {
	agent, err := e.registry.Raw(agentID)
	if err != nil {
		return nil
	}

	var results []TodoRunResult
	for _, t := range agent.Todos {
		if t.Done {
			continue
		}
		resp, err := e.ExecuteTodo(ctx, agentID, t.ID, nil)
		results = append(results, TodoRunResult{TodoID: t.ID, Response: resp, Err: err})
	}
	return results
}

// Stop trips agentID's cancellation token, if a turn is in flight.
// runEntry's own error path handles the status reset and agent:stopped
// publication once the turn observes the trip and unwinds.
func (e *Engine) Stop(agentID string) bool {
	return e.cancels.Stop(agentID)
}
