package engine

import (
	"context"
	"strings"

	"github.com/agentmesh/swarmkernel/internal/kernel/cancel"
	"github.com/agentmesh/swarmkernel/internal/kernel/eventbus"
	"github.com/agentmesh/swarmkernel/internal/kernel/kerrors"
	"github.com/agentmesh/swarmkernel/internal/kernel/model"
	"github.com/agentmesh/swarmkernel/internal/kernel/provider"
)

// turnOutcome carries everything the streaming loop produced, for
// post-processing to continue from: the accumulated assistant text,
// every delegation dispatched so far, and how many delegation matches
// had already been consumed (so post-processing's finalisation pass
// picks up exactly where streaming left off).
type turnOutcome struct {
	text     string
	jobs     []*delegationJob
	detected int
}

// stream opens the provider stream for agent and consumes it to
// completion, forwarding text to onChunk and the Event Bus, updating the
// thinking buffer, and eagerly dispatching delegations as a leader's
// response grows. A tripped cancellation token aborts with
// kerrors.ErrCancelledByUser.
func (e *Engine) stream(ctx context.Context, agent model.Agent, depth int, messages []provider.Message, onChunk Subscriber, token *cancel.Token) (turnOutcome, error) {
	backend, err := e.backendFor(agent)
	if err != nil {
		return turnOutcome{}, kerrors.Wrap(kerrors.KindProviderFatal, err)
	}

	ch, err := backend.Stream(ctx, messages, provider.Options{
		Temperature:     agent.Temperature,
		MaxOutputTokens: agent.MaxOutputTokens,
	})
	if err != nil {
		return turnOutcome{}, kerrors.Wrap(kerrors.KindProviderFatal, err)
	}

	e.bus.Publish(ctx, eventbus.KindStreamStart, agent.ID)

	var full strings.Builder
	var jobs []*delegationJob
	detected := 0
	canDelegate := agent.Leader && depth < e.maxDepth

	for chunk := range ch {
		if token.Tripped() {
			return turnOutcome{}, kerrors.ErrCancelledByUser
		}
		if chunk.Err != nil {
			e.bus.Publish(ctx, eventbus.KindStreamError, streamErrorPayload(agent.ID, chunk.Err.Error()))
			return turnOutcome{}, kerrors.Wrap(kerrors.KindProviderFatal, chunk.Err)
		}
		if chunk.Done {
			e.history.RecordTokens(agent.ID, chunk.InputTokens, chunk.OutputTokens)
			e.bus.Publish(ctx, eventbus.KindStreamEnd, agent.ID)
			break
		}

		full.WriteString(chunk.Delta)
		e.registry.UpdateRuntime(agent.ID, func(a *model.Agent) {
			a.Thinking = full.String()
		})
		e.bus.Publish(ctx, eventbus.KindAgentThinking, chunkPayload(agent.ID, chunk.Delta))
		if onChunk != nil {
			onChunk(chunk.Delta)
		}
		e.bus.Publish(ctx, eventbus.KindStreamChunk, chunkPayload(agent.ID, chunk.Delta))

		if canDelegate {
			e.dispatchDelegations(ctx, agent, depth, full.String(), &detected, &jobs, onChunk)
		}

		if token.Tripped() {
			return turnOutcome{}, kerrors.ErrCancelledByUser
		}
	}

	return turnOutcome{text: full.String(), jobs: jobs, detected: detected}, nil
}

func chunkPayload(agentID, text string) map[string]any {
	return map[string]any{"agent": agentID, "text": text}
}

func streamErrorPayload(agentID, message string) map[string]any {
	return map[string]any{"agent": agentID, "error": message}
}
