package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentmesh/swarmkernel/internal/kernel/cancel"
	"github.com/agentmesh/swarmkernel/internal/kernel/dispatch"
	"github.com/agentmesh/swarmkernel/internal/kernel/eventbus"
	"github.com/agentmesh/swarmkernel/internal/kernel/model"
	"github.com/agentmesh/swarmkernel/internal/kernel/toolparse"
)

// postProcess appends the turn's assistant entry and, depth permitting,
// either runs any tool calls the response contained and recurses with
// their results, or — for a leader with no tool results — awaits every
// dispatched delegation and recurses with those results. Otherwise the
// streamed text is the turn's final output.
func (e *Engine) postProcess(ctx context.Context, agent model.Agent, depth int, outcome turnOutcome, onChunk Subscriber, token *cancel.Token) (string, error) {
	e.history.Append(ctx, agent.ID, model.HistoryEntry{
		Role:      model.RoleAssistant,
		Content:   outcome.text,
		Timestamp: time.Now(),
	})

	hasProject := agent.ProjectName != ""
	if hasProject && depth < e.maxDepth {
		toolResults := e.runToolCalls(ctx, agent, outcome.text)
		if len(toolResults) > 0 {
			continuation := formatToolResults(toolResults)
			payload := &model.HistoryPayload{ToolResults: toolResults}
			return e.doTurn(ctx, agent.ID, continuation, depth+1, model.ProvenanceToolResult, payload, onChunk, token)
		}
	}
	if agent.Leader && depth < e.maxDepth {
		e.dispatchDelegations(ctx, agent, depth, outcome.text, &outcome.detected, &outcome.jobs, onChunk)
		if len(outcome.jobs) > 0 {
			results := awaitDelegations(outcome.jobs)
			continuation := formatDelegationResults(results)
			payload := &model.HistoryPayload{DelegationResults: results}
			return e.doTurn(ctx, agent.ID, continuation, depth+1, model.ProvenanceDelegationResult, payload, onChunk, token)
		}
	}

	return outcome.text, nil
}

// runToolCalls parses text for tool invocations and dispatches each
// against agent's bound project root, publishing the matching
// tool/error-report events as it goes.
func (e *Engine) runToolCalls(ctx context.Context, agent model.Agent, text string) []model.ToolResult {
	calls := toolparse.Parse(text)
	if len(calls) == 0 {
		return nil
	}

	root := filepath.Join(e.projectsBase, agent.ProjectName)
	dispatcher := dispatch.New(root)

	results := make([]model.ToolResult, 0, len(calls))
	for _, call := range calls {
		e.bus.Publish(ctx, eventbus.KindToolStart, map[string]any{"agent": agent.ID, "call": call})
		result := dispatcher.Dispatch(ctx, call)
		results = append(results, result)

		switch {
		case result.IsErrorReport:
			e.bus.Publish(ctx, eventbus.KindErrorReport, map[string]any{"agent": agent.ID, "result": result})
		case result.Success:
			e.bus.Publish(ctx, eventbus.KindToolResult, map[string]any{"agent": agent.ID, "result": result})
		default:
			e.bus.Publish(ctx, eventbus.KindToolError, map[string]any{"agent": agent.ID, "result": result})
		}
	}
	return results
}

// formatToolResults builds the continuation message an agent sees after
// its tool calls run, closing with a hint whose wording depends on
// whether the batch contains a genuine failure, an escalation, or only
// successes.
func formatToolResults(results []model.ToolResult) string {
	var sb strings.Builder
	sb.WriteString("[TOOL RESULTS]\n")

	var failed, reported bool
	for _, r := range results {
		switch {
		case r.IsErrorReport:
			reported = true
			sb.WriteString(fmt.Sprintf("- %s: escalated: %s\n", r.Name, r.Result))
		case !r.Success:
			failed = true
			sb.WriteString(fmt.Sprintf("- %s: FAILED: %s\n", r.Name, r.Error))
		default:
			sb.WriteString(fmt.Sprintf("- %s: %s\n", r.Name, r.Result))
		}
	}

	switch {
	case failed:
		sb.WriteString("\nOne or more tool calls failed. Adjust your approach or use @report_error if you cannot proceed.\n")
	case reported:
		sb.WriteString("\nAn error was escalated to you. Summarise it for the user.\n")
	default:
		sb.WriteString("\nContinue the task using these results.\n")
	}
	return sb.String()
}
