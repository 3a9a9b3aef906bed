package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentmesh/swarmkernel/internal/kernel/delegation"
	"github.com/agentmesh/swarmkernel/internal/kernel/eventbus"
	"github.com/agentmesh/swarmkernel/internal/kernel/model"
	"github.com/agentmesh/swarmkernel/internal/kernel/taskqueue"
)

// delegationJob tracks one in-flight @delegate dispatch: result is
// mutated in place by the enqueued closure once the target's turn
// resolves, and future is nil when the target could not be resolved (so
// there is nothing to wait on).
type delegationJob struct {
	result *model.DelegationResult
	future *taskqueue.Future
}

// dispatchDelegations re-parses text for @delegate commands and starts
// any that weren't already started, advancing detected past the last
// index seen. Safe to call repeatedly against a growing text as the
// stream progresses.
func (e *Engine) dispatchDelegations(ctx context.Context, leader model.Agent, depth int, text string, detected *int, jobs *[]*delegationJob, onChunk Subscriber) {
	parsed := delegation.Parse(text)
	for i := *detected; i < len(parsed); i++ {
		job := e.startDelegation(ctx, leader, depth, parsed[i], onChunk)
		*jobs = append(*jobs, job)
	}
	*detected = len(parsed)
}

// startDelegation resolves d's target, records a todo on it, and enqueues
// its turn on the target's own lane so concurrent delegations to
// different agents run in parallel while same-target delegations
// serialize.
func (e *Engine) startDelegation(ctx context.Context, leader model.Agent, depth int, d model.Delegation, onChunk Subscriber) *delegationJob {
	e.bus.Publish(ctx, eventbus.KindDelegation, map[string]any{
		"leader": leader.ID,
		"target": d.TargetName,
		"task":   d.Task,
	})
	if onChunk != nil {
		onChunk(fmt.Sprintf("\n\n--- Delegating to %s ---\n", d.TargetName))
	}

	target, ok := e.registry.ByName(d.TargetName, leader.ID)
	if !ok {
		return &delegationJob{result: &model.DelegationResult{
			TargetName: d.TargetName,
			Task:       d.Task,
			Error:      fmt.Sprintf("Agent %q not found in swarm", d.TargetName),
		}}
	}

	todo, _ := e.registry.AddTodo(ctx, target.ID, fmt.Sprintf("[From %s] %s", leader.Name, d.Task))
	result := &model.DelegationResult{TargetID: target.ID, TargetName: target.Name, Task: d.Task}
	leaderName := leader.Name
	taskText := d.Task

	future := e.queue.Enqueue(target.ID, func() {
		message := fmt.Sprintf("[TASK from %s]: %s", leaderName, taskText)
		payload := &model.HistoryPayload{OriginatingAgent: leaderName}
		resp, err := e.runEntry(ctx, target.ID, message, depth+1, model.ProvenanceDelegationTask, payload, nil)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Response = resp
		}
		e.registry.CompleteTodo(ctx, target.ID, todo.ID)
	})

	return &delegationJob{result: result, future: future}
}

// awaitDelegations blocks on every job with a future and returns the
// resolved results in dispatch order.
func awaitDelegations(jobs []*delegationJob) []model.DelegationResult {
	out := make([]model.DelegationResult, 0, len(jobs))
	for _, j := range jobs {
		if j.future != nil {
			j.future.Wait()
		}
		out = append(out, *j.result)
	}
	return out
}

// formatDelegationResults builds the continuation message a leader sees
// after every dispatched delegation resolves, closing with a hint whose
// wording depends on whether any delegation failed.
func formatDelegationResults(results []model.DelegationResult) string {
	var sb strings.Builder
	sb.WriteString("[DELEGATION RESULTS]\n")

	var failed bool
	for _, r := range results {
		if r.Failed() {
			failed = true
			sb.WriteString(fmt.Sprintf("- %s: ERROR: %s\n", r.TargetName, r.Error))
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s: %s\n", r.TargetName, r.Response))
	}

	if failed {
		sb.WriteString("\nSome agents reported errors. Decide whether to retry, reassign, or adapt your plan accordingly.\n")
	} else {
		sb.WriteString("\nSynthesize these results into a response for the user.\n")
	}
	return sb.String()
}
