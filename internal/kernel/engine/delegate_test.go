package engine

import (
	"strings"
	"testing"

	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

func TestFormatDelegationResultsHintsRetryOnFailure(t *testing.T) {
	out := formatDelegationResults([]model.DelegationResult{
		{TargetName: "Worker", Error: "Agent \"Worker\" not found in swarm"},
	})
	if !strings.Contains(out, "ERROR: Agent \"Worker\" not found") {
		t.Fatalf("missing error line: %s", out)
	}
	if !strings.Contains(out, "Decide whether to retry, reassign, or adapt your plan") {
		t.Fatalf("missing retry/reassign hint on failure: %s", out)
	}
}

func TestFormatDelegationResultsHintsSynthesizeOnSuccess(t *testing.T) {
	out := formatDelegationResults([]model.DelegationResult{
		{TargetName: "Worker", Response: "done"},
	})
	if !strings.Contains(out, "- Worker: done") {
		t.Fatalf("missing response line: %s", out)
	}
	if !strings.Contains(out, "Synthesize these results") {
		t.Fatalf("missing synthesis hint on success: %s", out)
	}
	if strings.Contains(out, "retry") {
		t.Fatalf("should not hint retry when nothing failed: %s", out)
	}
}
