package registry

import (
	"context"
	"testing"

	"github.com/agentmesh/swarmkernel/internal/kernel/kerrors"
	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

func TestAddRagDocThenDelete(t *testing.T) {
	r, _ := newTestRegistry()
	a := r.Create(context.Background(), model.Agent{Name: "QA"})

	doc, err := r.AddRagDoc(context.Background(), a.ID, "runbook", "steps...")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := r.Raw(a.ID)
	if len(got.RagDocs) != 1 || got.RagDocs[0].Name != "runbook" {
		t.Fatalf("expected rag doc stored, got %#v", got.RagDocs)
	}

	if err := r.DeleteRagDoc(context.Background(), a.ID, doc.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = r.Raw(a.ID)
	if len(got.RagDocs) != 0 {
		t.Fatalf("expected rag doc removed, got %#v", got.RagDocs)
	}
}

func TestDeleteRagDocUnknownIDReturnsNotFound(t *testing.T) {
	r, _ := newTestRegistry()
	a := r.Create(context.Background(), model.Agent{Name: "QA"})

	if err := r.DeleteRagDoc(context.Background(), a.ID, "missing"); err != kerrors.ErrRagDocNotFound {
		t.Fatalf("expected ErrRagDocNotFound, got %v", err)
	}
}
