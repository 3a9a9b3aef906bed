package registry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agentmesh/swarmkernel/internal/kernel/eventbus"
	"github.com/agentmesh/swarmkernel/internal/kernel/kerrors"
	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

// AddRagDoc attaches a new reference document to agentID.
func (r *Registry) AddRagDoc(ctx context.Context, agentID, name, content string) (model.RagDoc, error) {
	doc := model.RagDoc{ID: uuid.NewString(), Name: name, Content: content, CreatedAt: time.Now()}
	a, err := r.UpdateRuntime(agentID, func(a *model.Agent) {
		a.RagDocs = append(a.RagDocs, doc)
	})
	if err != nil {
		return model.RagDoc{}, err
	}
	r.persist(ctx, a)
	r.bus.Publish(ctx, eventbus.KindAgentUpdated, a.Sanitise())
	return doc, nil
}

// DeleteRagDoc removes docID from agentID's reference documents.
func (r *Registry) DeleteRagDoc(ctx context.Context, agentID, docID string) error {
	found := false
	a, err := r.UpdateRuntime(agentID, func(a *model.Agent) {
		kept := a.RagDocs[:0]
		for _, d := range a.RagDocs {
			if d.ID == docID {
				found = true
				continue
			}
			kept = append(kept, d)
		}
		a.RagDocs = kept
	})
	if err != nil {
		return err
	}
	if !found {
		return kerrors.ErrRagDocNotFound
	}
	r.persist(ctx, a)
	r.bus.Publish(ctx, eventbus.KindAgentUpdated, a.Sanitise())
	return nil
}
