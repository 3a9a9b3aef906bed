package registry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agentmesh/swarmkernel/internal/kernel/eventbus"
	"github.com/agentmesh/swarmkernel/internal/kernel/kerrors"
	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

// Todos are append/toggle/delete under the registry's own per-agent
// mutation path, not through Update/Fields: two concurrent callers
// appending a todo to the same agent must never race a read-modify-write
// of the whole slice, so each operation below is atomic under the
// registry lock instead of being expressed as a whole-slice replacement.

// AddTodo appends a new pending todo with text to agentID's list.
func (r *Registry) AddTodo(ctx context.Context, agentID, text string) (model.Todo, error) {
	todo := model.Todo{ID: uuid.NewString(), Text: text, CreatedAt: time.Now()}
	a, err := r.UpdateRuntime(agentID, func(a *model.Agent) {
		a.Todos = append(a.Todos, todo)
	})
	if err != nil {
		return model.Todo{}, err
	}
	r.persist(ctx, a)
	r.bus.Publish(ctx, eventbus.KindAgentUpdated, a.Sanitise())
	return todo, nil
}

// ToggleTodo flips todoID's done flag. Composed with itself, it is the
// identity.
func (r *Registry) ToggleTodo(ctx context.Context, agentID, todoID string) error {
	found := false
	a, err := r.UpdateRuntime(agentID, func(a *model.Agent) {
		for i := range a.Todos {
			if a.Todos[i].ID != todoID {
				continue
			}
			found = true
			a.Todos[i].Done = !a.Todos[i].Done
			if a.Todos[i].Done {
				now := time.Now()
				a.Todos[i].CompletedAt = &now
			} else {
				a.Todos[i].CompletedAt = nil
			}
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return kerrors.ErrTodoNotFound
	}
	r.persist(ctx, a)
	r.bus.Publish(ctx, eventbus.KindAgentUpdated, a.Sanitise())
	return nil
}

// CompleteTodo unconditionally marks todoID done with a completion
// timestamp, used by the Conversation Engine when a delegation closure
// resolves (as opposed to a user-driven toggle).
func (r *Registry) CompleteTodo(ctx context.Context, agentID, todoID string) error {
	found := false
	a, err := r.UpdateRuntime(agentID, func(a *model.Agent) {
		for i := range a.Todos {
			if a.Todos[i].ID != todoID {
				continue
			}
			found = true
			a.Todos[i].Done = true
			now := time.Now()
			a.Todos[i].CompletedAt = &now
		}
	})
	if err != nil {
		return err
	}
	if !found {
		return kerrors.ErrTodoNotFound
	}
	r.persist(ctx, a)
	r.bus.Publish(ctx, eventbus.KindAgentUpdated, a.Sanitise())
	return nil
}

// DeleteTodo removes todoID from agentID's list.
func (r *Registry) DeleteTodo(ctx context.Context, agentID, todoID string) error {
	found := false
	a, err := r.UpdateRuntime(agentID, func(a *model.Agent) {
		kept := a.Todos[:0]
		for _, t := range a.Todos {
			if t.ID == todoID {
				found = true
				continue
			}
			kept = append(kept, t)
		}
		a.Todos = kept
	})
	if err != nil {
		return err
	}
	if !found {
		return kerrors.ErrTodoNotFound
	}
	r.persist(ctx, a)
	r.bus.Publish(ctx, eventbus.KindAgentUpdated, a.Sanitise())
	return nil
}
