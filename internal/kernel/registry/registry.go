// Package registry implements the in-memory Agent Registry: an id→Agent
// map with read-through persistence, whitelisted updates, sanitised
// reads, and agent:* event publication on every mutation.
package registry

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentmesh/swarmkernel/internal/kernel/eventbus"
	"github.com/agentmesh/swarmkernel/internal/kernel/kerrors"
	"github.com/agentmesh/swarmkernel/internal/kernel/model"
	"github.com/agentmesh/swarmkernel/internal/kernel/store"
)

// Registry holds the live set of agents. The zero value is not usable;
// construct with New.
type Registry struct {
	bus   *eventbus.Bus
	store store.AgentStore // nil is valid: in-memory, no durability

	mu     sync.RWMutex
	agents map[string]model.Agent
	// order records agent IDs in registration order (load order at
	// startup, then creation order), giving ByName a deterministic
	// tiebreak instead of Go's randomized map iteration.
	order []string
}

// New constructs an empty Registry. A nil store is tolerated.
func New(bus *eventbus.Bus, st store.AgentStore) *Registry {
	return &Registry{bus: bus, store: st, agents: map[string]model.Agent{}}
}

// Load populates the registry from the persistence collaborator, if any,
// resetting every loaded agent to idle with a cleared thinking buffer.
// Call once at startup, before serving any request.
func (r *Registry) Load(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	records, err := r.store.LoadAll(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		var a model.Agent
		if err := json.Unmarshal(rec.Blob, &a); err != nil {
			continue
		}
		a.Status = model.StatusIdle
		a.Thinking = ""
		r.agents[a.ID] = a
		r.order = append(r.order, a.ID)
	}
	return nil
}

// Create registers a new agent, assigning it an id and timestamps, and
// publishes agent:created.
func (r *Registry) Create(ctx context.Context, a model.Agent) model.Sanitised {
	now := time.Now()
	a.ID = uuid.NewString()
	a.Status = model.StatusIdle
	a.CreatedAt = now
	a.UpdatedAt = now

	r.mu.Lock()
	r.agents[a.ID] = a
	r.order = append(r.order, a.ID)
	r.mu.Unlock()

	r.persist(ctx, a)
	r.bus.Publish(ctx, eventbus.KindAgentCreated, a.Sanitise())
	return a.Sanitise()
}

// Get returns the sanitised view of agentID.
func (r *Registry) Get(id string) (model.Sanitised, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	if !ok {
		return model.Sanitised{}, kerrors.ErrAgentNotFound
	}
	return a.Sanitise(), nil
}

// get returns the unsanitised record, for internal kernel use (e.g. the
// Conversation Engine, which needs the real credential).
func (r *Registry) get(id string) (model.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	if !ok {
		return model.Agent{}, kerrors.ErrAgentNotFound
	}
	return a, nil
}

// Raw exposes the unsanitised record for trusted internal callers.
func (r *Registry) Raw(id string) (model.Agent, error) {
	return r.get(id)
}

// List returns every agent, sanitised, in no particular order.
func (r *Registry) List() []model.Sanitised {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Sanitised, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a.Sanitise())
	}
	return out
}

// ByName resolves an agent by case-insensitive name, excluding
// excludeID, used by delegation target resolution. Name collisions are
// broken deterministically by registration order (first loaded, then
// first created), not by map iteration order.
func (r *Registry) ByName(name, excludeID string) (model.Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if id == excludeID {
			continue
		}
		a, ok := r.agents[id]
		if !ok {
			continue
		}
		if strings.EqualFold(a.Name, name) {
			return a, true
		}
	}
	return model.Agent{}, false
}

// Update mutates agentID's configuration fields in fields, rejecting any
// attempt to change runtime state through this path, and publishes
// agent:updated.
func (r *Registry) Update(ctx context.Context, id string, fields Fields) (model.Sanitised, error) {
	r.mu.Lock()
	a, ok := r.agents[id]
	if !ok {
		r.mu.Unlock()
		return model.Sanitised{}, kerrors.ErrAgentNotFound
	}
	fields.applyTo(&a)
	a.UpdatedAt = time.Now()
	r.agents[id] = a
	r.mu.Unlock()

	r.persist(ctx, a)
	r.bus.Publish(ctx, eventbus.KindAgentUpdated, a.Sanitise())
	return a.Sanitise(), nil
}

// UpdateRuntime mutates status/thinking/metrics/history — the fields
// Update refuses to touch — for use by the Conversation Engine only. It
// does not publish agent:updated; callers publish their own more
// specific event (agent:status, agent:thinking, ...).
func (r *Registry) UpdateRuntime(id string, mutate func(a *model.Agent)) (model.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[id]
	if !ok {
		return model.Agent{}, kerrors.ErrAgentNotFound
	}
	mutate(&a)
	r.agents[id] = a
	return a, nil
}

// Delete removes agentID and publishes agent:deleted.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	_, ok := r.agents[id]
	delete(r.agents, id)
	if ok {
		for i, existing := range r.order {
			if existing == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()
	if !ok {
		return kerrors.ErrAgentNotFound
	}

	if r.store != nil {
		_ = r.store.Delete(ctx, id)
	}
	r.bus.Publish(ctx, eventbus.KindAgentDeleted, id)
	return nil
}

// Persist writes id's current record through to the store, if any. Used
// after a status/metrics transition the caller wants durable (error,
// completion) without exposing the write path used by Create/Update.
func (r *Registry) Persist(ctx context.Context, id string) {
	a, err := r.get(id)
	if err != nil {
		return
	}
	r.persist(ctx, a)
}

func (r *Registry) persist(ctx context.Context, a model.Agent) {
	if r.store == nil {
		return
	}
	blob, err := json.Marshal(a)
	if err != nil {
		return
	}
	go r.store.Save(ctx, store.StoredAgent{
		ID: a.ID, Blob: blob, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	})
}
