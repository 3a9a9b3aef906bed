// Package engine implements the Conversation Engine: the per-agent turn
// state machine (building → streaming → post-processing), eager
// delegation dispatch during streaming, and tool/delegation
// continuation recursion. Grounded on internal/agent/loop.go's phased
// streamPhase/executeToolsPhase/continuePhase shape and
// internal/multiagent/orchestrator.go's delegate-and-await idiom,
// generalised into a recursive, per-agent, depth-bounded turn loop.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/agentmesh/swarmkernel/internal/kernel/cancel"
	"github.com/agentmesh/swarmkernel/internal/kernel/eventbus"
	"github.com/agentmesh/swarmkernel/internal/kernel/history"
	"github.com/agentmesh/swarmkernel/internal/kernel/kerrors"
	"github.com/agentmesh/swarmkernel/internal/kernel/model"
	"github.com/agentmesh/swarmkernel/internal/kernel/provider"
	"github.com/agentmesh/swarmkernel/internal/kernel/registry"
	"github.com/agentmesh/swarmkernel/internal/kernel/taskqueue"
)

// Subscriber receives assistant text chunks and engine-injected section
// markers. The engine assumes it never blocks.
type Subscriber func(text string)

// Deps collects the Engine's collaborators.
type Deps struct {
	Registry *registry.Registry
	History  *history.Recorder
	Bus      *eventbus.Bus
	Queue    *taskqueue.Queue
	Cancels  *cancel.Registry
}

// Config tunes engine-wide limits and defaults.
type Config struct {
	// ProjectsBase is the directory under which agent project bindings
	// resolve (ProjectName joined onto this). Default "/projects".
	ProjectsBase string
	// MaxDepth bounds recursion (tool/delegation continuations). Default 5.
	MaxDepth int
}

func (c Config) withDefaults() Config {
	if c.ProjectsBase == "" {
		c.ProjectsBase = "/projects"
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 5
	}
	return c
}

// Engine runs conversation turns for agents held by a shared Registry.
type Engine struct {
	registry *registry.Registry
	history  *history.Recorder
	bus      *eventbus.Bus
	queue    *taskqueue.Queue
	cancels  *cancel.Registry

	projectsBase string
	maxDepth     int

	backendFor func(model.Agent) (provider.Backend, error)
}

// New constructs an Engine from cfg and deps.
func New(cfg Config, deps Deps) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		registry:     deps.Registry,
		history:      deps.History,
		bus:          deps.Bus,
		queue:        deps.Queue,
		cancels:      deps.Cancels,
		projectsBase: cfg.ProjectsBase,
		maxDepth:     cfg.MaxDepth,
		backendFor:   provider.ForAgent,
	}
}

// Run starts a fresh, user-visible turn for agentID: issues a
// cancellation token, marks the agent busy, and returns the turn's final
// text. This is the outermost entrypoint — used for direct chat,
// broadcast members, handoff targets, todo execution, and delegation
// targets alike, since each of those is the start of its own cancellable
// chain for that agent, whatever its recursion depth.
func (e *Engine) Run(ctx context.Context, agentID, message string, onChunk Subscriber) (string, error) {
	return e.runEntry(ctx, agentID, message, 0, model.ProvenancePlain, nil, onChunk)
}

func (e *Engine) runEntry(ctx context.Context, agentID, message string, depth int, provenance model.Provenance, payload *model.HistoryPayload, onChunk Subscriber) (string, error) {
	token := e.cancels.Issue(agentID)
	defer e.cancels.Clear(agentID)

	if _, err := e.registry.UpdateRuntime(agentID, func(a *model.Agent) {
		a.Status = model.StatusBusy
	}); err != nil {
		return "", err
	}

	resp, err := e.doTurn(ctx, agentID, message, depth, provenance, payload, onChunk, token)

	if err != nil {
		if errors.Is(err, kerrors.ErrCancelledByUser) {
			e.registry.UpdateRuntime(agentID, func(a *model.Agent) {
				a.Status = model.StatusIdle
				a.Thinking = ""
			})
			e.bus.Publish(ctx, eventbus.KindStopped, agentID)
			e.registry.Persist(ctx, agentID)
			return "", err
		}
		e.registry.UpdateRuntime(agentID, func(a *model.Agent) {
			a.Status = model.StatusError
		})
		e.history.RecordError(agentID)
		e.registry.Persist(ctx, agentID)
		return "", err
	}

	e.registry.UpdateRuntime(agentID, func(a *model.Agent) {
		a.Status = model.StatusIdle
		a.Thinking = ""
	})
	// One increment per completed outermost turn, however many
	// tool-result/delegation-result continuations doTurn recursed through
	// to get here — those are the same turn, not new ones.
	e.history.CompleteTurn(agentID)
	e.registry.Persist(ctx, agentID)
	return resp, nil
}

// doTurn runs one pass of building → streaming → post-processing for
// agentID, reusing token across any same-agent recursive continuation
// (tool-result, delegation-result) rather than reissuing one: those
// continuations are the same logical chain, not a new outermost call.
func (e *Engine) doTurn(ctx context.Context, agentID, message string, depth int, provenance model.Provenance, payload *model.HistoryPayload, onChunk Subscriber, token *cancel.Token) (string, error) {
	agent, err := e.registry.Raw(agentID)
	if err != nil {
		return "", err
	}

	last := e.history.Last(agentID, 50)
	messages := e.composeMessages(agent, depth, last, message)

	e.history.Append(ctx, agentID, model.HistoryEntry{
		Role:       model.RoleUser,
		Content:    message,
		Timestamp:  time.Now(),
		Provenance: provenance,
		Payload:    payload,
	})

	outcome, err := e.stream(ctx, agent, depth, messages, onChunk, token)
	if err != nil {
		return "", err
	}

	return e.postProcess(ctx, agent, depth, outcome, onChunk, token)
}
