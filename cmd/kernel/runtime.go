// Package main provides the CLI entry point for the agent orchestration
// kernel: a server command exposing the realtime channel, and one-shot
// agent and chat commands operating against the same durable store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentmesh/swarmkernel/internal/kernel/cancel"
	"github.com/agentmesh/swarmkernel/internal/kernel/config"
	"github.com/agentmesh/swarmkernel/internal/kernel/engine"
	"github.com/agentmesh/swarmkernel/internal/kernel/eventbus"
	"github.com/agentmesh/swarmkernel/internal/kernel/history"
	"github.com/agentmesh/swarmkernel/internal/kernel/registry"
	"github.com/agentmesh/swarmkernel/internal/kernel/store"
	"github.com/agentmesh/swarmkernel/internal/kernel/taskqueue"
)

// runtime bundles every collaborator a CLI command needs, each command
// constructing and tearing one down around a single operation.
type runtime struct {
	cfg      config.Config
	logger   *slog.Logger
	sqlStore *store.SQLiteStore
	bus      *eventbus.Bus
	registry *registry.Registry
	history  *history.Recorder
	engine   *engine.Engine
}

func defaultDBPath() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(dir, ".kernel", "agents.db")
	}
	return "kernel-agents.db"
}

// openRuntime loads configuration from configPath, opens the SQLite agent
// store (creating its parent directory if needed), and wires the full
// kernel around it. Callers must defer Close.
func openRuntime(configPath, dbPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := cfg.Logger()

	if dbPath == "" {
		dbPath = defaultDBPath()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	sqlStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open agent store: %w", err)
	}

	bus := eventbus.New()
	bus.Subscribe(eventbus.NewPrometheusSink(prometheus.DefaultRegisterer))

	reg := registry.New(bus, sqlStore)
	if err := reg.Load(context.Background()); err != nil {
		sqlStore.Close()
		return nil, fmt.Errorf("load agents: %w", err)
	}

	rec := history.New(reg)
	queue := taskqueue.New()
	cancels := cancel.New()

	if err := applyDispatcherConfig(cfg.Dispatcher); err != nil {
		logger.Warn("invalid dispatcher blocklist config, continuing without it", "error", err)
	}

	eng := engine.New(engine.Config{
		ProjectsBase: cfg.Dispatcher.ProjectsBase,
		MaxDepth:     cfg.Dispatcher.MaxDepth,
	}, engine.Deps{
		Registry: reg,
		History:  rec,
		Bus:      bus,
		Queue:    queue,
		Cancels:  cancels,
	})

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		sqlStore: sqlStore,
		bus:      bus,
		registry: reg,
		history:  rec,
		engine:   eng,
	}, nil
}

func (r *runtime) Close() error {
	return r.sqlStore.Close()
}
