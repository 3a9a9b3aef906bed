package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/agentmesh/swarmkernel/internal/kernel/eventbus"
	"github.com/agentmesh/swarmkernel/internal/transport/wsdemo"
)

const shutdownTimeout = 5 * time.Second

func buildServeCmd() *cobra.Command {
	var (
		configPath string
		dbPath     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the realtime event channel and block until shutdown",
		Long: `serve opens the durable agent store, wires the conversation engine
around it, and exposes every event published on the bus to websocket
clients at /ws. The command blocks until SIGINT or SIGTERM, then drains
connections and closes the store.

The command blocklist's extra patterns are hot-reloaded from the config
file without a restart; other settings (listen address, provider
defaults) require one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, dbPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the SQLite agent store (default ~/.kernel/agents.db)")
	return cmd
}

func runServe(ctx context.Context, configPath, dbPath string) error {
	rt, err := openRuntime(configPath, dbPath)
	if err != nil {
		return fmt.Errorf("start runtime: %w", err)
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcherStop := make(chan struct{})
	go watchConfig(configPath, rt.logger, watcherStop)
	defer close(watcherStop)

	hub := wsdemo.New(rt.bus, eventbus.DefaultBackpressureConfig(), rt.logger)
	defer hub.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: rt.cfg.Server.Addr, Handler: mux}
	serverErr := make(chan error, 1)
	go func() {
		rt.logger.Info("serving realtime channel", "addr", rt.cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		rt.logger.Info("shutting down")
	case err := <-serverErr:
		return fmt.Errorf("serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
