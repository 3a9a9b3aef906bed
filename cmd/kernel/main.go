// Package main provides the CLI entry point for the agent orchestration
// kernel: a server command exposing the realtime event channel, and
// one-shot agent and chat commands operating against the same durable
// store.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Separated from main so tests can exercise the command tree directly.
func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "kernel",
		Short:        "Agent orchestration kernel",
		Long:         `kernel runs and drives a swarm of LLM-backed agents: creation, conversation, delegation, and handoff, all addressable over a realtime channel or one-shot CLI commands.`,
		Version:      version + " (commit: " + commit + ", built: " + date + ")",
		SilenceUsage: true,
	}

	root.AddCommand(
		buildServeCmd(),
		buildAgentCmd(),
		buildChatCmd(),
	)
	return root
}
