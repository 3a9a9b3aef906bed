package main

import (
	"os"
	"strings"
	"testing"
)

func TestBuildRootCmdIncludesSubcommands(t *testing.T) {
	cmd := buildRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, name := range []string{"serve", "agent", "chat"} {
		if !names[name] {
			t.Fatalf("expected subcommand %q to be registered", name)
		}
	}
}

func TestBuildAgentCmdIncludesSubcommands(t *testing.T) {
	cmd := buildAgentCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, name := range []string{"add", "list", "rm"} {
		if !names[name] {
			t.Fatalf("expected agent subcommand %q to be registered", name)
		}
	}
}

func TestDefaultDBPathIsUnderHomeDir(t *testing.T) {
	path := defaultDBPath()
	if path == "" {
		t.Fatal("defaultDBPath returned empty string")
	}
	if home, err := os.UserHomeDir(); err == nil && !strings.HasPrefix(path, home) {
		t.Fatalf("defaultDBPath() = %q, want it under %q", path, home)
	}
}
