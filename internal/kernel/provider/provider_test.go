package provider

import (
	"testing"

	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

func TestSplitSystemSeparatesLeadingSystemMessages(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "be terse"},
		{Role: RoleSystem, Content: "be correct"},
		{Role: RoleUser, Content: "hello"},
	}
	system, rest := splitSystem(messages)
	if system != "be terse\nbe correct" {
		t.Fatalf("system = %q", system)
	}
	if len(rest) != 1 || rest[0].Content != "hello" {
		t.Fatalf("rest = %#v", rest)
	}
}

func TestSplitSystemNoSystemMessages(t *testing.T) {
	messages := []Message{{Role: RoleUser, Content: "hi"}}
	system, rest := splitSystem(messages)
	if system != "" {
		t.Fatalf("expected no system prefix, got %q", system)
	}
	if len(rest) != 1 {
		t.Fatalf("rest = %#v", rest)
	}
}

func TestJoinPromptFormatsRolePrefixes(t *testing.T) {
	messages := []Message{
		{Role: RoleSystem, Content: "you are QA"},
		{Role: RoleUser, Content: "run the tests"},
		{Role: RoleAssistant, Content: "done"},
	}
	got := joinPrompt(messages)
	want := "System: you are QA\nHuman: run the tests\nAssistant: done\nAssistant:"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestForAgentSelectsBackendByProviderKind(t *testing.T) {
	cases := []struct {
		kind model.ProviderKind
	}{
		{model.ProviderAnthropic},
		{model.ProviderOpenAIChat},
		{model.ProviderOpenAICompatible},
		{model.ProviderOpenAICompletion},
		{model.ProviderLocalChat},
	}
	for _, c := range cases {
		agent := model.Agent{Provider: c.kind, Model: "test-model", Credential: "key"}
		backend, err := ForAgent(agent)
		if err != nil {
			t.Fatalf("provider %q: unexpected error: %v", c.kind, err)
		}
		if backend == nil {
			t.Fatalf("provider %q: nil backend", c.kind)
		}
	}
}

func TestForAgentRejectsUnknownProvider(t *testing.T) {
	_, err := ForAgent(model.Agent{Provider: model.ProviderKind("bogus")})
	if err == nil {
		t.Fatal("expected error for unknown provider kind")
	}
}
