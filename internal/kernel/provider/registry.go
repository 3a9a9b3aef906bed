package provider

import (
	"fmt"

	"github.com/agentmesh/swarmkernel/internal/kernel/model"
)

// ForAgent constructs the Backend bound to an agent's configured provider,
// model, endpoint, and credential.
func ForAgent(a model.Agent) (Backend, error) {
	switch a.Provider {
	case model.ProviderAnthropic:
		return NewAnthropicBackend(a.Credential, a.Endpoint, a.Model), nil
	case model.ProviderOpenAIChat, model.ProviderOpenAICompatible:
		return NewOpenAIChatBackend(a.Credential, a.Endpoint, a.Model), nil
	case model.ProviderOpenAICompletion, model.ProviderLocalChat:
		return NewCompletionBackend(a.Credential, a.Endpoint, a.Model), nil
	default:
		return nil, fmt.Errorf("provider: unknown kind %q", a.Provider)
	}
}
