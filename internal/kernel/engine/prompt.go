package engine

import (
	"fmt"
	"strings"

	"github.com/agentmesh/swarmkernel/internal/kernel/model"
	"github.com/agentmesh/swarmkernel/internal/kernel/provider"
)

const historyWindow = 50

// composeMessages builds the provider message list for one turn: a
// system message carrying everything but the conversation itself
// (instructions, leader roster, RAG docs, todos, project/tool-vocabulary
// docs), followed by the agent's recent history, followed by the
// current message.
func (e *Engine) composeMessages(agent model.Agent, depth int, last []model.HistoryEntry, message string) []provider.Message {
	var system strings.Builder
	system.WriteString(agent.Instructions)

	if agent.Leader && depth == 0 {
		system.WriteString("\n\n")
		system.WriteString(e.leaderRoster(agent))
	}

	for _, doc := range agent.RagDocs {
		system.WriteString(fmt.Sprintf("\n\n--- %s ---\n%s", doc.Name, doc.Content))
	}

	if len(agent.Todos) > 0 {
		system.WriteString("\n\n--- Todos ---\n")
		for _, t := range agent.Todos {
			box := "[ ]"
			if t.Done {
				box = "[x]"
			}
			system.WriteString(fmt.Sprintf("%s %s\n", box, t.Text))
		}
	}

	if agent.ProjectName != "" {
		system.WriteString("\n\n--- Project context ---\n")
		system.WriteString(fmt.Sprintf("Bound project: %s\n\n", agent.ProjectName))
		system.WriteString(toolVocabulary)
	}

	messages := make([]provider.Message, 0, len(last)+2)
	messages = append(messages, provider.Message{Role: provider.RoleSystem, Content: system.String()})

	if len(last) > historyWindow {
		last = last[len(last)-historyWindow:]
	}
	for _, h := range last {
		messages = append(messages, provider.Message{Role: providerRole(h.Role), Content: h.Content})
	}

	messages = append(messages, provider.Message{Role: provider.RoleUser, Content: message})
	return messages
}

func providerRole(r model.Role) provider.Role {
	switch r {
	case model.RoleAssistant:
		return provider.RoleAssistant
	case model.RoleSystem:
		return provider.RoleSystem
	default:
		return provider.RoleUser
	}
}

// leaderRoster enumerates every other agent by name, role, and
// description, plus the @delegate syntax instruction, appended only at
// the top of the recursion for a leader.
func (e *Engine) leaderRoster(self model.Agent) string {
	var sb strings.Builder
	sb.WriteString("--- Swarm roster ---\n")
	for _, other := range e.registry.List() {
		if other.ID == self.ID {
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", other.Name, other.Role, other.Description))
	}
	sb.WriteString("\nTo delegate a task, write @delegate(AgentName, \"task description\") anywhere in your response. ")
	sb.WriteString("Handle @report_error escalations from specialists by summarising the problem for the user.\n")
	return sb.String()
}
