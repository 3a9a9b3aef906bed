// Package model defines the kernel's data model: agents, todos, reference
// documents, history entries, metrics, tool calls, tool results, and
// delegations.
package model

import "time"

// ProviderKind enumerates the model backends an Agent can be bound to.
type ProviderKind string

const (
	ProviderLocalChat        ProviderKind = "localChat"
	ProviderAnthropic        ProviderKind = "anthropic"
	ProviderOpenAIChat       ProviderKind = "openAIChat"
	ProviderOpenAICompletion ProviderKind = "openAICompletion"
	ProviderOpenAICompatible ProviderKind = "openAICompatible"
)

// Status is an agent's runtime status.
type Status string

const (
	StatusIdle  Status = "idle"
	StatusBusy  Status = "busy"
	StatusError Status = "error"
)

// Agent is a persistent configuration binding a model, an identity, an
// instruction text, a project, and runtime state.
type Agent struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Role         string       `json:"role"`
	Description  string       `json:"description"`
	Provider     ProviderKind `json:"provider"`
	Model        string       `json:"model"`
	Endpoint     string       `json:"endpoint,omitempty"`
	Credential   string       `json:"credential,omitempty"`
	Instructions string       `json:"instructions"`

	Status          Status `json:"status"`
	Temperature     float64
	MaxOutputTokens int

	Todos    []Todo        `json:"todos"`
	RagDocs  []RagDoc      `json:"rag_docs"`
	History  []HistoryEntry `json:"history"`
	Thinking string         `json:"-"`
	Metrics  Metrics        `json:"metrics"`

	ProjectName string `json:"project_name,omitempty"`
	Leader      bool   `json:"leader"`

	Icon   string `json:"icon,omitempty"`
	Colour string `json:"colour,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitised returns a copy of the agent with the credential replaced by a
// boolean presence flag, safe to publish to subscribers or callers.
type Sanitised struct {
	Agent
	HasCredential bool `json:"has_credential"`
}

// Sanitise produces the publish-safe view of an Agent.
func (a Agent) Sanitise() Sanitised {
	s := Sanitised{Agent: a, HasCredential: a.Credential != ""}
	s.Agent.Credential = ""
	return s
}

// Todo is a checklist item owned by an agent.
type Todo struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Done        bool       `json:"done"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RagDoc is a reference document owned by an agent.
type RagDoc struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Role is the author of a HistoryEntry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Provenance tags the origin of a HistoryEntry the engine itself
// constructed. A zero value means the entry came verbatim from a user.
type Provenance string

const (
	ProvenancePlain             Provenance = ""
	ProvenanceToolResult        Provenance = "tool-result"
	ProvenanceDelegationResult  Provenance = "delegation-result"
	ProvenanceDelegationTask    Provenance = "delegation-task"
)

// HistoryPayload carries the structured data behind a tagged HistoryEntry.
// Exactly the fields relevant to Provenance are populated.
type HistoryPayload struct {
	ToolResults       []ToolResult       `json:"tool_results,omitempty"`
	DelegationResults []DelegationResult `json:"delegation_results,omitempty"`
	OriginatingAgent  string             `json:"originating_agent,omitempty"`
}

// HistoryEntry is one append-only turn of conversation, represented as a
// tagged variant (a tagged variant rather than a loosely-typed payload).
type HistoryEntry struct {
	Role       Role            `json:"role"`
	Content    string          `json:"content"`
	Timestamp  time.Time       `json:"timestamp"`
	Provenance Provenance      `json:"provenance,omitempty"`
	Payload    *HistoryPayload `json:"payload,omitempty"`
}

// Metrics accumulates per-agent usage counters.
type Metrics struct {
	TotalMessages   int       `json:"total_messages"`
	TotalInputTok   int       `json:"total_input_tokens"`
	TotalOutputTok  int       `json:"total_output_tokens"`
	ErrorCount      int       `json:"error_count"`
	LastActive      time.Time `json:"last_active"`
}

// ToolName enumerates the fixed tool vocabulary.
type ToolName string

const (
	ToolReadFile    ToolName = "read_file"
	ToolWriteFile   ToolName = "write_file"
	ToolAppendFile  ToolName = "append_file"
	ToolListDir     ToolName = "list_dir"
	ToolSearchFiles ToolName = "search_files"
	ToolRunCommand  ToolName = "run_command"
	ToolReportError ToolName = "report_error"
)

// ToolCall is a request to invoke a tool, extracted from model output.
type ToolCall struct {
	Name ToolName `json:"name"`
	Args []string `json:"args"`
}

// ToolResult is the outcome of executing a ToolCall.
type ToolResult struct {
	Name          ToolName `json:"name"`
	Args          []string `json:"args"`
	Success       bool     `json:"success"`
	Result        string   `json:"result,omitempty"`
	Error         string   `json:"error,omitempty"`
	IsErrorReport bool     `json:"is_error_report,omitempty"`
	Truncated     bool     `json:"truncated,omitempty"`
}

// Delegation is a leader-initiated subtask targeting another agent.
type Delegation struct {
	TargetName string `json:"target_name"`
	Task       string `json:"task"`
}

// DelegationResult is the awaited outcome of a Delegation.
type DelegationResult struct {
	TargetID   string `json:"target_id"`
	TargetName string `json:"target_name"`
	Task       string `json:"task"`
	Response   string `json:"response,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Failed reports whether the delegation produced an error instead of a
// response.
func (d DelegationResult) Failed() bool { return d.Error != "" }
