// Package provider adapts the kernel's role-tagged prompt sequence to the
// wire format of a specific model backend and streams the response back as
// a lazy sequence of chunks. Three backends are supported: Anthropic's
// Messages API, OpenAI-style chat completions, and a plain completion-style
// backend for providers with no structured chat endpoint.
package provider

import (
	"context"
	"errors"
)

// Role tags a single turn in the prompt sequence handed to a backend.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged turn.
type Message struct {
	Role    Role
	Content string
}

// Options carries the per-request sampling parameters.
type Options struct {
	Temperature     float64
	MaxOutputTokens int
}

// Chunk is one element of a streamed completion. A chunk is either a text
// delta (Delta non-empty, Done false) or the terminal chunk (Done true,
// carrying token usage), never both. At most one Done chunk is ever sent,
// and it is always last.
type Chunk struct {
	Delta        string
	Done         bool
	InputTokens  int
	OutputTokens int
	Err          error
}

// Backend streams a completion for a role-tagged prompt sequence.
type Backend interface {
	Stream(ctx context.Context, messages []Message, opts Options) (<-chan Chunk, error)
}

// ErrEmptyPrompt is returned when messages contains no turns at all.
var ErrEmptyPrompt = errors.New("provider: empty prompt")

// splitSystem separates a leading run of system messages (if any) from the
// rest, since several backends accept only a single system string separate
// from the message list rather than an interleaved system role.
func splitSystem(messages []Message) (system string, rest []Message) {
	var sb []byte
	i := 0
	for i < len(messages) && messages[i].Role == RoleSystem {
		if len(sb) > 0 {
			sb = append(sb, '\n')
		}
		sb = append(sb, messages[i].Content...)
		i++
	}
	return string(sb), messages[i:]
}
