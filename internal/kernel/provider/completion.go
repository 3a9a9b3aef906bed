package provider

import (
	"context"
	"errors"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// CompletionBackend streams completions through a plain-text completion
// endpoint (no structured chat roles). The role-tagged prompt sequence is
// joined into a single prompt using System:/Human:/Assistant: prefixes,
// terminated with a trailing "Assistant:" to elicit the next turn.
type CompletionBackend struct {
	client *openai.Client
	model  string
}

// NewCompletionBackend constructs a backend bound to a single model id.
// A non-empty endpoint is treated as an OpenAI-compatible base URL.
func NewCompletionBackend(apiKey, endpoint, model string) *CompletionBackend {
	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}
	return &CompletionBackend{client: openai.NewClientWithConfig(cfg), model: model}
}

func joinPrompt(messages []Message) string {
	var sb strings.Builder
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			sb.WriteString("System: ")
		case RoleAssistant:
			sb.WriteString("Assistant: ")
		default:
			sb.WriteString("Human: ")
		}
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("Assistant:")
	return sb.String()
}

func (b *CompletionBackend) Stream(ctx context.Context, messages []Message, opts Options) (<-chan Chunk, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyPrompt
	}

	req := openai.CompletionRequest{
		Model:       b.model,
		Prompt:      joinPrompt(messages),
		Stream:      true,
		Temperature: float32(opts.Temperature),
	}
	if opts.MaxOutputTokens > 0 {
		req.MaxTokens = opts.MaxOutputTokens
	}

	stream, err := openWithRetry(ctx, isRetryableOpenAI, func() (*openai.CompletionStream, error) {
		return b.client.CreateCompletionStream(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	out := make(chan Chunk)
	go consumeCompletionStream(stream, out)
	return out, nil
}

func consumeCompletionStream(stream *openai.CompletionStream, out chan<- Chunk) {
	defer close(out)
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				out <- Chunk{Done: true}
				return
			}
			out <- Chunk{Err: err}
			return
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if text := resp.Choices[0].Text; text != "" {
			out <- Chunk{Delta: text}
		}
	}
}
