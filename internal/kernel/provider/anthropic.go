package provider

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
)

// AnthropicBackend streams completions through the Anthropic Messages API.
type AnthropicBackend struct {
	client anthropic.Client
	model  string
}

// NewAnthropicBackend constructs a backend bound to a single model id.
// endpoint overrides the default API base URL when non-empty.
func NewAnthropicBackend(apiKey, endpoint, model string) *AnthropicBackend {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithBaseURL(endpoint))
	}
	return &AnthropicBackend{client: anthropic.NewClient(opts...), model: model}
}

func (b *AnthropicBackend) Stream(ctx context.Context, messages []Message, opts Options) (<-chan Chunk, error) {
	system, rest := splitSystem(messages)
	if len(rest) == 0 && system == "" {
		return nil, ErrEmptyPrompt
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		Messages:  convertAnthropicMessages(rest),
		MaxTokens: int64(opts.MaxOutputTokens),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	stream, err := openWithRetry(ctx, isRetryableAnthropic, func() (*ssestream.Stream[anthropic.MessageStreamEventUnion], error) {
		s := b.client.Messages.NewStreaming(ctx, params)
		return s, s.Err()
	})
	if err != nil {
		return nil, err
	}

	out := make(chan Chunk)
	go consumeAnthropicStream(stream, out)
	return out, nil
}

func convertAnthropicMessages(messages []Message) []anthropic.MessageParam {
	result := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			result = append(result, anthropic.NewAssistantMessage(block))
		} else {
			result = append(result, anthropic.NewUserMessage(block))
		}
	}
	return result
}

func consumeAnthropicStream(stream *ssestream.Stream[anthropic.MessageStreamEventUnion], out chan<- Chunk) {
	defer close(out)

	var inputTokens, outputTokens int
	for stream.Next() {
		event := stream.Current()
		switch event.Type {
		case "message_start":
			ms := event.AsMessageStart()
			if ms.Message.Usage.InputTokens > 0 {
				inputTokens = int(ms.Message.Usage.InputTokens)
			}
		case "content_block_delta":
			delta := event.AsContentBlockDelta().Delta
			if delta.Type == "text_delta" && delta.Text != "" {
				out <- Chunk{Delta: delta.Text}
			}
		case "message_delta":
			md := event.AsMessageDelta()
			if md.Usage.OutputTokens > 0 {
				outputTokens = int(md.Usage.OutputTokens)
			}
		case "message_stop":
			out <- Chunk{Done: true, InputTokens: inputTokens, OutputTokens: outputTokens}
			return
		case "error":
			out <- Chunk{Err: errors.New("anthropic: stream error")}
			return
		}
	}
	if err := stream.Err(); err != nil {
		out <- Chunk{Err: err}
	}
}

func isRetryableAnthropic(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusRequestTimeout:
			return true
		}
		return apiErr.StatusCode >= 500
	}
	return false
}
