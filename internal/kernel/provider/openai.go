package provider

import (
	"context"
	"errors"
	"io"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIChatBackend streams completions through an OpenAI-compatible chat
// completions endpoint.
type OpenAIChatBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIChatBackend constructs a backend bound to a single model id.
// A non-empty endpoint is treated as an OpenAI-compatible base URL.
func NewOpenAIChatBackend(apiKey, endpoint, model string) *OpenAIChatBackend {
	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}
	return &OpenAIChatBackend{client: openai.NewClientWithConfig(cfg), model: model}
}

func (b *OpenAIChatBackend) Stream(ctx context.Context, messages []Message, opts Options) (<-chan Chunk, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyPrompt
	}

	req := openai.ChatCompletionRequest{
		Model:       b.model,
		Messages:    convertOpenAIMessages(messages),
		Stream:      true,
		Temperature: float32(opts.Temperature),
	}
	if opts.MaxOutputTokens > 0 {
		req.MaxTokens = opts.MaxOutputTokens
	}

	stream, err := openWithRetry(ctx, isRetryableOpenAI, func() (*openai.ChatCompletionStream, error) {
		return b.client.CreateChatCompletionStream(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	out := make(chan Chunk)
	go consumeOpenAIStream(stream, out)
	return out, nil
}

func convertOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		result = append(result, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return result
}

func consumeOpenAIStream(stream *openai.ChatCompletionStream, out chan<- Chunk) {
	defer close(out)
	defer stream.Close()

	var outputTokens int
	for {
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				out <- Chunk{Done: true, OutputTokens: outputTokens}
				return
			}
			out <- Chunk{Err: err}
			return
		}
		if resp.Usage != nil {
			outputTokens = resp.Usage.CompletionTokens
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			out <- Chunk{Delta: delta}
		}
	}
}

func isRetryableOpenAI(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests, http.StatusRequestTimeout:
			return true
		}
		return apiErr.HTTPStatusCode >= 500
	}
	return false
}
