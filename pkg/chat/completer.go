package chat

import (
	"context"
	"fmt"
	"iter"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

// DefaultModel is the chat completion model used unless overridden.
const DefaultModel = "gpt-4-turbo-preview"

// Default generation parameters.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

// Prompt is one message handed to the completion model.
type Prompt struct {
	Role    Role
	Content string
}

// Params tune a single completion call. Zero values fall back to the
// completer's defaults.
type Params struct {
	Temperature float64
	MaxTokens   int64
}

// Completer produces model completions from a prompt transcript.
type Completer interface {
	// Complete returns the full completion text.
	Complete(ctx context.Context, prompts []Prompt, p Params) (string, error)

	// CompleteStream yields the completion incrementally. The sequence
	// ends after the final chunk, or after yielding a non-nil error.
	CompleteStream(ctx context.Context, prompts []Prompt, p Params) iter.Seq2[string, error]
}

// OpenAI is a Completer over the OpenAI chat completions API.
type OpenAI struct {
	client openai.Client
	model  string
}

// OpenAIOption configures the OpenAI completer.
type OpenAIOption func(*OpenAI, *[]option.RequestOption)

// WithModel overrides the completion model.
func WithModel(model string) OpenAIOption {
	return func(o *OpenAI, _ *[]option.RequestOption) { o.model = model }
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(_ *OpenAI, ro *[]option.RequestOption) {
		*ro = append(*ro, option.WithBaseURL(url))
	}
}

// NewOpenAI creates a completer authenticated with the given API key.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	ro := []option.RequestOption{option.WithAPIKey(apiKey)}
	o := &OpenAI{model: DefaultModel}
	for _, opt := range opts {
		opt(o, &ro)
	}
	o.client = openai.NewClient(ro...)
	return o
}

func (o *OpenAI) params(prompts []Prompt, p Params) openai.ChatCompletionNewParams {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(prompts))
	for _, pr := range prompts {
		switch pr.Role {
		case RoleSystem:
			msgs = append(msgs, openai.SystemMessage(pr.Content))
		case RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(pr.Content))
		default:
			msgs = append(msgs, openai.UserMessage(pr.Content))
		}
	}
	if p.Temperature == 0 {
		p.Temperature = DefaultTemperature
	}
	if p.MaxTokens == 0 {
		p.MaxTokens = DefaultMaxTokens
	}
	return openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.model),
		Messages:            msgs,
		Temperature:         param.NewOpt(p.Temperature),
		MaxCompletionTokens: param.NewOpt(p.MaxTokens),
	}
}

func (o *OpenAI) Complete(ctx context.Context, prompts []Prompt, p Params) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, o.params(prompts, p))
	if err != nil {
		return "", fmt.Errorf("chat: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat: completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) CompleteStream(ctx context.Context, prompts []Prompt, p Params) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream := o.client.Chat.Completions.NewStreaming(ctx, o.params(prompts, p))
		defer stream.Close()
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			if s := chunk.Choices[0].Delta.Content; s != "" {
				if !yield(s, nil) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield("", fmt.Errorf("chat: completion stream: %w", err))
		}
	}
}
