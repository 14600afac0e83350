package llm

import (
	"context"
	"iter"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/bashhack/gitdoc/internal/errors"
)

// maxReplyTokens bounds a commit message reply; a title and a short body
// never need more.
const maxReplyTokens = 1024

// OpenAIBackend serves the copilot vendor through the OpenAI chat API.
type OpenAIBackend struct {
	client openai.Client
}

// NewOpenAIBackend creates a backend authenticated with apiKey.
func NewOpenAIBackend(apiKey string, opts ...openaioption.RequestOption) *OpenAIBackend {
	opts = append([]openaioption.RequestOption{openaioption.WithAPIKey(apiKey)}, opts...)
	return &OpenAIBackend{client: openai.NewClient(opts...)}
}

// Vendor implements Backend.
func (b *OpenAIBackend) Vendor() string { return VendorCopilot }

// Models implements Backend.
func (b *OpenAIBackend) Models() []Model {
	return []Model{
		{ID: "gpt-4o", Vendor: VendorCopilot, Family: "gpt-4o", Version: "gpt-4o-2024-08-06"},
		{ID: "gpt-4-turbo", Vendor: VendorCopilot, Family: "gpt-4-turbo", Version: "gpt-4-turbo-2024-04-09"},
		{ID: "gpt-3.5-turbo", Vendor: VendorCopilot, Family: "gpt-3.5-turbo", Version: "gpt-3.5-turbo-0125"},
		{ID: "o1", Vendor: VendorCopilot, Family: "o1", Version: "o1-2024-12-17"},
		{ID: "o1-mini", Vendor: VendorCopilot, Family: "o1-mini", Version: "o1-mini-2024-09-12"},
	}
}

// Stream implements Backend.
func (b *OpenAIBackend) Stream(ctx context.Context, model Model, messages []Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		params := openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(model.ID),
			Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
		}
		for _, m := range messages {
			switch m.Role {
			case RoleSystem:
				params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
			case RoleAssistant:
				params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
			default:
				params.Messages = append(params.Messages, openai.UserMessage(m.Content))
			}
		}

		stream := b.client.Chat.Completions.NewStreaming(ctx, params)
		defer func() { _ = stream.Close() }()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			if text := chunk.Choices[0].Delta.Content; text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield("", errors.Wrap(err, "openai stream failed"))
		}
	}
}

// AnthropicBackend serves Claude models through the Messages API.
type AnthropicBackend struct {
	client anthropic.Client
}

// NewAnthropicBackend creates a backend authenticated with apiKey.
func NewAnthropicBackend(apiKey string, opts ...anthropicoption.RequestOption) *AnthropicBackend {
	opts = append([]anthropicoption.RequestOption{anthropicoption.WithAPIKey(apiKey)}, opts...)
	return &AnthropicBackend{client: anthropic.NewClient(opts...)}
}

// Vendor implements Backend.
func (b *AnthropicBackend) Vendor() string { return VendorAnthropic }

// Models implements Backend.
func (b *AnthropicBackend) Models() []Model {
	return []Model{
		{ID: "claude-3-7-sonnet-latest", Vendor: VendorAnthropic, Family: "claude-3.7-sonnet", Version: "latest"},
		{ID: "claude-3-5-sonnet-latest", Vendor: VendorAnthropic, Family: "claude-3.5-sonnet", Version: "latest"},
	}
}

// Stream implements Backend.
func (b *AnthropicBackend) Stream(ctx context.Context, model Model, messages []Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(model.ID),
			MaxTokens: maxReplyTokens,
		}
		for _, m := range messages {
			switch m.Role {
			case RoleSystem:
				params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
			case RoleAssistant:
				params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			default:
				params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
			}
		}

		stream := b.client.Messages.NewStreaming(ctx, params)
		defer func() { _ = stream.Close() }()

		for stream.Next() {
			event, ok := stream.Current().AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			delta, ok := event.Delta.AsAny().(anthropic.TextDelta)
			if !ok || delta.Text == "" {
				continue
			}
			if !yield(delta.Text, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield("", errors.Wrap(err, "anthropic stream failed"))
		}
	}
}

// GeminiBackend serves Gemini models through the Gemini API.
type GeminiBackend struct {
	client *genai.Client
}

// NewGeminiBackend creates a backend authenticated with apiKey.
func NewGeminiBackend(ctx context.Context, apiKey string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini client")
	}
	return &GeminiBackend{client: client}, nil
}

// Vendor implements Backend.
func (b *GeminiBackend) Vendor() string { return VendorGoogle }

// Models implements Backend.
func (b *GeminiBackend) Models() []Model {
	return []Model{
		{ID: "gemini-2.0-flash", Vendor: VendorGoogle, Family: "gemini-2.0-flash", Version: "001"},
		{ID: "gemini-1.5-pro", Vendor: VendorGoogle, Family: "gemini-1.5-pro", Version: "002"},
	}
}

// Stream implements Backend.
func (b *GeminiBackend) Stream(ctx context.Context, model Model, messages []Message) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var cfg *genai.GenerateContentConfig
		contents := make([]*genai.Content, 0, len(messages))
		for _, m := range messages {
			switch m.Role {
			case RoleSystem:
				cfg = &genai.GenerateContentConfig{
					SystemInstruction: genai.NewContentFromText(m.Content, genai.RoleUser),
				}
			case RoleAssistant:
				contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
			default:
				contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
			}
		}

		for resp, err := range b.client.Models.GenerateContentStream(ctx, model.ID, contents, cfg) {
			if err != nil {
				yield("", errors.Wrap(err, "gemini stream failed"))
				return
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

// Credential environment variables, one per vendor.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
)

// FromEnvironment builds a Registry with a backend for every vendor whose
// API key is set. With no keys the registry is empty and every lookup
// reports no model, which makes callers fall back to template messages.
func FromEnvironment(ctx context.Context, lookup func(string) (string, bool)) (*Registry, error) {
	var backends []Backend

	if key, ok := lookup(EnvOpenAIKey); ok && key != "" {
		backends = append(backends, NewOpenAIBackend(key))
	}
	if key, ok := lookup(EnvAnthropicKey); ok && key != "" {
		backends = append(backends, NewAnthropicBackend(key))
	}
	if key, ok := lookup(EnvGeminiKey); ok && key != "" {
		gemini, err := NewGeminiBackend(ctx, key)
		if err != nil {
			return nil, err
		}
		backends = append(backends, gemini)
	}

	return NewRegistry(backends...), nil
}
