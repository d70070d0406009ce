package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
)

const (
	AnthropicName         = "anthropic"
	anthropicDefaultModel = "claude-sonnet-4-20250514"
	anthropicMaxTokens    = 4096
)

// AnthropicConfig holds configuration for the Anthropic client.
type AnthropicConfig struct {
	APIKey       string
	DefaultModel string
	BaseURL      string // Optional (tests)
}

// AnthropicClient implements LLMClient using the Anthropic Messages API.
// The API has no json_schema response format; structured requests embed the
// schema in the prompt and parse/validate locally.
type AnthropicClient struct {
	defaultModel string
	client       anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(cfg AnthropicConfig) *AnthropicClient {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = anthropicDefaultModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicClient{
		defaultModel: cfg.DefaultModel,
		client:       anthropic.NewClient(opts...),
	}
}

// Name returns the client identifier.
func (c *AnthropicClient) Name() string {
	return AnthropicName
}

// Chat sends a chat completion request.
func (c *AnthropicClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  AnthropicName,
		ModelUsed: model,
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(req.Temperature),
	}

	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	// Anthropic has no native response_format; restate the schema contract.
	if req.ResponseFormat != nil && len(req.ResponseFormat.JSONSchema) > 0 {
		params.System = append(params.System, anthropic.TextBlockParam{
			Text: "Return ONLY a JSON object that conforms to this JSON Schema. No markdown, no commentary.\n\nJSON Schema:\n" +
				string(req.ResponseFormat.JSONSchema),
		})
	}

	callCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	message, err := c.client.Messages.New(callCtx, params)
	if err != nil {
		result.ErrorType = "api_error"
		result.ErrorMessage = err.Error()
		result.TotalTime = time.Since(start)
		return result, fmt.Errorf("anthropic chat failed: %w", err)
	}

	result.PromptTokens = int(message.Usage.InputTokens)
	result.CompletionTokens = int(message.Usage.OutputTokens)
	result.TotalTokens = int(message.Usage.InputTokens + message.Usage.OutputTokens)
	result.TotalTime = time.Since(start)

	for _, block := range message.Content {
		if block.Type == "text" {
			result.Content = block.Text
			break
		}
	}
	if result.Content == "" {
		result.ErrorType = "empty_response"
		result.ErrorMessage = "no text content in response"
		return result, fmt.Errorf("no text content in anthropic response")
	}

	if req.ResponseFormat != nil {
		parsed, pErr := ParseStructuredJSON(result.Content)
		if pErr != nil {
			result.ErrorType = "parse_error"
			result.ErrorMessage = pErr.Error()
			return result, fmt.Errorf("anthropic structured output: %w", pErr)
		}
		result.ParsedJSON = parsed
	}

	result.Success = true
	return result, nil
}
