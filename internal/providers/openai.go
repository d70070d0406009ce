package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	OpenAIName      = "openai"
	AzureOpenAIName = "azure-openai"

	openAIDefaultModel = "gpt-4.1-2025-04-14"
)

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey       string
	DefaultModel string
	Timeout      time.Duration
	BaseURL      string       // Optional (tests)
	HTTPClient   *http.Client // Optional (tests)

	// Azure variant. When Endpoint is set the client speaks to an Azure
	// OpenAI deployment, which hosts the GPT family only.
	AzureEndpoint   string
	AzureAPIVersion string
}

// OpenAIClient implements LLMClient using the official OpenAI SDK, in both
// the direct and the Azure-hosted variants.
type OpenAIClient struct {
	name         string
	defaultModel string
	azure        bool
	client       openai.Client
}

// NewOpenAIClient creates a direct OpenAI client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = openAIDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		name:         OpenAIName,
		defaultModel: cfg.DefaultModel,
		client:       openai.NewClient(opts...),
	}
}

// NewAzureOpenAIClient creates the Azure-hosted variant. The endpoint and
// api-version are required; the deployment hosts GPT models only, so requests
// for any other family are rejected before the network call.
func NewAzureOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.AzureEndpoint == "" {
		return nil, fmt.Errorf("azure endpoint is required")
	}
	if cfg.AzureAPIVersion == "" {
		return nil, fmt.Errorf("azure api version is required")
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-4.1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		azure.WithEndpoint(cfg.AzureEndpoint, cfg.AzureAPIVersion),
		azure.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
	}

	return &OpenAIClient{
		name:         AzureOpenAIName,
		defaultModel: cfg.DefaultModel,
		azure:        true,
		client:       openai.NewClient(opts...),
	}, nil
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return c.name
}

// Chat sends a chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
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
		Provider:  c.name,
		ModelUsed: model,
	}

	// The Azure deployment supports only the GPT family.
	if c.azure && ModelFamily(model) != FamilyGPT {
		result.ErrorType = "unsupported_model_family"
		result.ErrorMessage = fmt.Sprintf("azure endpoint supports GPT models only, got %q", model)
		result.TotalTime = time.Since(start)
		return result, fmt.Errorf("azure endpoint supports GPT models only, got %q", model)
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	params.Temperature = openai.Float(req.Temperature)

	if req.ResponseFormat != nil && req.ResponseFormat.Type == "json_schema" {
		var schemaDoc any
		if err := json.Unmarshal(req.ResponseFormat.JSONSchema, &schemaDoc); err != nil {
			result.ErrorType = "invalid_schema"
			result.ErrorMessage = err.Error()
			result.TotalTime = time.Since(start)
			return result, fmt.Errorf("invalid response schema: %w", err)
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "extraction",
					Schema: schemaDoc,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	callCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	resp, err := c.client.Chat.Completions.New(callCtx, params)
	if err != nil {
		result.ErrorType = "api_error"
		result.ErrorMessage = err.Error()
		result.TotalTime = time.Since(start)
		return result, fmt.Errorf("%s chat failed: %w", c.name, err)
	}

	if len(resp.Choices) == 0 {
		result.ErrorType = "empty_response"
		result.ErrorMessage = "no choices in response"
		result.TotalTime = time.Since(start)
		return result, fmt.Errorf("%s returned no choices", c.name)
	}

	result.Content = resp.Choices[0].Message.Content
	result.PromptTokens = int(resp.Usage.PromptTokens)
	result.CompletionTokens = int(resp.Usage.CompletionTokens)
	result.TotalTokens = int(resp.Usage.TotalTokens)
	result.TotalTime = time.Since(start)

	if req.ResponseFormat != nil {
		parsed, pErr := ParseStructuredJSON(result.Content)
		if pErr != nil {
			result.ErrorType = "parse_error"
			result.ErrorMessage = pErr.Error()
			return result, fmt.Errorf("%s structured output: %w", c.name, pErr)
		}
		result.ParsedJSON = parsed
	}

	result.Success = true
	return result, nil
}
