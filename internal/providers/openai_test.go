package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIClientChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "{\"vendor\": \"Acme\"}"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 6, "total_tokens": 18}
		}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	res, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "extract"}},
		Model:    "gpt-4.1",
		ResponseFormat: &ResponseFormat{
			Type:       "json_schema",
			JSONSchema: []byte(`{"type":"object","properties":{"vendor":{"type":"string"}}}`),
		},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if !res.Success {
		t.Error("expected Success")
	}
	if string(res.ParsedJSON) != `{"vendor":"Acme"}` {
		t.Errorf("ParsedJSON = %s", res.ParsedJSON)
	}
	if res.TotalTokens != 18 {
		t.Errorf("TotalTokens = %d, want 18", res.TotalTokens)
	}
	if res.Provider != OpenAIName {
		t.Errorf("Provider = %q, want %q", res.Provider, OpenAIName)
	}
}

func TestAzureClientRejectsNonGPT(t *testing.T) {
	// No server: the family check must fail before any network call.
	client, err := NewAzureOpenAIClient(OpenAIConfig{
		APIKey:          "test-key",
		AzureEndpoint:   "https://example.openai.azure.com",
		AzureAPIVersion: "2025-01-01-preview",
	})
	if err != nil {
		t.Fatalf("NewAzureOpenAIClient() error = %v", err)
	}

	res, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "extract"}},
		Model:    "claude-sonnet-4-20250514",
	})
	if err == nil {
		t.Fatal("expected error for claude model on azure endpoint")
	}
	if res.ErrorType != "unsupported_model_family" {
		t.Errorf("ErrorType = %q, want unsupported_model_family", res.ErrorType)
	}
}

func TestNewAzureOpenAIClientValidation(t *testing.T) {
	if _, err := NewAzureOpenAIClient(OpenAIConfig{APIKey: "k", AzureAPIVersion: "v"}); err == nil {
		t.Error("expected error for missing endpoint")
	}
	if _, err := NewAzureOpenAIClient(OpenAIConfig{APIKey: "k", AzureEndpoint: "https://example"}); err == nil {
		t.Error("expected error for missing api version")
	}
}
