package providers

import (
	"testing"

	"github.com/docdistill/distill/internal/errdefs"
)

func TestModelFamily(t *testing.T) {
	tests := []struct {
		model string
		want  Family
	}{
		{"gpt-4.1-2025-04-14", FamilyGPT},
		{"GPT-4o", FamilyGPT},
		{"o3-mini", FamilyGPT},
		{"claude-sonnet-4-20250514", FamilyClaude},
		{"Claude-Opus-4", FamilyClaude},
		{"mistral-large", FamilyUnknown},
		{"", FamilyUnknown},
	}
	for _, tt := range tests {
		if got := ModelFamily(tt.model); got != tt.want {
			t.Errorf("ModelFamily(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestRegistryForModel(t *testing.T) {
	reg := NewRegistry()
	openai := NewMockClient()
	azure := NewMockClient()
	anthropic := NewMockClient()
	reg.Register(OpenAIName, openai)
	reg.Register(AzureOpenAIName, azure)
	reg.Register(AnthropicName, anthropic)

	t.Run("gpt routes to openai", func(t *testing.T) {
		c, err := reg.ForModel("gpt-4.1", false)
		if err != nil {
			t.Fatalf("ForModel() error = %v", err)
		}
		if c != LLMClient(openai) {
			t.Error("gpt model routed to wrong client")
		}
	})

	t.Run("gpt with azure mode routes to azure", func(t *testing.T) {
		c, err := reg.ForModel("gpt-4.1", true)
		if err != nil {
			t.Fatalf("ForModel() error = %v", err)
		}
		if c != LLMClient(azure) {
			t.Error("azure-mode gpt model routed to wrong client")
		}
	})

	t.Run("claude routes to anthropic", func(t *testing.T) {
		c, err := reg.ForModel("claude-sonnet-4-20250514", false)
		if err != nil {
			t.Fatalf("ForModel() error = %v", err)
		}
		if c != LLMClient(anthropic) {
			t.Error("claude model routed to wrong client")
		}
	})

	t.Run("claude with azure mode is a configuration error", func(t *testing.T) {
		_, err := reg.ForModel("claude-sonnet-4-20250514", true)
		if err == nil {
			t.Fatal("expected error for claude in azure mode")
		}
		if !errdefs.IsKind(err, errdefs.KindConfiguration) {
			t.Errorf("error kind = %q, want %q", errdefs.KindOf(err), errdefs.KindConfiguration)
		}
	})

	t.Run("unknown family is a configuration error", func(t *testing.T) {
		_, err := reg.ForModel("mistral-large", false)
		if err == nil {
			t.Fatal("expected error for unknown model family")
		}
		if !errdefs.IsKind(err, errdefs.KindConfiguration) {
			t.Errorf("error kind = %q, want %q", errdefs.KindOf(err), errdefs.KindConfiguration)
		}
	})

	t.Run("missing client", func(t *testing.T) {
		empty := NewRegistry()
		if _, err := empty.ForModel("gpt-4.1", false); err == nil {
			t.Fatal("expected error when client is not registered")
		}
	})
}
