package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/docdistill/distill/internal/errdefs"
	"github.com/docdistill/distill/internal/providers"
)

func TestResolveEnvVars(t *testing.T) {
	t.Setenv("DISTILL_TEST_KEY", "sk-abc123")

	tests := []struct {
		in, want string
	}{
		{"${DISTILL_TEST_KEY}", "sk-abc123"},
		{"prefix-${DISTILL_TEST_KEY}", "prefix-sk-abc123"},
		{"no-vars", "no-vars"},
		{"${DISTILL_UNSET_VAR}", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ResolveEnvVars(tt.in); got != tt.want {
			t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateForModel(t *testing.T) {
	cfg := &Config{
		Providers: ProvidersCfg{
			OpenAI:    OpenAICfg{APIKey: "sk-openai"},
			Anthropic: AnthropicCfg{APIKey: ""},
			Azure:     AzureCfg{APIKey: "azure-key", Endpoint: "https://example.openai.azure.com"},
		},
	}

	t.Run("gpt with key", func(t *testing.T) {
		if err := cfg.ValidateForModel("gpt-4.1", false); err != nil {
			t.Errorf("ValidateForModel() = %v, want nil", err)
		}
	})

	t.Run("claude without key", func(t *testing.T) {
		err := cfg.ValidateForModel("claude-sonnet-4-20250514", false)
		if err == nil {
			t.Fatal("expected error for missing anthropic key")
		}
		if !errdefs.IsKind(err, errdefs.KindConfiguration) {
			t.Errorf("error kind = %q, want %q", errdefs.KindOf(err), errdefs.KindConfiguration)
		}
	})

	t.Run("claude in azure mode", func(t *testing.T) {
		err := cfg.ValidateForModel("claude-sonnet-4-20250514", true)
		if err == nil {
			t.Fatal("expected error: azure hosts the GPT family only")
		}
		if !errdefs.IsKind(err, errdefs.KindConfiguration) {
			t.Errorf("error kind = %q, want %q", errdefs.KindOf(err), errdefs.KindConfiguration)
		}
	})

	t.Run("gpt in azure mode with credentials", func(t *testing.T) {
		if err := cfg.ValidateForModel("gpt-4.1", true); err != nil {
			t.Errorf("ValidateForModel() = %v, want nil", err)
		}
	})

	t.Run("azure mode without endpoint", func(t *testing.T) {
		c := *cfg
		c.Providers.Azure.Endpoint = ""
		if err := c.ValidateForModel("gpt-4.1", true); err == nil {
			t.Error("expected error for missing azure endpoint")
		}
	})

	t.Run("unknown model", func(t *testing.T) {
		if err := cfg.ValidateForModel("mistral-large", false); err == nil {
			t.Error("expected error for unroutable model")
		}
	})
}

func TestBuildRegistry(t *testing.T) {
	cfg := &Config{
		Providers: ProvidersCfg{
			OpenAI:    OpenAICfg{APIKey: "sk-openai"},
			Anthropic: AnthropicCfg{APIKey: "sk-ant"},
			Azure:     AzureCfg{APIKey: "azure-key", Endpoint: "https://example.openai.azure.com", APIVersion: "2025-01-01-preview"},
		},
		Defaults: DefaultsCfg{TimeoutSeconds: 30},
	}

	reg, err := cfg.BuildRegistry()
	if err != nil {
		t.Fatalf("BuildRegistry() error = %v", err)
	}
	for _, name := range []string{providers.OpenAIName, providers.AnthropicName, providers.AzureOpenAIName} {
		if !reg.Has(name) {
			t.Errorf("registry missing %q", name)
		}
	}

	t.Run("clients without credentials stay unregistered", func(t *testing.T) {
		bare := &Config{}
		reg, err := bare.BuildRegistry()
		if err != nil {
			t.Fatal(err)
		}
		if len(reg.List()) != 0 {
			t.Errorf("registry = %v, want empty", reg.List())
		}
	})
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("wrote empty config")
	}

	if err := WriteDefault(path); err == nil {
		t.Error("expected error overwriting an existing config")
	}
}
