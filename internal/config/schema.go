package config

import (
	"github.com/docdistill/distill/internal/errdefs"
	"github.com/docdistill/distill/internal/providers"
)

// Config holds distill configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Providers ProvidersCfg `mapstructure:"providers" yaml:"providers"`
	Defaults  DefaultsCfg  `mapstructure:"defaults" yaml:"defaults"`
}

// ProvidersCfg configures the LLM backends.
type ProvidersCfg struct {
	OpenAI    OpenAICfg    `mapstructure:"openai" yaml:"openai"`
	Anthropic AnthropicCfg `mapstructure:"anthropic" yaml:"anthropic"`
	Azure     AzureCfg     `mapstructure:"azure" yaml:"azure"`
}

// OpenAICfg configures direct OpenAI access.
type OpenAICfg struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// AnthropicCfg configures direct Anthropic access.
type AnthropicCfg struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// AzureCfg configures Azure-hosted OpenAI deployments. Only the GPT model
// family is reachable through this backend.
type AzureCfg struct {
	APIKey     string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	Endpoint   string `mapstructure:"endpoint" yaml:"endpoint"`
	APIVersion string `mapstructure:"api_version" yaml:"api_version"`
}

// DefaultsCfg specifies default model selections and limits.
type DefaultsCfg struct {
	GenerationModel string `mapstructure:"generation_model" yaml:"generation_model"`
	ExtractionModel string `mapstructure:"extraction_model" yaml:"extraction_model"`
	MaxWorkers      int    `mapstructure:"max_workers" yaml:"max_workers"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Providers: ProvidersCfg{
			OpenAI:    OpenAICfg{APIKey: "${OPENAI_API_KEY}"},
			Anthropic: AnthropicCfg{APIKey: "${ANTHROPIC_API_KEY}"},
			Azure: AzureCfg{
				APIKey:     "${AZURE_OPENAI_API_KEY}",
				Endpoint:   "${AZURE_OPENAI_ENDPOINT}",
				APIVersion: "2025-01-01-preview",
			},
		},
		Defaults: DefaultsCfg{
			GenerationModel: "gpt-4.1-2025-04-14",
			ExtractionModel: "gpt-4.1-2025-04-14",
			MaxWorkers:      4,
			TimeoutSeconds:  120,
		},
	}
}

// ValidateForModel checks that the credentials needed to reach model are
// present, before any documents are read or provider calls made.
func (c *Config) ValidateForModel(model string, azureMode bool) error {
	family := providers.ModelFamily(model)
	switch {
	case azureMode && family != providers.FamilyGPT:
		return errdefs.Configuration("azure mode supports only GPT-family models, got %q", model)
	case azureMode:
		if ResolveEnvVars(c.Providers.Azure.APIKey) == "" {
			return errdefs.Configuration("azure mode requires an API key (providers.azure.api_key)")
		}
		if ResolveEnvVars(c.Providers.Azure.Endpoint) == "" {
			return errdefs.Configuration("azure mode requires an endpoint (providers.azure.endpoint)")
		}
	case family == providers.FamilyGPT:
		if ResolveEnvVars(c.Providers.OpenAI.APIKey) == "" {
			return errdefs.Configuration("model %q requires an OpenAI API key (providers.openai.api_key)", model)
		}
	case family == providers.FamilyClaude:
		if ResolveEnvVars(c.Providers.Anthropic.APIKey) == "" {
			return errdefs.Configuration("model %q requires an Anthropic API key (providers.anthropic.api_key)", model)
		}
	default:
		return errdefs.Configuration("unrecognized model %q: cannot route to a provider", model)
	}
	return nil
}
