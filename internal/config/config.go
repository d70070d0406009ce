// Package config handles loading, hot-reloading, and validating distill
// configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/docdistill/distill/internal/providers"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("providers", defaults.Providers)
	viper.SetDefault("defaults", defaults.Defaults)

	// Environment variables with DISTILL_ prefix
	viper.SetEnvPrefix("DISTILL")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.distill")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// WriteDefault writes the default configuration to path, refusing to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// BuildRegistry constructs the provider registry from the configuration.
// Clients are registered only when their credentials resolve; routing a
// model to a missing client fails at ForModel time with a clear error.
func (c *Config) BuildRegistry() (*providers.Registry, error) {
	reg := providers.NewRegistry()
	timeout := time.Duration(c.Defaults.TimeoutSeconds) * time.Second

	if key := ResolveEnvVars(c.Providers.OpenAI.APIKey); key != "" {
		reg.Register(providers.OpenAIName, providers.NewOpenAIClient(providers.OpenAIConfig{
			APIKey:  key,
			BaseURL: c.Providers.OpenAI.BaseURL,
			Timeout: timeout,
		}))
	}

	if key := ResolveEnvVars(c.Providers.Anthropic.APIKey); key != "" {
		reg.Register(providers.AnthropicName, providers.NewAnthropicClient(providers.AnthropicConfig{
			APIKey:  key,
			BaseURL: c.Providers.Anthropic.BaseURL,
		}))
	}

	key := ResolveEnvVars(c.Providers.Azure.APIKey)
	endpoint := ResolveEnvVars(c.Providers.Azure.Endpoint)
	if key != "" && endpoint != "" {
		azure, err := providers.NewAzureOpenAIClient(providers.OpenAIConfig{
			APIKey:          key,
			AzureEndpoint:   endpoint,
			AzureAPIVersion: c.Providers.Azure.APIVersion,
			Timeout:         timeout,
		})
		if err != nil {
			return nil, err
		}
		reg.Register(providers.AzureOpenAIName, azure)
	}

	return reg, nil
}
