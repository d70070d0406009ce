package providers

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/docdistill/distill/internal/errdefs"
)

// Registry holds references to LLM clients and provides thread-safe access.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]LLMClient
	logger  *slog.Logger
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]LLMClient),
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register registers an LLM client by name.
func (r *Registry) Register(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	if r.logger != nil {
		r.logger.Info("registered LLM client", "name", name)
	}
}

// Get returns an LLM client by name.
func (r *Registry) Get(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// Has checks if an LLM client is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[name]
	return ok
}

// List returns all registered client names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}

// ForModel resolves the client that serves a model identifier. Claude models
// route to the Anthropic client; GPT models route to the Azure client when
// azureMode is set and to the direct OpenAI client otherwise.
func (r *Registry) ForModel(model string, azureMode bool) (LLMClient, error) {
	switch ModelFamily(model) {
	case FamilyClaude:
		if azureMode {
			return nil, errdefs.Configuration("azure endpoint does not host the Claude family (model %q)", model)
		}
		return r.Get(AnthropicName)
	case FamilyGPT:
		if azureMode {
			return r.Get(AzureOpenAIName)
		}
		return r.Get(OpenAIName)
	}
	return nil, errdefs.Configuration("unrecognized model family for %q", model)
}
