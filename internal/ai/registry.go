package ai

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/thomas-vilte/ticketmate/internal/config"
)

// ProviderFactory builds a Provider from its settings entry.
type ProviderFactory interface {
	// Name returns the provider name used in config (e.g.: "anthropic")
	Name() string

	// ValidateConfig checks provider-specific settings beyond the API key.
	ValidateConfig(cfg config.AIProviderConfig) error

	CreateProvider(ctx context.Context, cfg config.AIProviderConfig) (Provider, error)
}

// Registry holds the available provider factories by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ProviderFactory),
	}
}

func (r *Registry) Register(factory ProviderFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := factory.Name()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("AI provider '%s' is already registered", name)
	}

	r.factories[name] = factory
	return nil
}

func (r *Registry) Get(name string) (ProviderFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("AI provider '%s' not found in registry", name)
	}

	return factory, nil
}

// List returns the registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]string, 0, len(r.factories))
	for name := range r.factories {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return providers
}

func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}
