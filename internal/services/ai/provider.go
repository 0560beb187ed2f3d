package ai

import (
	"context"
	"sort"
)

// DefaultProvider is used when no provider name is given
const DefaultProvider = "openai"

// Advisor writes short, personalised advice for a mood category
type Advisor interface {
	// PersonalizedAdvice returns advice for category given a plain-text summary of recent history
	PersonalizedAdvice(ctx context.Context, category, summary string) (string, error)
}

// ProviderFactory creates an advisor from provider-specific settings
// (api_key, base_url, model, debug)
type ProviderFactory func(config map[string]string) (Advisor, error)

// ProviderRegistry maps provider names to advisor factories
type ProviderRegistry struct {
	factories map[string]ProviderFactory
}

// NewProviderRegistry creates an empty registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{factories: map[string]ProviderFactory{}}
}

// Register adds or replaces the factory for name
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.factories[name] = factory
}

// Names returns the registered provider names in order
func (r *ProviderRegistry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetProvider builds the advisor registered under name, DefaultProvider when empty
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Advisor, error) {
	if name == "" {
		name = DefaultProvider
	}
	factory, ok := r.factories[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name, Available: r.Names()}
	}
	return factory(config)
}

// ErrProviderNotFound is returned for an unregistered provider name
type ErrProviderNotFound struct {
	Name      string
	Available []string
}

func (e *ErrProviderNotFound) Error() string {
	return "advice provider not registered: " + e.Name
}
