package adapters

import (
	"strings"

	"github.com/sspkit/razorgate/internal/gateway/domain"
)

// Registry holds the closed set of provider factories. Adding a processor
// means registering one more factory; the facade never changes.
type Registry struct {
	factories map[string]domain.Factory
}

func NewRegistry(factories ...domain.Factory) *Registry {
	r := &Registry{factories: make(map[string]domain.Factory, len(factories))}
	for _, factory := range factories {
		if factory == nil {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(factory.Provider()))
		if name == "" {
			continue
		}
		r.factories[name] = factory
	}
	return r
}

// ProviderExists reports whether a factory is registered for the provider.
func (r *Registry) ProviderExists(provider string) bool {
	if r == nil {
		return false
	}
	_, ok := r.factories[strings.ToLower(strings.TrimSpace(provider))]
	return ok
}

// Providers lists the registered provider names.
func (r *Registry) Providers() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// NewClient builds a request-scoped client bound to the given credentials.
func (r *Registry) NewClient(provider string, cfg domain.ClientConfig) (domain.Client, error) {
	if r == nil {
		return nil, domain.ErrProviderNotFound
	}
	factory, ok := r.factories[strings.ToLower(strings.TrimSpace(provider))]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return factory.NewClient(cfg)
}
