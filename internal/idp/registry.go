package idp

import (
	"sort"

	"github.com/panelkit/authfront/internal/config"
	"github.com/panelkit/authfront/internal/log"
)

// Registry is the static table of configured providers. Built once at
// startup, read-only afterwards.
type Registry struct {
	providers map[string]*Provider
}

// NewRegistry builds providers for every configured entry. Config loading
// already excluded providers with missing credentials, so everything here
// is usable.
func NewRegistry(configs map[string]config.ProviderConfig) *Registry {
	providers := make(map[string]*Provider, len(configs))
	for name, cfg := range configs {
		providers[name] = NewProvider(cfg)
		log.LogInfoWithFields("idp", "Registered identity provider", map[string]any{
			"provider": name,
			"scopes":   cfg.Scopes,
		})
	}
	return &Registry{providers: providers}
}

// Get returns the provider for name, or false if it is not registered.
func (r *Registry) Get(name string) (*Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered provider names in stable order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
