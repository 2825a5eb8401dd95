package assistant

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/atomic"
)

var (
	ErrUnknownProvider       = errors.New("UNKNOWN_PROVIDER")
	ErrProviderNotConfigured = errors.New("PROVIDER_NOT_CONFIGURED")
	ErrUpstreamUnavailable   = errors.New("UPSTREAM_UNAVAILABLE")
	ErrUpstreamTimeout       = errors.New("UPSTREAM_TIMEOUT")
	ErrUpstreamStatus        = errors.New("UPSTREAM_BAD_STATUS")
	ErrUpstreamMalformed     = errors.New("UPSTREAM_MALFORMED_RESPONSE")
)

// Provider is a named reply generation backend.
type Provider interface {
	Name() string
	DisplayName() string
	Configured() bool
	// Generate returns the generated reply. Implementations must honour ctx
	// and wrap failures with the Err* sentinels above.
	Generate(ctx context.Context, prompt, assetContext string) (string, error)
}

// ProviderInfo describes a registered provider.
type ProviderInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

// Registry is the fixed set of providers known to the process.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if _, dup := r.providers[p.Name()]; dup {
			return nil, fmt.Errorf("provider %q registered twice", p.Name())
		}
		r.providers[p.Name()] = p
	}
	return r, nil
}

// Select resolves a provider by name.
func (r *Registry) Select(name string) (Selection, error) {
	p, ok := r.providers[name]
	if !ok {
		return Selection{}, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return Selection{Name: name, Provider: p}, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.providers[name]
	return ok
}

// Providers lists every registered provider sorted by id.
func (r *Registry) Providers() []ProviderInfo {
	out := make([]ProviderInfo, 0, len(r.providers))
	for id, p := range r.providers {
		out = append(out, ProviderInfo{ID: id, Name: p.DisplayName(), Configured: p.Configured()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Selection is the provider resolved for a single call.
type Selection struct {
	Name     string
	Provider Provider
}

// Selector holds the process default provider. Reads and writes are atomic
// and each call snapshots the value once.
type Selector struct {
	registry *Registry
	current  *atomic.String
}

func NewSelector(registry *Registry, defaultName string) (*Selector, error) {
	if !registry.Has(defaultName) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, defaultName)
	}
	return &Selector{registry: registry, current: atomic.NewString(defaultName)}, nil
}

func (s *Selector) Registry() *Registry {
	return s.registry
}

// Current returns the default provider name.
func (s *Selector) Current() string {
	return s.current.Load()
}

// Set changes the default provider. An unknown name is rejected and the
// previous default stays in place.
func (s *Selector) Set(name string) error {
	if !s.registry.Has(name) {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	s.current.Store(name)
	return nil
}

// Resolve selects name, or the current default when name is empty.
func (s *Selector) Resolve(name string) (Selection, error) {
	if name == "" {
		name = s.current.Load()
	}
	return s.registry.Select(name)
}
