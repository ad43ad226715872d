package registry

import (
	"context"
	"errors"
	"sync"

	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

// Registry holds named Capability implementations.
type Registry struct {
	mu           sync.RWMutex
	capabilities map[string]ports.Capability
}

func New() *Registry {
	return &Registry{capabilities: make(map[string]ports.Capability)}
}

func (r *Registry) Register(name string, c ports.Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[name] = c
}

func (r *Registry) Get(name string) (ports.Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.capabilities[name]
	return c, ok
}

// HealthCheck tests all registered capabilities (used by the settings surface).
func (r *Registry) HealthCheck(ctx context.Context) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]error, len(r.capabilities))
	for name, c := range r.capabilities {
		if c == nil {
			out[name] = errors.New("nil capability")
			continue
		}
		out[name] = c.Test(ctx)
	}
	return out
}
