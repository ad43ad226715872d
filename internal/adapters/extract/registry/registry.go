package registry

import "github.com/alhaneef/text-weaver-pro/internal/ports"

type Registry struct {
	byFormat map[string]ports.Extractor
	fallback ports.Extractor
}

func New() *Registry { return &Registry{byFormat: map[string]ports.Extractor{}} }

func (r *Registry) Register(e ports.Extractor) { r.byFormat[e.Format()] = e }

// SetFallback registers the extractor used for formats with no dedicated one.
func (r *Registry) SetFallback(e ports.Extractor) { r.fallback = e }

func (r *Registry) Get(format string) (ports.Extractor, bool) {
	if e, ok := r.byFormat[format]; ok {
		return e, true
	}
	if r.fallback != nil {
		return r.fallback, true
	}
	return nil, false
}
