package renderers

import (
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/whistle-cli/internal/core/domain"
	"github.com/custodia-labs/whistle-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.RendererRegistry = (*Registry)(nil)

// Registry maps export formats to their renderers.
type Registry struct {
	mu        sync.RWMutex
	renderers map[domain.ExportFormat]driven.Renderer
}

// NewRegistry creates an empty renderer registry.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[domain.ExportFormat]driven.Renderer),
	}
}

// Register adds a renderer, replacing any existing one for the same format.
func (r *Registry) Register(renderer driven.Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[renderer.Format()] = renderer
}

// Get returns the renderer for a format.
func (r *Registry) Get(format domain.ExportFormat) (driven.Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: no renderer for %q", domain.ErrUnsupportedType, format)
	}
	return renderer, nil
}

// Formats returns all registered formats in sorted order.
func (r *Registry) Formats() []domain.ExportFormat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]domain.ExportFormat, 0, len(r.renderers))
	for f := range r.renderers {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}
