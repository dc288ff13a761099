package renderers

import (
	"github.com/custodia-labs/whistle-cli/internal/renderers/markup"
	"github.com/custodia-labs/whistle-cli/internal/renderers/narrative"
	"github.com/custodia-labs/whistle-cli/internal/renderers/pdf"
	"github.com/custodia-labs/whistle-cli/internal/renderers/plaintext"
	"github.com/custodia-labs/whistle-cli/internal/renderers/stats"
	"github.com/custodia-labs/whistle-cli/internal/renderers/summary"
	"github.com/custodia-labs/whistle-cli/internal/renderers/tabular"
)

// RegisterDefaults registers all built-in renderers with the registry.
// Call this during application initialisation to enable every export format.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(tabular.New())
	r.Register(markup.New())
	r.Register(narrative.New())
	r.Register(summary.New())
	r.Register(stats.New())
	r.Register(pdf.New())
}

// NewDefaultRegistry returns a registry with every built-in renderer.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
