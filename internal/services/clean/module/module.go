// Package module implements the clean module
package module

import (
	"reviewpipe/internal/modkit"
	"reviewpipe/internal/services/clean/domain"
	"reviewpipe/internal/services/clean/service"

	"github.com/go-chi/chi/v5"
)

// Ports exposed by the clean module
type Ports struct {
	Preprocessor domain.PreprocessorPort
}

// Module implements modkit.Module
type Module struct {
	opts  Options
	ports Ports
}

// New constructs the clean module; WithPorts(domain.TextCleaner) swaps the cleaner
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("clean")}, opts...)...)
	cfg := FromConfig(deps.Cfg)

	var cleaner domain.TextCleaner = cfg.Cleaner()
	if c, ok := b.Ports.(domain.TextCleaner); ok {
		cleaner = c
	}
	return &Module{opts: cfg, ports: Ports{Preprocessor: service.New(cleaner)}}
}

// Options returns the resolved configuration
func (m *Module) Options() Options { return m.opts }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "clean" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(chi.Router) {}
