// Package module implements the analyze module
package module

import (
	"reviewpipe/internal/modkit"
	"reviewpipe/internal/services/analyze/domain"
	"reviewpipe/internal/services/analyze/service"

	"github.com/go-chi/chi/v5"
)

// Ports exposed by the analyze module
type Ports struct {
	Analyzer domain.AnalyzerPort
}

// Module implements modkit.Module
type Module struct {
	cfg   service.Config
	ports Ports
}

// New constructs the analyze module; a non-empty overrides.OutputDir replaces EDA_OUTPUT_DIR
func New(deps modkit.Deps, overrides service.Config, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("analyze")}, opts...)...)
	cfg := FromConfig(deps.Cfg)
	if overrides.OutputDir != "" {
		cfg.OutputDir = overrides.OutputDir
	}
	if overrides.RatingColumn != "" {
		cfg.RatingColumn = overrides.RatingColumn
	}
	if overrides.TopTerms > 0 {
		cfg.TopTerms = overrides.TopTerms
	}
	var analyzer domain.AnalyzerPort = service.New(cfg)
	if a, ok := b.Ports.(domain.AnalyzerPort); ok {
		analyzer = a
	}
	return &Module{cfg: cfg, ports: Ports{Analyzer: analyzer}}
}

// Config returns the resolved configuration
func (m *Module) Config() service.Config { return m.cfg }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "analyze" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(chi.Router) {}
