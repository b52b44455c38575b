// Package module implements the pipeline module
package module

import (
	"reviewpipe/internal/modkit"
	"reviewpipe/internal/services/pipeline/domain"
	"reviewpipe/internal/services/pipeline/service"

	"github.com/go-chi/chi/v5"
)

// Ports exposed by the pipeline module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	cfg   service.Config
	ports Ports
}

// New constructs the pipeline module; it must be wired with WithPorts(pipeline/domain.Ports)
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("pipeline")}, opts...)...)

	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("pipeline module: expected WithPorts(pipeline/domain.Ports)")
	}
	if ports.Extractor == nil || ports.Preprocessor == nil || ports.Analyzer == nil || ports.Trainer == nil {
		panic("pipeline module: Ports missing a stage")
	}

	cfg := FromConfig(deps.Cfg)
	return &Module{cfg: cfg, ports: Ports{Runner: service.New(ports, cfg)}}
}

// Config returns the resolved configuration
func (m *Module) Config() service.Config { return m.cfg }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "pipeline" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(chi.Router) {}
