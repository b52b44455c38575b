// Package module implements the train module
package module

import (
	"reviewpipe/internal/modkit"
	"reviewpipe/internal/services/train/domain"
	"reviewpipe/internal/services/train/service"

	"github.com/go-chi/chi/v5"
)

// Ports exposed by the train module
type Ports struct {
	Trainer domain.TrainerPort
}

// Module implements modkit.Module
type Module struct {
	opts        Options
	transformer bool
	ports       Ports
}

// New constructs the train module. WithPorts(domain.EncoderOpener) replaces the configured encoder
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("train")}, opts...)...)
	cfg := FromConfig(deps.Cfg)

	var open domain.EncoderOpener
	if o := cfg.Opener(); o != nil {
		open = o
	}
	switch p := b.Ports.(type) {
	case domain.EncoderOpener:
		open = p
	case domain.TrainerPort:
		return &Module{opts: cfg, transformer: open != nil, ports: Ports{Trainer: p}}
	}
	return &Module{opts: cfg, transformer: open != nil, ports: Ports{Trainer: service.New(cfg.Service, open)}}
}

// Options returns the resolved configuration
func (m *Module) Options() Options { return m.opts }

// TransformerConfigured reports whether the transformer stage can run
func (m *Module) TransformerConfigured() bool { return m.transformer }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "train" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(chi.Router) {}
