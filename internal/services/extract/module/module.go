// Package module implements the extract module
package module

import (
	"context"

	"reviewpipe/internal/adapters/ingest/reviewsapi"
	"reviewpipe/internal/modkit"
	"reviewpipe/internal/platform/store"
	"reviewpipe/internal/services/extract/domain"
	"reviewpipe/internal/services/extract/service"

	"github.com/go-chi/chi/v5"
)

// Ports exposed by the extract module
type Ports struct {
	Extractor domain.ExtractorPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the extract module. A zero overrides value means "use config";
// WithPorts(domain.SourceOpener) or WithPorts(domain.API) replace the real collaborators in tests
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("extract")}, opts...)...)

	cfg := FromConfig(deps.Cfg)
	if overrides.SQL.Driver != "" {
		cfg.SQL = overrides.SQL
	}
	if overrides.API.BaseURL != "" {
		cfg.API = overrides.API
	}

	var open domain.SourceOpener
	if cfg.SQLConfigured() {
		sqlCfg := cfg.SQL
		open = func(ctx context.Context) (domain.Source, error) {
			s, err := store.Open(ctx, sqlCfg, store.WithLogger(deps.Log))
			if err != nil {
				return nil, err
			}
			return s, nil
		}
	}
	var api domain.API
	if cfg.APIConfigured() {
		api = reviewsapi.New(cfg.API)
	}

	switch p := b.Ports.(type) {
	case domain.SourceOpener:
		open = p
	case domain.API:
		api = p
	}

	return &Module{
		deps:  deps,
		opts:  cfg,
		ports: Ports{Extractor: service.New(open, api)},
	}
}

// Options returns the resolved configuration
func (m *Module) Options() Options { return m.opts }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "extract" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(chi.Router) {}
