// Package module implements the scheduler module and its ops routes
package module

import (
	"time"

	"reviewpipe/internal/modkit"
	pipedom "reviewpipe/internal/services/pipeline/domain"
	"reviewpipe/internal/services/scheduler/domain"
	schedhttp "reviewpipe/internal/services/scheduler/http"
	"reviewpipe/internal/services/scheduler/service"

	"github.com/go-chi/chi/v5"
)

// Ports exposed by the scheduler module
type Ports struct {
	Scheduler domain.SchedulerPort
}

// Module implements modkit.Module
type Module struct {
	cfg       service.Config
	prefix    string
	ports     Ports
	startedAt time.Time
}

// New constructs the scheduler module; it must be wired with WithPorts(pipeline/domain.RunnerPort)
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("scheduler")}, opts...)...)

	runner, ok := b.Ports.(pipedom.RunnerPort)
	if !ok || runner == nil {
		panic("scheduler module: expected WithPorts(pipeline/domain.RunnerPort)")
	}
	cfg := FromConfig(deps.Cfg)
	return &Module{
		cfg:       cfg,
		prefix:    b.Prefix,
		ports:     Ports{Scheduler: service.New(runner, cfg)},
		startedAt: time.Now(),
	}
}

// Config returns the resolved configuration
func (m *Module) Config() service.Config { return m.cfg }

// MountRoutes mounts /healthz, /v1/version and /v1/runs under the module prefix
func (m *Module) MountRoutes(r chi.Router) {
	deps := schedhttp.Deps{ServiceName: "reviewpipe-scheduler", StartedAt: m.startedAt, Scheduler: m.ports.Scheduler}
	if m.prefix == "" {
		schedhttp.Register(r, deps)
		return
	}
	r.Route(m.prefix, func(rr chi.Router) { schedhttp.Register(rr, deps) })
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "scheduler" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
